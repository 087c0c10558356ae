package enums

// Platform is the coarse device class the buttons are rendered on.
type Platform string

const (
	PlatformDesktop Platform = "desktop"
	PlatformMobile  Platform = "mobile"
)

// String implements fmt.Stringer.
func (p Platform) String() string {
	return string(p)
}

// OS is the operating system detected for the buyer device.
type OS string

const (
	OSIOS     OS = "ios"
	OSAndroid OS = "android"
	OSOther   OS = "other"
)

// String implements fmt.Stringer.
func (o OS) String() string {
	return string(o)
}
