package enums

// Browser is the buyer browser identity as reported by capability probes.
type Browser string

const (
	BrowserSafari  Browser = "safari"
	BrowserChrome  Browser = "chrome"
	BrowserFirefox Browser = "firefox"
	BrowserUnknown Browser = "unknown"
)

// String implements fmt.Stringer.
func (b Browser) String() string {
	return string(b)
}
