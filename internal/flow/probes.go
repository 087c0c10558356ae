package flow

import (
	"strings"

	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/enums"
)

// Probes answers capability questions about the buyer's browser and OS.
// Injected so eligibility logic stays deterministic under test.
type Probes interface {
	Platform() enums.Platform
	OS() enums.OS
	Browser() enums.Browser
	SupportsPopups() bool
}

// UAProbes derives capabilities from a user-agent string. It covers the
// pairings the native flow cares about (iOS Safari, Android Chrome) and
// defaults everything else to a desktop browser with popup support.
type UAProbes struct {
	UserAgent     string
	PopupsBlocked bool
}

func (p UAProbes) Platform() enums.Platform {
	if p.OS() == enums.OSIOS || p.OS() == enums.OSAndroid {
		return enums.PlatformMobile
	}
	return enums.PlatformDesktop
}

func (p UAProbes) OS() enums.OS {
	ua := strings.ToLower(p.UserAgent)
	switch {
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"):
		return enums.OSIOS
	case strings.Contains(ua, "android"):
		return enums.OSAndroid
	}
	return enums.OSOther
}

func (p UAProbes) Browser() enums.Browser {
	ua := strings.ToLower(p.UserAgent)
	switch {
	// Chrome on iOS ships "crios"; every iOS browser embeds "safari".
	case strings.Contains(ua, "crios"), strings.Contains(ua, "chrome"):
		return enums.BrowserChrome
	case strings.Contains(ua, "firefox"), strings.Contains(ua, "fxios"):
		return enums.BrowserFirefox
	case strings.Contains(ua, "safari"):
		return enums.BrowserSafari
	}
	return enums.BrowserUnknown
}

func (p UAProbes) SupportsPopups() bool {
	return !p.PopupsBlocked
}

// StaticProbes is a fixed capability answer set, used by tests and the
// simulator.
type StaticProbes struct {
	DevicePlatform enums.Platform
	DeviceOS       enums.OS
	DeviceBrowser  enums.Browser
	Popups         bool
}

func (p StaticProbes) Platform() enums.Platform { return p.DevicePlatform }
func (p StaticProbes) OS() enums.OS             { return p.DeviceOS }
func (p StaticProbes) Browser() enums.Browser   { return p.DeviceBrowser }
func (p StaticProbes) SupportsPopups() bool     { return p.Popups }
