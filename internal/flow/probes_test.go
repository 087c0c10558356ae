package flow

import (
	"testing"

	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/enums"
	"github.com/stretchr/testify/assert"
)

const (
	uaIOSSafari     = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"
	uaIOSChrome     = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) CriOS/115.0.5790.130 Mobile/15E148 Safari/604.1"
	uaAndroidChrome = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Mobile Safari/537.36"
	uaDesktopMac    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Safari/605.1.15"
)

func TestUAProbesDetection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ua       string
		platform enums.Platform
		os       enums.OS
		browser  enums.Browser
	}{
		{name: "ios safari", ua: uaIOSSafari, platform: enums.PlatformMobile, os: enums.OSIOS, browser: enums.BrowserSafari},
		{name: "ios chrome", ua: uaIOSChrome, platform: enums.PlatformMobile, os: enums.OSIOS, browser: enums.BrowserChrome},
		{name: "android chrome", ua: uaAndroidChrome, platform: enums.PlatformMobile, os: enums.OSAndroid, browser: enums.BrowserChrome},
		{name: "desktop safari", ua: uaDesktopMac, platform: enums.PlatformDesktop, os: enums.OSOther, browser: enums.BrowserSafari},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			probes := UAProbes{UserAgent: tt.ua}
			assert.Equal(t, tt.platform, probes.Platform())
			assert.Equal(t, tt.os, probes.OS())
			assert.Equal(t, tt.browser, probes.Browser())
			assert.True(t, probes.SupportsPopups())
		})
	}
}
