package native

import (
	"net/url"

	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/config"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/enums"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/types"
)

// BuildPopupURL assembles the URL the native popup is opened with. The
// session UID in the query string is what lets the app find our socket.
func BuildPopupURL(cfg config.NativeConfig, sessionUID, pageURL string, fundingSource enums.FundingSource) string {
	u, err := url.Parse(cfg.PopupBaseURL)
	if err != nil {
		return cfg.PopupBaseURL
	}
	q := u.Query()
	q.Set("sessionUID", sessionUID)
	q.Set("pageUrl", pageURL)
	q.Set("fundingSource", fundingSource.String())
	u.RawQuery = q.Encode()
	return u.String()
}

// appSwitched is the heuristic for "did the native app take over". On iOS
// the popup open throws instead of returning a window; on Android the app
// closes the popup it was handed. Neither signal is synchronous, which is
// why callers wait out the settle delay first.
func appSwitched(os enums.OS, popupBlocked bool, win types.Window) bool {
	switch os {
	case enums.OSIOS:
		return popupBlocked
	case enums.OSAndroid:
		return win != nil && win.Closed()
	}
	return false
}
