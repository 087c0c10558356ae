package eligibility

import (
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/internal/flow"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/config"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/enums"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/types"
)

// Native is the session-level gate for the app-switch flow.
func Native(props *types.CheckoutProps, cfg *config.Config, sd *types.ServiceData, probes flow.Probes) bool {
	if props == nil || cfg == nil || sd == nil || probes == nil {
		return false
	}
	if probes.Platform() != enums.PlatformMobile {
		return false
	}
	if !probes.SupportsPopups() {
		return false
	}
	if !cfg.Native.FirebaseConfigured() {
		return false
	}
	if !supportedNativePairing(probes.OS(), probes.Browser()) {
		return false
	}
	return sd.Eligibility.Native || cfg.Native.EnableNativeCheckout
}

// supportedNativePairing lists the OS/browser combinations the app-switch
// heuristic is known to work on.
func supportedNativePairing(os enums.OS, browser enums.Browser) bool {
	switch {
	case os == enums.OSIOS && browser == enums.BrowserSafari:
		return true
	case os == enums.OSAndroid && browser == enums.BrowserChrome:
		return true
	}
	return false
}

// NativePayment is the attempt-level gate for the app-switch flow.
func NativePayment(payment *types.Payment, sd *types.ServiceData) bool {
	if payment == nil || sd == nil {
		return false
	}
	// The native flow opens its own popup; an attempt already holding one
	// cannot enter it.
	if payment.Win != nil {
		return false
	}
	switch payment.FundingSource {
	case enums.FundingSourcePayPal, enums.FundingSourceVenmo:
		return true
	}
	return false
}
