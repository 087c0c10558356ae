// Package eligibility holds the pure predicates that gate which payment
// flows may be offered. Session-level checks run once per page; payment
// checks run per attempt against the chosen funding source and instrument.
// Every predicate is a conjunction and returns on the first failing check.
package eligibility

import (
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/config"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/types"
)

// WalletCapture is the session-level gate for the one-click wallet flow.
func WalletCapture(props *types.CheckoutProps, cfg *config.Config, sd *types.ServiceData) bool {
	if props == nil || cfg == nil || sd == nil {
		return false
	}
	if sd.BuyerAccessToken == "" {
		return false
	}
	if sd.Wallet == nil {
		return false
	}
	if !sd.Eligibility.OneClick {
		return false
	}
	// One-click approval cannot renegotiate shipping mid-flight.
	if props.OnShippingChange != nil {
		return false
	}
	return true
}

// WalletCapturePayment is the attempt-level gate for the one-click wallet
// flow against a concrete funding source and instrument selection.
func WalletCapturePayment(payment *types.Payment, sd *types.ServiceData) bool {
	if payment == nil || sd == nil {
		return false
	}
	// A window already open means the attempt is mid-popup; this flow must
	// not be entered from there.
	if payment.Win != nil {
		return false
	}
	if payment.InstrumentID == "" {
		return false
	}
	instrument, ok := sd.Wallet.FindInstrument(payment.FundingSource, payment.InstrumentID)
	if !ok {
		return false
	}
	if instrument.Type == "" {
		return false
	}
	return instrument.OneClick
}
