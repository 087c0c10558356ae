package types

import (
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/enums"
)

// Window is the handle to an already-opened popup or tab.
type Window interface {
	// Close releases the window. Safe to call more than once.
	Close() error
	// Closed reports whether the window has been closed, by us or by the
	// browser/OS handing control elsewhere.
	Closed() bool
}

// Payment is the funding source and instrument the buyer selected for one
// attempt. It is immutable once the attempt starts. A non-nil Win means the
// attempt is already mid-popup, which excludes flows that must open a fresh
// popup of their own.
type Payment struct {
	FundingSource enums.FundingSource
	InstrumentID  string
	Win           Window
}
