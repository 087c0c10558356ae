package types

import (
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/enums"
)

// Instrument is a stored payment credential inside the buyer wallet.
type Instrument struct {
	InstrumentID string `json:"instrumentID"`
	Type         string `json:"type"`
	Label        string `json:"label,omitempty"`
	OneClick     bool   `json:"oneClick"`
}

// Wallet maps funding sources to the instruments vaulted against them.
type Wallet struct {
	Instruments map[enums.FundingSource][]Instrument `json:"instruments"`
}

// InstrumentsFor returns the instruments vaulted for a funding source.
func (w *Wallet) InstrumentsFor(fundingSource enums.FundingSource) []Instrument {
	if w == nil || w.Instruments == nil {
		return nil
	}
	return w.Instruments[fundingSource]
}

// FindInstrument locates a vaulted instrument by id within a funding source.
func (w *Wallet) FindInstrument(fundingSource enums.FundingSource, instrumentID string) (Instrument, bool) {
	for _, instrument := range w.InstrumentsFor(fundingSource) {
		if instrument.InstrumentID == instrumentID {
			return instrument, true
		}
	}
	return Instrument{}, false
}

// Eligibility carries the server-computed per-flow eligibility flags.
type Eligibility struct {
	Native   bool `json:"native"`
	OneClick bool `json:"oneClick"`
}

// ServiceData is the server-computed eligibility snapshot for the session.
// It is read-only for the lifetime of the page; flows that depend on an
// absent field are simply not offered.
type ServiceData struct {
	Wallet                 *Wallet     `json:"wallet,omitempty"`
	BuyerAccessToken       string      `json:"buyerAccessToken,omitempty"`
	FacilitatorAccessToken string      `json:"facilitatorAccessToken,omitempty"`
	Eligibility            Eligibility `json:"eligibility"`
}
