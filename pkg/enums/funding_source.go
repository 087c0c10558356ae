package enums

import "fmt"

// FundingSource identifies how the buyer intends to fund the order.
type FundingSource string

const (
	FundingSourcePayPal   FundingSource = "paypal"
	FundingSourceVenmo    FundingSource = "venmo"
	FundingSourceCard     FundingSource = "card"
	FundingSourceCredit   FundingSource = "credit"
	FundingSourcePayLater FundingSource = "paylater"
)

var validFundingSources = []FundingSource{
	FundingSourcePayPal,
	FundingSourceVenmo,
	FundingSourceCard,
	FundingSourceCredit,
	FundingSourcePayLater,
}

// String implements fmt.Stringer.
func (f FundingSource) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FundingSource.
func (f FundingSource) IsValid() bool {
	for _, candidate := range validFundingSources {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFundingSource converts raw input into a FundingSource.
func ParseFundingSource(value string) (FundingSource, error) {
	for _, candidate := range validFundingSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid funding source %q", value)
}
