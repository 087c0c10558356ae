package enums

// BuyerIntent flags why an attempt re-entered the web checkout fallback, so
// the fallback can pre-select the right experience.
type BuyerIntent string

const (
	BuyerIntentPay                             BuyerIntent = "pay"
	BuyerIntentPayWithDifferentFundingShipping BuyerIntent = "pay_with_different_funding_shipping"
)

// String implements fmt.Stringer.
func (b BuyerIntent) String() string {
	return string(b)
}
