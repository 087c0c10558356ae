package enums

// Flow names a checkout strategy.
type Flow string

const (
	FlowWalletCapture Flow = "wallet_capture"
	FlowNative        Flow = "native"
	FlowWebCheckout   Flow = "checkout"
)

// String implements fmt.Stringer.
func (f Flow) String() string {
	return string(f)
}
