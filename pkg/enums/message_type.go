package enums

// MessageType names a message exchanged with the native app over the
// session socket.
type MessageType string

const (
	MessageGetProps  MessageType = "getProps"
	MessageSetProps  MessageType = "setProps"
	MessageOnApprove MessageType = "onApprove"
	MessageOnCancel  MessageType = "onCancel"
	MessageOnError   MessageType = "onError"
	MessageFallback  MessageType = "fallback"
	MessageOnClose   MessageType = "onClose"
)

// String implements fmt.Stringer.
func (m MessageType) String() string {
	return string(m)
}
