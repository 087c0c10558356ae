// Package socket provides the bidirectional message channel used by the
// native payment flow to talk to the app that took over the checkout. The
// flow controllers only depend on the Socket interface; the websocket driver
// and the in-process loopback pair are interchangeable behind it.
package socket

import (
	"context"
	"encoding/json"

	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/enums"
	pkgerrors "github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/errors"
)

// Handler consumes an incoming message payload and optionally returns a
// reply payload to acknowledge with.
type Handler func(ctx context.Context, payload []byte) (any, error)

// Socket is the abstract message-socket capability. Send blocks until the
// peer acknowledges the message. On replaces any previously registered
// handler for the kind; registrations must complete (via Reconnect) before
// traffic is sent.
type Socket interface {
	Send(ctx context.Context, kind enums.MessageType, payload any) error
	On(kind enums.MessageType, handler Handler)
	Reconnect(ctx context.Context) error
	Close(ctx context.Context) error
	OnError(handler func(error))
}

// envelope is the wire format shared by every driver.
type envelope struct {
	ID      string          `json:"id"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
	ReplyTo string          `json:"replyTo,omitempty"`
	Err     string          `json:"error,omitempty"`
}

func marshalPayload(payload any) (json.RawMessage, error) {
	if payload == nil {
		return nil, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal socket payload")
	}
	return raw, nil
}
