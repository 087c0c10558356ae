package socket

import (
	"context"
	"sync"

	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/enums"
	pkgerrors "github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/errors"
)

// Loopback is an in-process Socket wired directly to a peer. Tests and the
// simulator use a Pair in place of a real signaling connection.
type Loopback struct {
	mu       sync.Mutex
	peer     *Loopback
	handlers map[enums.MessageType]Handler
	errFn    func(error)
	closed   bool
}

// Pair returns two loopback sockets connected to each other.
func Pair() (*Loopback, *Loopback) {
	a := &Loopback{handlers: map[enums.MessageType]Handler{}}
	b := &Loopback{handlers: map[enums.MessageType]Handler{}}
	a.peer = b
	b.peer = a
	return a, b
}

// Send delivers the payload to the peer's handler and returns its ack.
func (l *Loopback) Send(ctx context.Context, kind enums.MessageType, payload any) error {
	raw, err := marshalPayload(payload)
	if err != nil {
		return err
	}

	l.mu.Lock()
	closed := l.closed
	peer := l.peer
	l.mu.Unlock()
	if closed {
		return pkgerrors.New(pkgerrors.CodeTransport, "socket closed")
	}

	peer.mu.Lock()
	peerClosed := peer.closed
	handler := peer.handlers[kind]
	peer.mu.Unlock()
	if peerClosed {
		return pkgerrors.New(pkgerrors.CodeTransport, "peer closed")
	}
	if handler == nil {
		// Unhandled kinds are acknowledged and dropped, like a real peer
		// that has no listener registered.
		return nil
	}
	if _, err := handler(ctx, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeTransport, err, "peer handler")
	}
	return nil
}

// Request delivers the payload to the peer's handler and decodes its reply.
func (l *Loopback) Request(ctx context.Context, kind enums.MessageType, payload any) ([]byte, error) {
	raw, err := marshalPayload(payload)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	peer := l.peer
	l.mu.Unlock()

	peer.mu.Lock()
	handler := peer.handlers[kind]
	peer.mu.Unlock()
	if handler == nil {
		return nil, pkgerrors.New(pkgerrors.CodeTransport, "no peer handler")
	}
	result, err := handler(ctx, raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransport, err, "peer handler")
	}
	return marshalPayload(result)
}

// On registers the handler for a message kind, replacing any previous one.
func (l *Loopback) On(kind enums.MessageType, handler Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[kind] = handler
}

// Reconnect is a no-op for the loopback driver.
func (l *Loopback) Reconnect(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return pkgerrors.New(pkgerrors.CodeTransport, "socket closed")
	}
	return nil
}

// Close marks the socket closed. Safe to call more than once.
func (l *Loopback) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

// OnError registers the fatal error handler.
func (l *Loopback) OnError(handler func(error)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errFn = handler
}

// FailWith fires the registered fatal error handler, simulating a transport
// failure.
func (l *Loopback) FailWith(err error) {
	l.mu.Lock()
	errFn := l.errFn
	l.closed = true
	l.mu.Unlock()
	if errFn != nil {
		errFn(err)
	}
}
