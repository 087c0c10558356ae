package socket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/enums"
	pkgerrors "github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/errors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"
)

const kindAck = "ack"

// WSOptions configures the websocket driver.
type WSOptions struct {
	URL               string
	Header            http.Header
	DialTimeout       time.Duration
	SendTimeout       time.Duration
	ReconnectAttempts uint64
	ReconnectBackoff  time.Duration
}

// WS is a websocket-backed Socket. A single read pump routes acknowledgements
// to pending senders and dispatches everything else to registered handlers.
type WS struct {
	opts WSOptions

	mu       sync.Mutex
	conn     *websocket.Conn
	writeMu  sync.Mutex
	handlers map[enums.MessageType]Handler
	pending  map[string]chan envelope
	errFn    func(error)
	closed   bool
}

// DialWS connects to the signaling endpoint and starts the read pump.
func DialWS(ctx context.Context, opts WSOptions) (*WS, error) {
	if opts.URL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "socket url required")
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 10 * time.Second
	}

	s := &WS{
		opts:     opts,
		handlers: map[enums.MessageType]Handler{},
		pending:  map[string]chan envelope{},
	}
	if err := s.dial(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *WS) dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: s.opts.DialTimeout}
	conn, _, err := dialer.DialContext(ctx, s.opts.URL, s.opts.Header)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeTransport, err, "dial socket")
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	go s.readPump(conn)
	return nil
}

func (s *WS) readPump(conn *websocket.Conn) {
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			s.mu.Lock()
			closed := s.closed || s.conn != conn
			errFn := s.errFn
			s.mu.Unlock()
			if !closed && errFn != nil {
				errFn(pkgerrors.Wrap(pkgerrors.CodeTransport, err, "socket read"))
			}
			return
		}
		if env.ReplyTo != "" {
			s.mu.Lock()
			ch, ok := s.pending[env.ReplyTo]
			delete(s.pending, env.ReplyTo)
			s.mu.Unlock()
			if ok {
				ch <- env
			}
			continue
		}
		go s.dispatch(env)
	}
}

func (s *WS) dispatch(env envelope) {
	s.mu.Lock()
	handler := s.handlers[enums.MessageType(env.Kind)]
	s.mu.Unlock()
	if handler == nil {
		return
	}

	reply := envelope{ID: uuid.NewString(), Kind: kindAck, ReplyTo: env.ID}
	result, err := handler(context.Background(), env.Payload)
	if err != nil {
		reply.Err = err.Error()
	} else if raw, merr := marshalPayload(result); merr == nil {
		reply.Payload = raw
	}
	_ = s.write(reply)
}

func (s *WS) write(env envelope) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return pkgerrors.New(pkgerrors.CodeTransport, "socket not connected")
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.WriteJSON(env)
}

// Send delivers a message and blocks until the peer acknowledges it.
func (s *WS) Send(ctx context.Context, kind enums.MessageType, payload any) error {
	raw, err := marshalPayload(payload)
	if err != nil {
		return err
	}
	env := envelope{ID: uuid.NewString(), Kind: kind.String(), Payload: raw}

	ch := make(chan envelope, 1)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeTransport, "socket closed")
	}
	s.pending[env.ID] = ch
	s.mu.Unlock()

	if err := s.write(env); err != nil {
		s.dropPending(env.ID)
		return pkgerrors.Wrap(pkgerrors.CodeTransport, err, "socket write")
	}

	timer := time.NewTimer(s.opts.SendTimeout)
	defer timer.Stop()
	select {
	case reply := <-ch:
		if reply.Err != "" {
			return pkgerrors.New(pkgerrors.CodeTransport, reply.Err)
		}
		return nil
	case <-timer.C:
		s.dropPending(env.ID)
		return pkgerrors.New(pkgerrors.CodeTransport, "socket ack timeout")
	case <-ctx.Done():
		s.dropPending(env.ID)
		return pkgerrors.Wrap(pkgerrors.CodeTransport, ctx.Err(), "socket send cancelled")
	}
}

func (s *WS) dropPending(id string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// On registers the handler for a message kind, replacing any previous one.
func (s *WS) On(kind enums.MessageType, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[kind] = handler
}

// Reconnect re-establishes the connection, retrying with constant backoff.
// Handlers and the error callback survive the reconnect.
func (s *WS) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeTransport, "socket closed")
	}
	if conn := s.conn; conn != nil {
		s.conn = nil
		_ = conn.Close()
	}
	s.mu.Unlock()

	backoff := retry.NewConstant(s.opts.ReconnectBackoff)
	if s.opts.ReconnectBackoff <= 0 {
		backoff = retry.NewConstant(100 * time.Millisecond)
	}
	backoff = retry.WithMaxRetries(s.opts.ReconnectAttempts, backoff)
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.dial(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// Close tears the connection down. Safe to call more than once.
func (s *WS) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeTransport, err, "close socket")
		}
	}
	return nil
}

// OnError registers the fatal error handler fired when the read pump dies.
func (s *WS) OnError(handler func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errFn = handler
}
