package native

import (
	"context"
	"sync"

	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/config"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/enums"
	pkgerrors "github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/errors"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/logger"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/socket"
	"github.com/google/uuid"
)

// SessionOptions is handed to the socket dialer when the session is
// established.
type SessionOptions struct {
	SessionUID          string
	FirebaseAPIKey      string
	FirebaseDatabaseURL string
	FirebaseProjectID   string
}

// SocketDialer opens the signaling connection for a native session.
type SocketDialer interface {
	Dial(ctx context.Context, opts SessionOptions) (socket.Socket, error)
}

// SessionContext owns the per-page native session: the session identifier,
// the signaling socket, and the page URL captured at setup. The hosting
// button component owns exactly one of these, which is what keeps the "at
// most one live socket per page" rule without hidden module-level state.
//
// Lifecycle: uninitialized -> active (Setup) -> invalidated (fatal socket
// error) or back to uninitialized (Release). Setup while active is a no-op.
type SessionContext struct {
	cfg    config.NativeConfig
	logg   *logger.Logger
	dialer SocketDialer

	mu      sync.Mutex
	state   enums.SessionState
	uid     string
	sock    socket.Socket
	pageURL string
}

// NewSessionContext builds an uninitialized session context.
func NewSessionContext(cfg config.NativeConfig, logg *logger.Logger, dialer SocketDialer) (*SessionContext, error) {
	if dialer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "socket dialer required")
	}
	return &SessionContext{
		cfg:    cfg,
		logg:   logg,
		dialer: dialer,
		state:  enums.SessionStateUninitialized,
	}, nil
}

// Setup establishes the session socket. Calling it again while the session
// is active is a no-op; after invalidation or release it reconnects fresh.
func (s *SessionContext) Setup(ctx context.Context, pageURL string) error {
	s.mu.Lock()
	if s.state == enums.SessionStateActive {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	uid := uuid.NewString()
	sock, err := s.dialer.Dial(ctx, SessionOptions{
		SessionUID:          uid,
		FirebaseAPIKey:      s.cfg.FirebaseAPIKey,
		FirebaseDatabaseURL: s.cfg.FirebaseDatabaseURL,
		FirebaseProjectID:   s.cfg.FirebaseProjectID,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeTransport, err, "open session socket")
	}
	sock.OnError(func(cause error) {
		s.invalidate(cause)
	})

	s.mu.Lock()
	if s.state == enums.SessionStateActive {
		// Lost the race against a concurrent Setup; keep the winner.
		s.mu.Unlock()
		return sock.Close(ctx)
	}
	s.state = enums.SessionStateActive
	s.uid = uid
	s.sock = sock
	s.pageURL = pageURL
	s.mu.Unlock()
	return nil
}

func (s *SessionContext) invalidate(cause error) {
	s.mu.Lock()
	s.state = enums.SessionStateInvalidated
	s.sock = nil
	uid := s.uid
	s.mu.Unlock()
	if s.logg != nil {
		ctx := s.logg.WithSessionUID(context.Background(), uid)
		s.logg.Error(ctx, "native session socket failed", cause)
	}
}

// Release sends the close notice to the native app and tears the socket
// down, returning the context to uninitialized so a later Setup can
// reconnect. Safe to call when no session is active.
func (s *SessionContext) Release(ctx context.Context) error {
	s.mu.Lock()
	if s.state != enums.SessionStateActive {
		s.mu.Unlock()
		return nil
	}
	sock := s.sock
	s.state = enums.SessionStateUninitialized
	s.sock = nil
	s.uid = ""
	s.mu.Unlock()

	// Close notice is best effort; the app may already be gone.
	_ = sock.Send(ctx, enums.MessageOnClose, nil)
	return sock.Close(ctx)
}

// State returns the current lifecycle state.
func (s *SessionContext) State() enums.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// UID returns the session identifier, empty unless active.
func (s *SessionContext) UID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uid
}

// PageURL returns the page URL captured at setup.
func (s *SessionContext) PageURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageURL
}

// Socket returns the live session socket.
func (s *SessionContext) Socket() (socket.Socket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != enums.SessionStateActive || s.sock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "native session not active")
	}
	return s.sock, nil
}
