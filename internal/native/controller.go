// Package native implements the app-switch flow: open a popup with the
// buyer gesture, detect whether the native app took the hand-off, and drive
// the rest of the attempt over the session socket. Attempts where the app
// never took over fall back to web checkout inside the popup already open.
package native

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/internal/eligibility"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/internal/flow"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/enums"
	pkgerrors "github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/errors"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/socket"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/types"
	"go.uber.org/multierr"
)

// Flow is the native app-switch descriptor. It shares one SessionContext
// with every attempt on the page.
type Flow struct {
	session *SessionContext
}

func New(session *SessionContext) (*Flow, error) {
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session context required")
	}
	return &Flow{session: session}, nil
}

func (f *Flow) Name() enums.Flow {
	return enums.FlowNative
}

// Setup establishes the page-wide session socket. Idempotent while the
// session stays healthy.
func (f *Flow) Setup(ctx context.Context, fctx *flow.Context) error {
	if fctx == nil || fctx.Props == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "flow context required")
	}
	return f.session.Setup(ctx, fctx.Props.PageURL)
}

func (f *Flow) IsEligible(fctx *flow.Context) bool {
	if fctx == nil {
		return false
	}
	return eligibility.Native(fctx.Props, fctx.Config, fctx.ServiceData, fctx.Probes)
}

func (f *Flow) IsPaymentEligible(fctx *flow.Context, payment *types.Payment) bool {
	if fctx == nil {
		return false
	}
	return eligibility.NativePayment(payment, fctx.ServiceData)
}

func (f *Flow) Init(fctx *flow.Context, payment *types.Payment) (flow.Instance, error) {
	return NewInstance(fctx, f.session, payment)
}

func (f *Flow) Spinner() bool { return false }
func (f *Flow) Inline() bool  { return false }

// SessionProps is the session state pushed to (and requested by) the
// native app.
type SessionProps struct {
	OrderID                string `json:"orderID"`
	SessionUID             string `json:"sessionUID"`
	PageURL                string `json:"pageUrl"`
	FundingSource          string `json:"fundingSource"`
	FacilitatorAccessToken string `json:"facilitatorAccessToken,omitempty"`
}

type approvePayload struct {
	PayerID string `json:"payerID"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type fallbackPayload struct {
	BuyerAccessToken string `json:"buyerAccessToken,omitempty"`
	PayloadID        string `json:"payloadID,omitempty"`
}

// Instance is one native attempt.
type Instance struct {
	fctx    *flow.Context
	session *SessionContext
	payment *types.Payment

	mu            sync.Mutex
	popup         types.Window
	popupBlocked  bool
	clickRejected bool
	switched      bool

	startOnce sync.Once
	startErr  error

	delegation flow.Delegation
	delegate   flow.Instance
	guard      flow.CallbackGuard
}

// NewInstance validates the collaborators the attempt cannot run without.
func NewInstance(fctx *flow.Context, session *SessionContext, payment *types.Payment) (*Instance, error) {
	if fctx == nil || fctx.Props == nil || fctx.Config == nil || fctx.Probes == nil || fctx.Popup == nil || fctx.Checkout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "flow context incomplete")
	}
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session context required")
	}
	if payment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment selection required")
	}
	return &Instance{
		fctx:       fctx,
		session:    session,
		payment:    payment,
		delegation: flow.DelegationActive,
	}, nil
}

// Click opens the popup synchronously with the buyer gesture; a popup opened
// later would be eaten by the popup blocker. On iOS the blocked-open
// exception is the app-switch signal, not a failure. Merchant click
// validation runs after the artifact exists so rejecting it can close it.
func (i *Instance) Click(ctx context.Context) error {
	popupURL := BuildPopupURL(i.fctx.Config.Native, i.session.UID(), i.session.PageURL(), i.payment.FundingSource)

	win, err := i.fctx.Popup.Open(ctx, popupURL)
	switch {
	case err == nil:
		i.mu.Lock()
		i.popup = win
		i.mu.Unlock()
	case flow.IsPopupBlocked(err) && i.fctx.Probes.OS() == enums.OSIOS:
		i.mu.Lock()
		i.popupBlocked = true
		i.mu.Unlock()
	default:
		return err
	}

	if i.fctx.Props.OnClick != nil {
		ok, err := i.fctx.Props.OnClick(ctx, types.ClickData{FundingSource: i.payment.FundingSource})
		if err != nil {
			i.closePopup()
			return err
		}
		if !ok {
			i.mu.Lock()
			i.clickRejected = true
			i.mu.Unlock()
			i.closePopup()
			return nil
		}
	}
	return nil
}

// Start is idempotent: repeated calls return the first outcome without
// re-running any side effect.
func (i *Instance) Start(ctx context.Context) error {
	i.startOnce.Do(func() {
		i.startErr = i.run(ctx)
	})
	return i.startErr
}

func (i *Instance) run(ctx context.Context) error {
	i.mu.Lock()
	rejected := i.clickRejected
	i.mu.Unlock()
	if rejected {
		i.logWarn(ctx, "click validation rejected the attempt, not starting")
		return nil
	}

	i.fctx.Metrics.IncAttempt(enums.FlowNative.String())
	if i.fctx.Logger != nil {
		ctx = i.fctx.Logger.WithFlow(ctx, enums.FlowNative.String())
		ctx = i.fctx.Logger.WithSessionUID(ctx, i.session.UID())
	}

	orderID, err := i.fctx.Props.CreateOrder(ctx)
	if err != nil {
		i.closePopup()
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	if i.fctx.Logger != nil {
		ctx = i.fctx.Logger.WithOrderID(ctx, orderID)
	}

	// Let the app-switch signals settle before reading them; popup-close
	// detection races script execution.
	if err := sleepContext(ctx, i.fctx.Config.Flow.AppSwitchSettleDelay); err != nil {
		i.closePopup()
		return err
	}

	i.mu.Lock()
	switched := appSwitched(i.fctx.Probes.OS(), i.popupBlocked, i.popup)
	i.switched = switched
	popup := i.popup
	i.mu.Unlock()

	if !switched {
		// The app never took over; finish inside the popup we already own.
		return i.fallback(ctx, flow.CheckoutInit{
			FundingSource: i.payment.FundingSource,
			OrderID:       orderID,
			BuyerIntent:   enums.BuyerIntentPay,
			IsClick:       true,
			Win:           popup,
		}, "not_switched")
	}

	sock, err := i.session.Socket()
	if err != nil {
		i.closePopup()
		return err
	}
	i.registerHandlers(sock, orderID)
	if err := sock.Reconnect(ctx); err != nil {
		return i.abortSwitched(ctx, err)
	}
	if err := sock.Send(ctx, enums.MessageSetProps, i.sessionProps(orderID)); err != nil {
		return i.abortSwitched(ctx, err)
	}
	return nil
}

// registerHandlers wires the socket before any traffic is pushed; the
// Reconnect that follows is what commits the registrations.
func (i *Instance) registerHandlers(sock socket.Socket, orderID string) {
	sock.On(enums.MessageGetProps, func(ctx context.Context, payload []byte) (any, error) {
		return i.sessionProps(orderID), nil
	})

	sock.On(enums.MessageOnApprove, func(ctx context.Context, payload []byte) (any, error) {
		var data approvePayload
		if err := json.Unmarshal(payload, &data); err != nil {
			return nil, err
		}
		_ = i.session.Release(ctx)
		i.fctx.Metrics.IncApproval(enums.FlowNative.String())
		var deliverErr error
		i.guard.Deliver(func() {
			deliverErr = i.fctx.Props.OnApprove(ctx,
				types.ApprovalData{OrderID: orderID, PayerID: data.PayerID},
				types.ApprovalActions{Restart: func(ctx context.Context) error {
					return i.fallback(ctx, flow.CheckoutInit{
						FundingSource: i.payment.FundingSource,
						OrderID:       orderID,
						BuyerIntent:   enums.BuyerIntentPay,
						IsClick:       false,
					}, "restart")
				}},
			)
		})
		return nil, deliverErr
	})

	sock.On(enums.MessageOnCancel, func(ctx context.Context, payload []byte) (any, error) {
		_ = i.session.Release(ctx)
		var deliverErr error
		i.guard.Deliver(func() {
			if i.fctx.Props.OnCancel != nil {
				deliverErr = i.fctx.Props.OnCancel(ctx)
			}
		})
		return nil, deliverErr
	})

	sock.On(enums.MessageOnError, func(ctx context.Context, payload []byte) (any, error) {
		var data errorPayload
		_ = json.Unmarshal(payload, &data)
		_ = i.session.Release(ctx)
		i.guard.Deliver(func() {
			if i.fctx.Props.OnError != nil {
				i.fctx.Props.OnError(ctx, pkgerrors.New(pkgerrors.CodeInternal, data.Message))
			}
		})
		return nil, nil
	})

	sock.On(enums.MessageFallback, func(ctx context.Context, payload []byte) (any, error) {
		var data fallbackPayload
		_ = json.Unmarshal(payload, &data)
		_ = i.session.Release(ctx)
		return nil, i.fallback(ctx, flow.CheckoutInit{
			FundingSource:    i.payment.FundingSource,
			OrderID:          orderID,
			BuyerAccessToken: data.BuyerAccessToken,
			PayloadID:        data.PayloadID,
			BuyerIntent:      enums.BuyerIntentPay,
			IsClick:          false,
		}, "native_fallback")
	})
}

func (i *Instance) sessionProps(orderID string) SessionProps {
	facilitator := ""
	if i.fctx.ServiceData != nil {
		facilitator = i.fctx.ServiceData.FacilitatorAccessToken
	}
	return SessionProps{
		OrderID:                orderID,
		SessionUID:             i.session.UID(),
		PageURL:                i.session.PageURL(),
		FundingSource:          i.payment.FundingSource.String(),
		FacilitatorAccessToken: facilitator,
	}
}

// fallback hands the rest of the attempt to web checkout. Superseded paths
// that resolve later are dropped.
func (i *Instance) fallback(ctx context.Context, init flow.CheckoutInit, reason string) error {
	i.mu.Lock()
	if i.delegation == flow.DelegationDelegated {
		i.mu.Unlock()
		return nil
	}
	i.mu.Unlock()

	delegate, err := i.fctx.Checkout.Init(i.fctx, init)
	if err != nil {
		return err
	}

	i.mu.Lock()
	i.delegation = flow.DelegationDelegated
	i.delegate = delegate
	i.mu.Unlock()
	i.fctx.Metrics.IncFallback(enums.FlowNative.String(), reason)

	return delegate.Start(ctx)
}

// abortSwitched tears down a half-wired switched attempt and propagates the
// cause.
func (i *Instance) abortSwitched(ctx context.Context, cause error) error {
	err := multierr.Append(cause, i.session.Release(ctx))
	i.closePopup()
	return err
}

// Close waits out the grace delay so a racing popup-close detection can
// land, then releases the socket session only if the app actually switched,
// and always closes the popup. Safe to call repeatedly or before Start.
func (i *Instance) Close(ctx context.Context) error {
	if err := sleepContext(ctx, i.fctx.Config.Flow.CloseGraceDelay); err != nil {
		return err
	}

	i.mu.Lock()
	switched := i.switched
	popup := i.popup
	i.popup = nil
	delegate := i.delegate
	i.mu.Unlock()

	var errs error
	if switched {
		errs = multierr.Append(errs, i.session.Release(ctx))
	}
	if popup != nil {
		errs = multierr.Append(errs, popup.Close())
	}
	if delegate != nil {
		errs = multierr.Append(errs, delegate.Close(ctx))
	}
	return errs
}

func (i *Instance) closePopup() {
	i.mu.Lock()
	popup := i.popup
	i.popup = nil
	i.mu.Unlock()
	if popup != nil {
		_ = popup.Close()
	}
}

func (i *Instance) logWarn(ctx context.Context, msg string) {
	if i.fctx.Logger != nil {
		i.fctx.Logger.Warn(ctx, msg)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return pkgerrors.Wrap(pkgerrors.CodeInternal, ctx.Err(), "attempt cancelled")
	case <-timer.C:
		return nil
	}
}
