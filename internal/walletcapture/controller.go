// Package walletcapture implements the one-click wallet flow: approve the
// order server-side with a vaulted instrument, and fall back to web checkout
// whenever shipping is required or the approval declines.
package walletcapture

import (
	"context"
	"sync"
	"time"

	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/internal/eligibility"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/internal/flow"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/enums"
	pkgerrors "github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/errors"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/types"
	"github.com/sethvargo/go-retry"
)

// Flow is the wallet capture descriptor.
type Flow struct{}

func New() *Flow {
	return &Flow{}
}

func (f *Flow) Name() enums.Flow {
	return enums.FlowWalletCapture
}

// Setup has nothing to establish; the flow holds no session state.
func (f *Flow) Setup(ctx context.Context, fctx *flow.Context) error {
	return nil
}

func (f *Flow) IsEligible(fctx *flow.Context) bool {
	if fctx == nil {
		return false
	}
	return eligibility.WalletCapture(fctx.Props, fctx.Config, fctx.ServiceData)
}

func (f *Flow) IsPaymentEligible(fctx *flow.Context, payment *types.Payment) bool {
	if fctx == nil {
		return false
	}
	return eligibility.WalletCapturePayment(payment, fctx.ServiceData)
}

func (f *Flow) Init(fctx *flow.Context, payment *types.Payment) (flow.Instance, error) {
	return NewInstance(fctx, payment)
}

func (f *Flow) Spinner() bool { return true }
func (f *Flow) Inline() bool  { return false }

type state int

const (
	stateIdle state = iota
	stateAwaitingOrder
	stateAwaitingShippingCheck
	stateApproving
	stateFallingBack
	stateTerminal
)

// Instance is one wallet capture attempt.
type Instance struct {
	fctx       *flow.Context
	payment    *types.Payment
	instrument types.Instrument

	mu         sync.Mutex
	state      state
	delegation flow.Delegation
	delegate   flow.Instance
	guard      flow.CallbackGuard
}

// NewInstance validates the attempt preconditions up front: an attempt must
// not be creatable in a state where Start could only fail.
func NewInstance(fctx *flow.Context, payment *types.Payment) (*Instance, error) {
	if fctx == nil || fctx.Props == nil || fctx.Config == nil || fctx.ServiceData == nil || fctx.OrderAPI == nil || fctx.Checkout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "flow context incomplete")
	}
	if payment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment selection required")
	}
	if payment.InstrumentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "instrument id required for wallet capture")
	}
	sd := fctx.ServiceData
	if sd.BuyerAccessToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer access token required for wallet capture")
	}
	if len(sd.Wallet.InstrumentsFor(payment.FundingSource)) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wallet has no entry for funding source").
			WithDetails(map[string]string{"fundingSource": payment.FundingSource.String()})
	}
	instrument, ok := sd.Wallet.FindInstrument(payment.FundingSource, payment.InstrumentID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "instrument not present in wallet").
			WithDetails(map[string]string{"instrumentID": payment.InstrumentID})
	}
	if instrument.Type == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "instrument has no type")
	}

	return &Instance{
		fctx:       fctx,
		payment:    payment,
		instrument: instrument,
		state:      stateIdle,
		delegation: flow.DelegationActive,
	}, nil
}

// Click needs no popup or pre-validation for this flow.
func (i *Instance) Click(ctx context.Context) error {
	return nil
}

// Start creates the order, checks its shipping shape, and either approves it
// one-click or hands the attempt to web checkout. Approval failures are
// absorbed by the fallback, never surfaced to the caller.
func (i *Instance) Start(ctx context.Context) error {
	started := time.Now()
	i.setState(stateAwaitingOrder)
	i.fctx.Metrics.IncAttempt(enums.FlowWalletCapture.String())
	if i.fctx.Logger != nil {
		ctx = i.fctx.Logger.WithFlow(ctx, enums.FlowWalletCapture.String())
	}

	orderID, err := i.fctx.Props.CreateOrder(ctx)
	if err != nil {
		i.setState(stateTerminal)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	if i.fctx.Logger != nil {
		ctx = i.fctx.Logger.WithOrderID(ctx, orderID)
	}

	i.setState(stateAwaitingShippingCheck)
	info, err := i.lookupOrderInfo(ctx, orderID)
	if err != nil {
		i.logWarn(ctx, "supplemental order lookup failed, falling back to web checkout")
		return i.fallback(ctx, orderID, "order_lookup_failed")
	}
	if info.RequiresShippingAddress {
		return i.fallback(ctx, orderID, "shipping_required")
	}

	// The shipping check above has resolved; only now may the approval call
	// be issued.
	i.setState(stateApproving)
	approval, err := i.fctx.OrderAPI.OneClickApproveOrder(ctx, flow.OneClickApproval{
		OrderID:          orderID,
		InstrumentType:   i.instrument.Type,
		InstrumentID:     i.payment.InstrumentID,
		BuyerAccessToken: i.fctx.ServiceData.BuyerAccessToken,
	})
	if err != nil {
		i.logError(ctx, "one-click approval failed, falling back to web checkout", err)
		return i.fallback(ctx, orderID, "approval_failed")
	}

	i.setState(stateTerminal)
	i.fctx.Metrics.IncApproval(enums.FlowWalletCapture.String())
	i.fctx.Metrics.ObserveAttemptDuration(enums.FlowWalletCapture.String(), time.Since(started))

	var deliverErr error
	i.guard.Deliver(func() {
		deliverErr = i.fctx.Props.OnApprove(ctx,
			types.ApprovalData{OrderID: orderID, PayerID: approval.PayerID},
			types.ApprovalActions{Restart: func(ctx context.Context) error {
				return i.fallback(ctx, orderID, "restart")
			}},
		)
	})
	return deliverErr
}

// Close releases nothing of our own; after a fallback it routes to the
// delegate so the web checkout can tear down its transport.
func (i *Instance) Close(ctx context.Context) error {
	i.mu.Lock()
	delegate := i.delegate
	i.mu.Unlock()
	if delegate != nil {
		return delegate.Close(ctx)
	}
	return nil
}

// fallback hands the rest of the attempt to web checkout, carrying the
// order id and an auth code exchanged from the buyer access token. Errors
// from the fallback path itself propagate to the caller.
func (i *Instance) fallback(ctx context.Context, orderID, reason string) error {
	i.mu.Lock()
	if i.delegation == flow.DelegationDelegated {
		// A superseded path resolved late; its outcome is dropped.
		i.mu.Unlock()
		return nil
	}
	i.state = stateFallingBack
	i.mu.Unlock()

	authCode := ""
	if code, err := i.exchangeAuthCode(ctx); err != nil {
		// Web checkout works without the code; the buyer signs in again.
		i.logWarn(ctx, "auth code exchange failed, continuing without it")
	} else {
		authCode = code
	}

	delegate, err := i.fctx.Checkout.Init(i.fctx, flow.CheckoutInit{
		FundingSource: i.payment.FundingSource,
		OrderID:       orderID,
		AuthCode:      authCode,
		BuyerIntent:   enums.BuyerIntentPayWithDifferentFundingShipping,
		IsClick:       false,
	})
	if err != nil {
		return err
	}

	i.mu.Lock()
	i.delegation = flow.DelegationDelegated
	i.delegate = delegate
	i.state = stateTerminal
	i.mu.Unlock()
	i.fctx.Metrics.IncFallback(enums.FlowWalletCapture.String(), reason)

	return delegate.Start(ctx)
}

func (i *Instance) lookupOrderInfo(ctx context.Context, orderID string) (flow.SupplementalOrderInfo, error) {
	var info flow.SupplementalOrderInfo
	err := retry.Do(ctx, i.backoff(), func(ctx context.Context) error {
		res, err := i.fctx.OrderAPI.GetSupplementalOrderInfo(ctx, orderID)
		if err != nil {
			if pkgerrors.Retryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		info = res
		return nil
	})
	return info, err
}

func (i *Instance) exchangeAuthCode(ctx context.Context) (string, error) {
	var code string
	err := retry.Do(ctx, i.backoff(), func(ctx context.Context) error {
		res, err := i.fctx.OrderAPI.ExchangeAccessTokenForAuthCode(ctx, i.fctx.ServiceData.BuyerAccessToken)
		if err != nil {
			if pkgerrors.Retryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		code = res
		return nil
	})
	return code, err
}

func (i *Instance) backoff() retry.Backoff {
	attempts := i.fctx.Config.Flow.OrderLookupAttempts
	delay := i.fctx.Config.Flow.OrderLookupBackoff
	if delay <= 0 {
		delay = 250 * time.Millisecond
	}
	return retry.WithMaxRetries(attempts, retry.NewConstant(delay))
}

func (i *Instance) setState(next state) {
	i.mu.Lock()
	i.state = next
	i.mu.Unlock()
}

func (i *Instance) logWarn(ctx context.Context, msg string) {
	if i.fctx.Logger != nil {
		i.fctx.Logger.Warn(ctx, msg)
	}
}

func (i *Instance) logError(ctx context.Context, msg string, err error) {
	if i.fctx.Logger != nil {
		i.fctx.Logger.Error(ctx, msg, err)
	}
}
