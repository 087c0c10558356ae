// Package flow defines the contracts between the button host, the payment
// flows, and the external collaborators they drive: the order API, the popup
// capability, and the black-box web checkout fallback.
package flow

import (
	"context"
	"errors"

	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/config"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/enums"
	pkgerrors "github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/errors"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/logger"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/metrics"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/types"
)

// Context bundles the session-scoped inputs and collaborators every flow
// works against. It is assembled once by the hosting button component.
type Context struct {
	Props       *types.CheckoutProps
	Config      *config.Config
	ServiceData *types.ServiceData

	Probes   Probes
	Popup    PopupOpener
	OrderAPI OrderAPI
	Checkout CheckoutFlow

	Logger  *logger.Logger
	Metrics *metrics.FlowMetrics
}

// Instance is a live, attempt-scoped controller returned by a flow's Init.
// Close is idempotent and safe even if Start was never called.
type Instance interface {
	Click(ctx context.Context) error
	Start(ctx context.Context) error
	Close(ctx context.Context) error
}

// Flow is a named strategy for completing checkout. Init must not be called
// before Setup has resolved for the flow.
type Flow interface {
	Name() enums.Flow
	Setup(ctx context.Context, fctx *Context) error
	IsEligible(fctx *Context) bool
	IsPaymentEligible(fctx *Context, payment *types.Payment) bool
	Init(fctx *Context, payment *types.Payment) (Instance, error)
	Spinner() bool
	Inline() bool
}

// SupplementalOrderInfo is the shipping shape of an order.
type SupplementalOrderInfo struct {
	RequiresShippingAddress bool
	HasFullShippingAddress  bool
}

// OneClickApproval is the input to a one-click order approval.
type OneClickApproval struct {
	OrderID          string
	InstrumentType   string
	InstrumentID     string
	BuyerAccessToken string
}

// Approval is the outcome of a successful approval call.
type Approval struct {
	PayerID string
}

// OrderAPI groups the order-side operations the flows consume. Order
// creation itself comes from the merchant via CheckoutProps.CreateOrder.
type OrderAPI interface {
	ExchangeAccessTokenForAuthCode(ctx context.Context, buyerAccessToken string) (string, error)
	GetSupplementalOrderInfo(ctx context.Context, orderID string) (SupplementalOrderInfo, error)
	OneClickApproveOrder(ctx context.Context, approval OneClickApproval) (Approval, error)
}

// ErrPopupBlocked is returned by PopupOpener.Open when the platform refused
// to open the window. On iOS Safari this is the signal that the native app
// took the hand-off instead.
var ErrPopupBlocked = pkgerrors.New(pkgerrors.CodeTransport, "popup blocked")

// IsPopupBlocked reports whether the error is the popup-blocked condition.
func IsPopupBlocked(err error) bool {
	return errors.Is(err, ErrPopupBlocked)
}

// PopupOpener opens a popup window. It must be invoked synchronously with
// the buyer gesture; popup blockers kill asynchronous opens.
type PopupOpener interface {
	Open(ctx context.Context, url string) (types.Window, error)
}

// CheckoutInit carries the buyer context preserved across a fallback into
// web checkout.
type CheckoutInit struct {
	FundingSource enums.FundingSource
	OrderID       string
	AuthCode      string

	// BuyerAccessToken and PayloadID are forwarded verbatim when the native
	// app requested the fallback.
	BuyerAccessToken string
	PayloadID        string

	BuyerIntent enums.BuyerIntent
	IsClick     bool

	// Win reuses an already-open popup so the fallback does not open a
	// second one.
	Win types.Window
}

// CheckoutFlow is the universally-eligible web checkout, consumed as a
// black box.
type CheckoutFlow interface {
	Init(fctx *Context, init CheckoutInit) (Instance, error)
}
