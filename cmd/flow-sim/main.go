// flow-sim runs one simulated payment attempt end to end in-process: it
// assembles the flow registry against stubbed collaborators (order API, popup,
// web checkout, loopback signaling socket), picks the first eligible flow for
// a canned buyer, and drives click/start/close. Useful for eyeballing log
// output and flow selection without a browser host.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/internal/flow"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/internal/native"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/internal/registry"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/config"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/enums"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/logger"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/metrics"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/socket"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/types"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "flow-sim"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "flow-sim",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	flowMetrics := metrics.NewFlowMetrics(prometheus.NewRegistry())

	session, err := native.NewSessionContext(cfg.Native, logg, loopbackDialer{})
	requireResource(ctx, logg, "native session context", err)

	reg, err := registry.New(session)
	requireResource(ctx, logg, "flow registry", err)

	fctx := &flow.Context{
		Props:       simProps(logg),
		Config:      cfg,
		ServiceData: simServiceData(),
		Probes: flow.StaticProbes{
			DevicePlatform: enums.PlatformDesktop,
			DeviceOS:       enums.OSOther,
			DeviceBrowser:  enums.BrowserChrome,
			Popups:         true,
		},
		Popup:    &simPopup{},
		OrderAPI: &simOrderAPI{},
		Checkout: &simCheckout{logg: logg},
		Logger:   logg,
		Metrics:  flowMetrics,
	}

	requireResource(ctx, logg, "flow setup", reg.Setup(ctx, fctx))

	payment := &types.Payment{
		FundingSource: enums.FundingSourcePayPal,
		InstrumentID:  "SIM-INSTRUMENT-1",
	}

	selected := pickFlow(reg, fctx, payment)
	if selected == nil {
		requireResource(ctx, logg, "eligible flow", fmt.Errorf("no flow eligible for %s", payment.FundingSource))
	}
	ctx = logg.WithFlow(ctx, selected.Name().String())
	ctx = logg.WithFundingSource(ctx, payment.FundingSource.String())
	logg.Info(ctx, "flow selected")

	inst, err := selected.Init(fctx, payment)
	requireResource(ctx, logg, "flow instance", err)

	started := time.Now()
	if err := inst.Click(ctx); err != nil {
		logg.Error(ctx, "click failed", err)
		os.Exit(1)
	}
	if err := inst.Start(ctx); err != nil {
		logg.Error(ctx, "attempt failed", err)
		os.Exit(1)
	}
	if err := inst.Close(ctx); err != nil {
		logg.Error(ctx, "close failed", err)
		os.Exit(1)
	}
	flowMetrics.ObserveAttemptDuration(selected.Name().String(), time.Since(started))

	logg.Info(ctx, "simulated attempt complete")
}

// pickFlow walks the registry in order, the way a hosting button component
// would, and returns the first flow eligible for the session and the payment.
func pickFlow(reg *registry.Registry, fctx *flow.Context, payment *types.Payment) flow.Flow {
	for _, f := range reg.Flows() {
		if f.IsEligible(fctx) && f.IsPaymentEligible(fctx, payment) {
			return f
		}
	}
	return nil
}

func simProps(logg *logger.Logger) *types.CheckoutProps {
	return &types.CheckoutProps{
		ClientID: "sim-client",
		Env:      "sandbox",
		PageURL:  "https://merchant.example.com/checkout",
		CreateOrder: func(ctx context.Context) (string, error) {
			orderID := "SIM-ORDER-" + uuid.NewString()[:8]
			logg.Info(logg.WithOrderID(ctx, orderID), "order created")
			return orderID, nil
		},
		OnApprove: func(ctx context.Context, data types.ApprovalData, actions types.ApprovalActions) error {
			logg.Info(logg.WithOrderID(ctx, data.OrderID), "merchant onApprove fired")
			return nil
		},
		OnCancel: func(ctx context.Context) error {
			logg.Info(ctx, "merchant onCancel fired")
			return nil
		},
		OnError: func(ctx context.Context, err error) {
			logg.Error(ctx, "merchant onError fired", err)
		},
	}
}

func simServiceData() *types.ServiceData {
	return &types.ServiceData{
		Wallet: &types.Wallet{
			Instruments: map[enums.FundingSource][]types.Instrument{
				enums.FundingSourcePayPal: {
					{
						InstrumentID: "SIM-INSTRUMENT-1",
						Type:         "card",
						Label:        "Visa x-1111",
						OneClick:     true,
					},
				},
			},
		},
		BuyerAccessToken:       "A21.sim-buyer-token",
		FacilitatorAccessToken: "A21.sim-facilitator-token",
		Eligibility:            types.Eligibility{OneClick: true},
	}
}

// loopbackDialer hands out one end of an in-process socket pair in place of
// the real signaling connection.
type loopbackDialer struct{}

func (loopbackDialer) Dial(ctx context.Context, opts native.SessionOptions) (socket.Socket, error) {
	sock, _ := socket.Pair()
	return sock, nil
}

type simWindow struct {
	closed bool
}

func (w *simWindow) Close() error {
	w.closed = true
	return nil
}

func (w *simWindow) Closed() bool { return w.closed }

type simPopup struct{}

func (p *simPopup) Open(ctx context.Context, url string) (types.Window, error) {
	return &simWindow{}, nil
}

// simCheckout stands in for the black-box web checkout flow.
type simCheckout struct {
	logg *logger.Logger
}

func (c *simCheckout) Init(fctx *flow.Context, init flow.CheckoutInit) (flow.Instance, error) {
	return &simCheckoutInstance{logg: c.logg, init: init}, nil
}

type simCheckoutInstance struct {
	logg *logger.Logger
	init flow.CheckoutInit
}

func (i *simCheckoutInstance) Click(ctx context.Context) error { return nil }

func (i *simCheckoutInstance) Start(ctx context.Context) error {
	ctx = i.logg.WithOrderID(ctx, i.init.OrderID)
	i.logg.Info(ctx, "web checkout fallback started")
	return nil
}

func (i *simCheckoutInstance) Close(ctx context.Context) error {
	i.logg.Info(ctx, "web checkout fallback closed")
	return nil
}

type simOrderAPI struct{}

func (a *simOrderAPI) ExchangeAccessTokenForAuthCode(ctx context.Context, buyerAccessToken string) (string, error) {
	return "SIM-AUTH-CODE", nil
}

func (a *simOrderAPI) GetSupplementalOrderInfo(ctx context.Context, orderID string) (flow.SupplementalOrderInfo, error) {
	return flow.SupplementalOrderInfo{RequiresShippingAddress: false}, nil
}

func (a *simOrderAPI) OneClickApproveOrder(ctx context.Context, approval flow.OneClickApproval) (flow.Approval, error) {
	return flow.Approval{PayerID: "SIM-PAYER-1"}, nil
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
