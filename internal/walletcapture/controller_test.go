package walletcapture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/internal/flow"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/config"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/enums"
	pkgerrors "github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/errors"
	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrderAPI struct {
	supplemental     flow.SupplementalOrderInfo
	supplementalErrs []error
	lookupCalls      int

	approval    flow.Approval
	approvalErr error
	approveCall *flow.OneClickApproval

	authCode    string
	exchangeErr error
}

func (s *stubOrderAPI) ExchangeAccessTokenForAuthCode(ctx context.Context, token string) (string, error) {
	if s.exchangeErr != nil {
		return "", s.exchangeErr
	}
	return s.authCode, nil
}

func (s *stubOrderAPI) GetSupplementalOrderInfo(ctx context.Context, orderID string) (flow.SupplementalOrderInfo, error) {
	s.lookupCalls++
	if len(s.supplementalErrs) > 0 {
		err := s.supplementalErrs[0]
		s.supplementalErrs = s.supplementalErrs[1:]
		return flow.SupplementalOrderInfo{}, err
	}
	return s.supplemental, nil
}

func (s *stubOrderAPI) OneClickApproveOrder(ctx context.Context, approval flow.OneClickApproval) (flow.Approval, error) {
	s.approveCall = &approval
	if s.approvalErr != nil {
		return flow.Approval{}, s.approvalErr
	}
	return s.approval, nil
}

type stubInstance struct {
	startCalls int
	closeCalls int
	startErr   error
}

func (s *stubInstance) Click(ctx context.Context) error { return nil }
func (s *stubInstance) Start(ctx context.Context) error {
	s.startCalls++
	return s.startErr
}
func (s *stubInstance) Close(ctx context.Context) error {
	s.closeCalls++
	return nil
}

type stubCheckout struct {
	inits    []flow.CheckoutInit
	instance *stubInstance
	initErr  error
}

func (s *stubCheckout) Init(fctx *flow.Context, init flow.CheckoutInit) (flow.Instance, error) {
	s.inits = append(s.inits, init)
	if s.initErr != nil {
		return nil, s.initErr
	}
	if s.instance == nil {
		s.instance = &stubInstance{}
	}
	return s.instance, nil
}

type approveRecord struct {
	data    types.ApprovalData
	actions types.ApprovalActions
}

func testContext(t *testing.T, api *stubOrderAPI, checkout *stubCheckout, approves *[]approveRecord) *flow.Context {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Flow.OrderLookupBackoff = time.Millisecond

	props := &types.CheckoutProps{
		ClientID: "client-1",
		Env:      "sandbox",
		CreateOrder: func(ctx context.Context) (string, error) {
			return "ORDER-1", nil
		},
		OnApprove: func(ctx context.Context, data types.ApprovalData, actions types.ApprovalActions) error {
			*approves = append(*approves, approveRecord{data: data, actions: actions})
			return nil
		},
	}

	sd := &types.ServiceData{
		Wallet: &types.Wallet{
			Instruments: map[enums.FundingSource][]types.Instrument{
				enums.FundingSourcePayPal: {
					{InstrumentID: "I1", Type: "card", OneClick: true},
				},
			},
		},
		BuyerAccessToken: "A21.buyer-token",
		Eligibility:      types.Eligibility{OneClick: true},
	}

	return &flow.Context{
		Props:       props,
		Config:      cfg,
		ServiceData: sd,
		OrderAPI:    api,
		Checkout:    checkout,
	}
}

func paypalPayment() *types.Payment {
	return &types.Payment{FundingSource: enums.FundingSourcePayPal, InstrumentID: "I1"}
}

func TestNewInstancePreconditions(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(fctx *flow.Context, payment *types.Payment)
		message string
	}{
		{
			name:    "missing instrument id",
			mutate:  func(fctx *flow.Context, p *types.Payment) { p.InstrumentID = "" },
			message: "instrument id required",
		},
		{
			name:    "missing buyer access token",
			mutate:  func(fctx *flow.Context, p *types.Payment) { fctx.ServiceData.BuyerAccessToken = "" },
			message: "buyer access token required",
		},
		{
			name:    "no wallet entry for funding source",
			mutate:  func(fctx *flow.Context, p *types.Payment) { p.FundingSource = enums.FundingSourceVenmo },
			message: "no entry for funding source",
		},
		{
			name:    "instrument not in wallet",
			mutate:  func(fctx *flow.Context, p *types.Payment) { p.InstrumentID = "I404" },
			message: "not present in wallet",
		},
		{
			name: "instrument without type",
			mutate: func(fctx *flow.Context, p *types.Payment) {
				fctx.ServiceData.Wallet.Instruments[enums.FundingSourcePayPal] = []types.Instrument{
					{InstrumentID: "I1", Type: "", OneClick: true},
				}
			},
			message: "no type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var approves []approveRecord
			fctx := testContext(t, &stubOrderAPI{}, &stubCheckout{}, &approves)
			payment := paypalPayment()
			tt.mutate(fctx, payment)

			_, err := NewInstance(fctx, payment)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			assert.Contains(t, typed.Message(), tt.message)
		})
	}
}

func TestStartApprovesOneClick(t *testing.T) {
	api := &stubOrderAPI{approval: flow.Approval{PayerID: "PAYER-9"}}
	checkout := &stubCheckout{}
	var approves []approveRecord
	fctx := testContext(t, api, checkout, &approves)

	inst, err := NewInstance(fctx, paypalPayment())
	require.NoError(t, err)
	require.NoError(t, inst.Start(context.Background()))

	require.Len(t, approves, 1)
	assert.Equal(t, "PAYER-9", approves[0].data.PayerID)
	assert.Equal(t, "ORDER-1", approves[0].data.OrderID)
	assert.Empty(t, checkout.inits)

	require.NotNil(t, api.approveCall)
	assert.Equal(t, "card", api.approveCall.InstrumentType)
	assert.Equal(t, "I1", api.approveCall.InstrumentID)
	assert.Equal(t, "A21.buyer-token", api.approveCall.BuyerAccessToken)
	assert.Equal(t, stateTerminal, inst.state)
}

func TestStartShippingRequiredFallsBack(t *testing.T) {
	api := &stubOrderAPI{
		supplemental: flow.SupplementalOrderInfo{RequiresShippingAddress: true},
		authCode:     "AUTH-1",
	}
	checkout := &stubCheckout{}
	var approves []approveRecord
	fctx := testContext(t, api, checkout, &approves)

	inst, err := NewInstance(fctx, paypalPayment())
	require.NoError(t, err)
	require.NoError(t, inst.Start(context.Background()))

	// The approval call must never be issued when shipping is required.
	assert.Nil(t, api.approveCall)
	assert.Empty(t, approves)

	require.Len(t, checkout.inits, 1)
	init := checkout.inits[0]
	assert.False(t, init.IsClick)
	assert.Equal(t, "AUTH-1", init.AuthCode)
	assert.Equal(t, "ORDER-1", init.OrderID)
	assert.Equal(t, enums.BuyerIntentPayWithDifferentFundingShipping, init.BuyerIntent)
	assert.Equal(t, 1, checkout.instance.startCalls)
}

func TestStartApprovalFailureFallsBackSilently(t *testing.T) {
	api := &stubOrderAPI{approvalErr: errors.New("DECLINED")}
	checkout := &stubCheckout{}
	var approves []approveRecord
	fctx := testContext(t, api, checkout, &approves)

	inst, err := NewInstance(fctx, paypalPayment())
	require.NoError(t, err)
	require.NoError(t, inst.Start(context.Background()))

	assert.Empty(t, approves)
	require.Len(t, checkout.inits, 1)
	assert.Equal(t, 1, checkout.instance.startCalls)
}

func TestStartRetriesTransientLookupErrors(t *testing.T) {
	transient := pkgerrors.New(pkgerrors.CodeDependency, "lookup unavailable")
	api := &stubOrderAPI{
		supplementalErrs: []error{transient, transient},
		approval:         flow.Approval{PayerID: "PAYER-9"},
	}
	checkout := &stubCheckout{}
	var approves []approveRecord
	fctx := testContext(t, api, checkout, &approves)

	inst, err := NewInstance(fctx, paypalPayment())
	require.NoError(t, err)
	require.NoError(t, inst.Start(context.Background()))

	assert.Equal(t, 3, api.lookupCalls)
	require.Len(t, approves, 1)
	assert.Empty(t, checkout.inits)
}

func TestStartLookupFailureFallsBack(t *testing.T) {
	api := &stubOrderAPI{
		supplementalErrs: []error{errors.New("lookup exploded")},
	}
	checkout := &stubCheckout{}
	var approves []approveRecord
	fctx := testContext(t, api, checkout, &approves)

	inst, err := NewInstance(fctx, paypalPayment())
	require.NoError(t, err)
	require.NoError(t, inst.Start(context.Background()))

	assert.Nil(t, api.approveCall)
	require.Len(t, checkout.inits, 1)
}

func TestFallbackContinuesWithoutAuthCode(t *testing.T) {
	api := &stubOrderAPI{
		supplemental: flow.SupplementalOrderInfo{RequiresShippingAddress: true},
		exchangeErr:  errors.New("exchange down"),
	}
	checkout := &stubCheckout{}
	var approves []approveRecord
	fctx := testContext(t, api, checkout, &approves)

	inst, err := NewInstance(fctx, paypalPayment())
	require.NoError(t, err)
	require.NoError(t, inst.Start(context.Background()))

	require.Len(t, checkout.inits, 1)
	assert.Empty(t, checkout.inits[0].AuthCode)
}

func TestRestartReentersFallback(t *testing.T) {
	api := &stubOrderAPI{approval: flow.Approval{PayerID: "PAYER-9"}, authCode: "AUTH-1"}
	checkout := &stubCheckout{}
	var approves []approveRecord
	fctx := testContext(t, api, checkout, &approves)

	inst, err := NewInstance(fctx, paypalPayment())
	require.NoError(t, err)
	require.NoError(t, inst.Start(context.Background()))

	require.Len(t, approves, 1)
	require.NotNil(t, approves[0].actions.Restart)
	require.NoError(t, approves[0].actions.Restart(context.Background()))

	require.Len(t, checkout.inits, 1)
	assert.Equal(t, "ORDER-1", checkout.inits[0].OrderID)
	assert.Equal(t, 1, checkout.instance.startCalls)

	// A second restart is a superseded path; it must not re-init checkout.
	require.NoError(t, approves[0].actions.Restart(context.Background()))
	assert.Len(t, checkout.inits, 1)
}

func TestFallbackInitFailurePropagates(t *testing.T) {
	api := &stubOrderAPI{
		supplemental: flow.SupplementalOrderInfo{RequiresShippingAddress: true},
	}
	checkout := &stubCheckout{initErr: errors.New("checkout unavailable")}
	var approves []approveRecord
	fctx := testContext(t, api, checkout, &approves)

	inst, err := NewInstance(fctx, paypalPayment())
	require.NoError(t, err)
	require.Error(t, inst.Start(context.Background()))
}

func TestCloseBeforeStartIsNoop(t *testing.T) {
	var approves []approveRecord
	fctx := testContext(t, &stubOrderAPI{}, &stubCheckout{}, &approves)

	inst, err := NewInstance(fctx, paypalPayment())
	require.NoError(t, err)
	require.NoError(t, inst.Close(context.Background()))
	require.NoError(t, inst.Close(context.Background()))
}

func TestCloseAfterFallbackRoutesToDelegate(t *testing.T) {
	api := &stubOrderAPI{
		supplemental: flow.SupplementalOrderInfo{RequiresShippingAddress: true},
	}
	checkout := &stubCheckout{}
	var approves []approveRecord
	fctx := testContext(t, api, checkout, &approves)

	inst, err := NewInstance(fctx, paypalPayment())
	require.NoError(t, err)
	require.NoError(t, inst.Start(context.Background()))
	require.NoError(t, inst.Close(context.Background()))

	assert.Equal(t, 1, checkout.instance.closeCalls)
}

func TestFlowDescriptor(t *testing.T) {
	f := New()
	assert.Equal(t, enums.FlowWalletCapture, f.Name())
	assert.True(t, f.Spinner())
	assert.False(t, f.Inline())
	assert.NoError(t, f.Setup(context.Background(), nil))
}
