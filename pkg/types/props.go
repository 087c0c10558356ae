package types

import (
	"context"
	"reflect"
	"strings"

	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/enums"
	pkgerrors "github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// ApprovalData is handed to the merchant when an order is approved.
type ApprovalData struct {
	OrderID string `json:"orderID"`
	PayerID string `json:"payerID"`
}

// ApprovalActions lets the merchant restart the attempt through the web
// checkout fallback, e.g. after a server-side capture failure.
type ApprovalActions struct {
	Restart func(ctx context.Context) error
}

// ClickData describes the buyer gesture that started an attempt.
type ClickData struct {
	FundingSource enums.FundingSource `json:"fundingSource"`
}

// ShippingChangeData carries the buyer's updated shipping selection.
type ShippingChangeData struct {
	OrderID         string `json:"orderID"`
	ShippingCountry string `json:"shippingCountry,omitempty"`
	ShippingZip     string `json:"shippingZip,omitempty"`
}

type (
	CreateOrderFn      func(ctx context.Context) (string, error)
	OnApproveFn        func(ctx context.Context, data ApprovalData, actions ApprovalActions) error
	OnCancelFn         func(ctx context.Context) error
	OnErrorFn          func(ctx context.Context, err error)
	OnClickFn          func(ctx context.Context, data ClickData) (bool, error)
	OnShippingChangeFn func(ctx context.Context, data ShippingChangeData) error
)

// CheckoutProps are the merchant-provided inputs for a button session.
type CheckoutProps struct {
	ClientID   string `validate:"required"`
	MerchantID string
	Env        string `validate:"required,oneof=dev sandbox prod"`
	PageURL    string `validate:"omitempty,url"`
	Commit     bool

	CreateOrder      CreateOrderFn `validate:"required"`
	OnApprove        OnApproveFn   `validate:"required"`
	OnCancel         OnCancelFn
	OnError          OnErrorFn
	OnClick          OnClickFn
	OnShippingChange OnShippingChangeFn
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Validate checks the props at construction time so an attempt can never be
// created against a half-configured session.
func (p *CheckoutProps) Validate() error {
	if p == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout props required")
	}
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = fieldErr.Tag()
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid checkout props").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid checkout props")
}
