package socket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/enums"
	pkgerrors "github.com/Eduardo-Anosa-Evardonie-jr/paypal-smart-payment-buttons/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairSendReachesPeerHandler(t *testing.T) {
	t.Parallel()

	buttons, app := Pair()

	received := make(chan map[string]string, 1)
	app.On(enums.MessageSetProps, func(ctx context.Context, payload []byte) (any, error) {
		var props map[string]string
		if err := json.Unmarshal(payload, &props); err != nil {
			return nil, err
		}
		received <- props
		return nil, nil
	})

	err := buttons.Send(context.Background(), enums.MessageSetProps, map[string]string{"orderID": "ORDER-1"})
	require.NoError(t, err)
	assert.Equal(t, "ORDER-1", (<-received)["orderID"])
}

func TestPairRequestReturnsReply(t *testing.T) {
	t.Parallel()

	buttons, app := Pair()
	buttons.On(enums.MessageGetProps, func(ctx context.Context, payload []byte) (any, error) {
		return map[string]string{"pageUrl": "https://merchant.example.com"}, nil
	})

	raw, err := app.Request(context.Background(), enums.MessageGetProps, nil)
	require.NoError(t, err)

	var reply map[string]string
	require.NoError(t, json.Unmarshal(raw, &reply))
	assert.Equal(t, "https://merchant.example.com", reply["pageUrl"])
}

func TestPairSendHandlerErrorSurfacesAsTransport(t *testing.T) {
	t.Parallel()

	buttons, app := Pair()
	app.On(enums.MessageOnApprove, func(ctx context.Context, payload []byte) (any, error) {
		return nil, errors.New("handler blew up")
	})

	err := buttons.Send(context.Background(), enums.MessageOnApprove, nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeTransport, pkgerrors.As(err).Code())
}

func TestPairSendAfterCloseFails(t *testing.T) {
	t.Parallel()

	buttons, app := Pair()
	require.NoError(t, app.Close(context.Background()))

	err := buttons.Send(context.Background(), enums.MessageOnCancel, nil)
	require.Error(t, err)

	require.NoError(t, buttons.Close(context.Background()))
	err = buttons.Send(context.Background(), enums.MessageOnCancel, nil)
	require.Error(t, err)
}

func TestPairUnhandledKindIsDropped(t *testing.T) {
	t.Parallel()

	buttons, _ := Pair()
	assert.NoError(t, buttons.Send(context.Background(), enums.MessageOnClose, nil))
}

func TestLoopbackFailWithFiresErrorHandler(t *testing.T) {
	t.Parallel()

	buttons, _ := Pair()
	fired := make(chan error, 1)
	buttons.OnError(func(err error) { fired <- err })

	buttons.FailWith(errors.New("connection lost"))
	assert.EqualError(t, <-fired, "connection lost")

	require.Error(t, buttons.Reconnect(context.Background()))
}

func TestDialWSRequiresURL(t *testing.T) {
	t.Parallel()

	_, err := DialWS(context.Background(), WSOptions{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
