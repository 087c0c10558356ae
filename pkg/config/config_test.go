package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.True(t, cfg.App.IsDev())
	assert.Equal(t, 500*time.Millisecond, cfg.Flow.CloseGraceDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.Flow.AppSwitchSettleDelay)
	assert.Equal(t, uint64(3), cfg.Flow.OrderLookupAttempts)
	assert.False(t, cfg.Native.EnableNativeCheckout)
	assert.False(t, cfg.Native.FirebaseConfigured())
	assert.Equal(t, 5*time.Second, cfg.Socket.DialTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SPB_FLOW_CLOSE_GRACE_DELAY", "750ms")
	t.Setenv("SPB_ENABLE_NATIVE_CHECKOUT", "true")
	t.Setenv("SPB_NATIVE_FIREBASE_API_KEY", "key")
	t.Setenv("SPB_NATIVE_FIREBASE_DATABASE_URL", "wss://sig.example.com")
	t.Setenv("SPB_NATIVE_FIREBASE_PROJECT_ID", "spb-native")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.Flow.CloseGraceDelay)
	assert.True(t, cfg.Native.EnableNativeCheckout)
	assert.True(t, cfg.Native.FirebaseConfigured())
}

func TestFirebaseConfiguredRequiresAllFields(t *testing.T) {
	t.Setenv("SPB_NATIVE_FIREBASE_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Native.FirebaseConfigured())
}
