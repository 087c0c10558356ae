package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable consumed by the buttons
// runtime.
const EnvPrefix = "SPB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App    AppConfig
	Flow   FlowConfig
	Native NativeConfig
	Socket SocketConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SPB_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"SPB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SPB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// FlowConfig carries the timing knobs of the attempt lifecycle. The two
// delays tolerate the race between popup-close detection and script
// execution; they are heuristics, kept configurable on purpose.
type FlowConfig struct {
	CloseGraceDelay      time.Duration `envconfig:"SPB_FLOW_CLOSE_GRACE_DELAY" default:"500ms"`
	AppSwitchSettleDelay time.Duration `envconfig:"SPB_FLOW_APP_SWITCH_SETTLE_DELAY" default:"500ms"`
	OrderLookupAttempts  uint64        `envconfig:"SPB_FLOW_ORDER_LOOKUP_ATTEMPTS" default:"3"`
	OrderLookupBackoff   time.Duration `envconfig:"SPB_FLOW_ORDER_LOOKUP_BACKOFF" default:"250ms"`
}

type NativeConfig struct {
	EnableNativeCheckout bool   `envconfig:"SPB_ENABLE_NATIVE_CHECKOUT" default:"false"`
	PopupBaseURL         string `envconfig:"SPB_NATIVE_POPUP_BASE_URL" default:"https://www.paypal.com/smart/checkout/native/popup"`
	FirebaseAPIKey       string `envconfig:"SPB_NATIVE_FIREBASE_API_KEY"`
	FirebaseDatabaseURL  string `envconfig:"SPB_NATIVE_FIREBASE_DATABASE_URL"`
	FirebaseProjectID    string `envconfig:"SPB_NATIVE_FIREBASE_PROJECT_ID"`
}

// FirebaseConfigured reports whether the signaling configuration required by
// the native session socket is present.
func (n NativeConfig) FirebaseConfigured() bool {
	return strings.TrimSpace(n.FirebaseAPIKey) != "" &&
		strings.TrimSpace(n.FirebaseDatabaseURL) != "" &&
		strings.TrimSpace(n.FirebaseProjectID) != ""
}

type SocketConfig struct {
	DialTimeout       time.Duration `envconfig:"SPB_SOCKET_DIAL_TIMEOUT" default:"5s"`
	SendTimeout       time.Duration `envconfig:"SPB_SOCKET_SEND_TIMEOUT" default:"10s"`
	ReconnectAttempts uint64        `envconfig:"SPB_SOCKET_RECONNECT_ATTEMPTS" default:"5"`
	ReconnectBackoff  time.Duration `envconfig:"SPB_SOCKET_RECONNECT_BACKOFF" default:"200ms"`
}
