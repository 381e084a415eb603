package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every storefront environment variable.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Redis    RedisConfig
	Session  SessionConfig
	Token    TokenConfig
	Backend  BackendConfig
	Checkout CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Backend.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ATHUKORALA_APP_ENV" required:"true"`
	Port         string `envconfig:"ATHUKORALA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ATHUKORALA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ATHUKORALA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"ATHUKORALA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ATHUKORALA_REDIS_ADDR"`
	Password     string        `envconfig:"ATHUKORALA_REDIS_PASSWORD"`
	DB           int           `envconfig:"ATHUKORALA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ATHUKORALA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ATHUKORALA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ATHUKORALA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ATHUKORALA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ATHUKORALA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig controls the shopper session cookie and the TTLs of the
// session-scoped blobs kept in Redis.
type SessionConfig struct {
	CookieName string        `envconfig:"ATHUKORALA_SESSION_COOKIE" default:"athukorala_session"`
	TTL        time.Duration `envconfig:"ATHUKORALA_SESSION_TTL" default:"24h"`
	CartTTL    time.Duration `envconfig:"ATHUKORALA_CART_TTL" default:"168h"`
	DraftTTL   time.Duration `envconfig:"ATHUKORALA_PAYMENT_DRAFT_TTL" default:"2h"`
	OrderTTL   time.Duration `envconfig:"ATHUKORALA_LAST_ORDER_TTL" default:"24h"`
	Secure     bool          `envconfig:"ATHUKORALA_SESSION_COOKIE_SECURE" default:"false"`
}

// TokenConfig verifies the customer token minted by the external auth
// service. The storefront only reads claims, it never issues tokens.
type TokenConfig struct {
	Secret string `envconfig:"ATHUKORALA_TOKEN_SECRET"`
	Issuer string `envconfig:"ATHUKORALA_TOKEN_ISSUER"`
}

type BackendConfig struct {
	CatalogBaseURL       string        `envconfig:"ATHUKORALA_CATALOG_BASE_URL"`
	OrdersBaseURL        string        `envconfig:"ATHUKORALA_ORDERS_BASE_URL"`
	PaymentsBaseURL      string        `envconfig:"ATHUKORALA_PAYMENTS_BASE_URL"`
	NotificationsBaseURL string        `envconfig:"ATHUKORALA_NOTIFICATIONS_BASE_URL"`
	APIBaseURL           string        `envconfig:"ATHUKORALA_API_BASE_URL"`
	Timeout              time.Duration `envconfig:"ATHUKORALA_BACKEND_TIMEOUT" default:"10s"`
}

func (b *BackendConfig) validate() error {
	if b.APIBaseURL == "" && (b.CatalogBaseURL == "" || b.OrdersBaseURL == "" || b.PaymentsBaseURL == "") {
		return fmt.Errorf("either %s or per-service backend base urls are required",
			"ATHUKORALA_API_BASE_URL")
	}
	return nil
}

// CatalogURL resolves the catalog service origin, falling back to the
// shared API base when no dedicated origin is configured.
func (b BackendConfig) CatalogURL() string {
	return firstNonEmpty(b.CatalogBaseURL, b.APIBaseURL)
}

func (b BackendConfig) OrdersURL() string {
	return firstNonEmpty(b.OrdersBaseURL, b.APIBaseURL)
}

func (b BackendConfig) PaymentsURL() string {
	return firstNonEmpty(b.PaymentsBaseURL, b.APIBaseURL)
}

func (b BackendConfig) NotificationsURL() string {
	return firstNonEmpty(b.NotificationsBaseURL, b.APIBaseURL)
}

type CheckoutConfig struct {
	Currency              string  `envconfig:"ATHUKORALA_CURRENCY" default:"LKR"`
	TaxRate               float64 `envconfig:"ATHUKORALA_TAX_RATE" default:"0.08"`
	ShippingFlatRate      string  `envconfig:"ATHUKORALA_SHIPPING_FLAT_RATE" default:"450"`
	FreeShippingThreshold string  `envconfig:"ATHUKORALA_FREE_SHIPPING_THRESHOLD" default:"25000"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
