package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is empty because every field carries a fully qualified tag.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	Auth         AuthConfig
	Checkout     CheckoutConfig
	Outbox       OutboxConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CAFELINE_APP_ENV" required:"true"`
	Port         string `envconfig:"CAFELINE_APP_PORT" default:"2000"`
	LogLevel     string `envconfig:"CAFELINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CAFELINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CAFELINE_DB_DSN"`
	Driver string `envconfig:"CAFELINE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"CAFELINE_DB_HOST"`
	Port     int    `envconfig:"CAFELINE_DB_PORT" default:"5432"`
	User     string `envconfig:"CAFELINE_DB_USER"`
	Password string `envconfig:"CAFELINE_DB_PASSWORD"`
	Name     string `envconfig:"CAFELINE_DB_NAME"`
	SSLMode  string `envconfig:"CAFELINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CAFELINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAFELINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAFELINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAFELINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN builds a postgres DSN from the discrete fields when one was not
// provided directly.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either CAFELINE_DB_DSN or host/user/name settings are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"CAFELINE_REDIS_URL"`
	Address      string        `envconfig:"CAFELINE_REDIS_ADDR"`
	Password     string        `envconfig:"CAFELINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAFELINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAFELINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAFELINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAFELINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAFELINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAFELINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig controls the anonymous browser session used for carts and the
// per-session "my orders" possession list.
type SessionConfig struct {
	CookieName string        `envconfig:"CAFELINE_SESSION_COOKIE" default:"cafeline_session"`
	TTL        time.Duration `envconfig:"CAFELINE_SESSION_TTL" default:"72h"`
	Secure     bool          `envconfig:"CAFELINE_SESSION_SECURE" default:"false"`
}

// AuthConfig holds the verification settings for optional bearer tokens issued
// by the external identity service.
type AuthConfig struct {
	JWTSecret string `envconfig:"CAFELINE_JWT_SECRET"`
	JWTIssuer string `envconfig:"CAFELINE_JWT_ISSUER" default:"cafeline"`
}

// CheckoutConfig tunes the checkout orchestration policies.
type CheckoutConfig struct {
	// MaxIDAttempts bounds the allocator's read-then-insert retry loop.
	MaxIDAttempts int `envconfig:"CAFELINE_CHECKOUT_MAX_ID_ATTEMPTS" default:"6"`
	// BackoffMin/BackoffMax bound the jittered sleep between allocator attempts.
	BackoffMin time.Duration `envconfig:"CAFELINE_CHECKOUT_BACKOFF_MIN" default:"40ms"`
	BackoffMax time.Duration `envconfig:"CAFELINE_CHECKOUT_BACKOFF_MAX" default:"100ms"`
	// AtomicLines switches line persistence from best-effort continuation to a
	// single all-or-nothing transaction.
	AtomicLines bool `envconfig:"CAFELINE_CHECKOUT_ATOMIC_LINES" default:"false"`
	// RevalidatePrices re-resolves each cart line against the live catalog at
	// commit and rejects the checkout when a frozen price no longer matches.
	RevalidatePrices bool `envconfig:"CAFELINE_CHECKOUT_REVALIDATE_PRICES" default:"false"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CAFELINE_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CAFELINE_OUTBOX_POLL_INTERVAL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CAFELINE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"CAFELINE_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"CAFELINE_PUBSUB_ORDERS_TOPIC" default:"cafeline-orders"`
	OrdersSubscription string `envconfig:"CAFELINE_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CAFELINE_FEATURE_AUTO_MIGRATE" default:"false"`
}
