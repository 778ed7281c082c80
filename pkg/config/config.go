package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable consumed by the service.
const EnvPrefix = "FRESHKART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Razorpay      RazorpayConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	FeatureFlags  FeatureFlagsConfig
	OrderIdemTTLs OrderIdempotencyConfig
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
	Env          string `envconfig:"FRESHKART_APP_ENV" required:"true"`
	Port         string `envconfig:"FRESHKART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FRESHKART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FRESHKART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FRESHKART_DB_DSN"`
	Driver string `envconfig:"FRESHKART_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"FRESHKART_DB_HOST"`
	Port     int    `envconfig:"FRESHKART_DB_PORT" default:"5432"`
	User     string `envconfig:"FRESHKART_DB_USER"`
	Password string `envconfig:"FRESHKART_DB_PASSWORD"`
	Name     string `envconfig:"FRESHKART_DB_NAME"`
	SSLMode  string `envconfig:"FRESHKART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FRESHKART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FRESHKART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FRESHKART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FRESHKART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FRESHKART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FRESHKART_REDIS_ADDR"`
	Password     string        `envconfig:"FRESHKART_REDIS_PASSWORD"`
	DB           int           `envconfig:"FRESHKART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FRESHKART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FRESHKART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FRESHKART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FRESHKART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FRESHKART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FRESHKART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FRESHKART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FRESHKART_JWT_EXPIRATION_MINUTES" required:"true"`
}

// RazorpayConfig carries the gateway credentials injected into the adapter at
// startup. Business logic never reads these from the environment directly.
type RazorpayConfig struct {
	KeyID     string        `envconfig:"FRESHKART_RAZORPAY_KEY_ID" required:"true"`
	KeySecret string        `envconfig:"FRESHKART_RAZORPAY_KEY_SECRET" required:"true"`
	Timeout   time.Duration `envconfig:"FRESHKART_RAZORPAY_TIMEOUT" default:"10s"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"FRESHKART_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrderEventsTopic string `envconfig:"FRESHKART_PUBSUB_ORDER_EVENTS_TOPIC" default:"fk-order-events"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FRESHKART_AUTO_MIGRATE" default:"false"`
}

type OrderIdempotencyConfig struct {
	CheckoutTTL time.Duration `envconfig:"FRESHKART_IDEMPOTENCY_CHECKOUT_TTL" default:"168h"`
	DefaultTTL  time.Duration `envconfig:"FRESHKART_IDEMPOTENCY_DEFAULT_TTL" default:"24h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		"FRESHKART_DB_HOST": db.Host,
		"FRESHKART_DB_USER": db.User,
		"FRESHKART_DB_NAME": db.Name,
	}
	for _, key := range []string{"FRESHKART_DB_HOST", "FRESHKART_DB_USER", "FRESHKART_DB_NAME"} {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either FRESHKART_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
