package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the gateway.
type Config struct {
	App          AppConfig
	Upstream     UpstreamConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Tenant       TenantConfig
	Payments     PaymentsConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// UpstreamConfig locates the backend REST API that owns all business data.
type UpstreamConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// PostgresConfig holds DB connection values. The pool is optional; without a
// DSN the local payment/bulk stores fall back to in-memory implementations.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines session and guard parameters. JWTSecret is the secret
// shared with the upstream token issuer; tokens are verified locally before a
// request is forwarded.
type AuthConfig struct {
	JWTSecret         string
	SessionCookieName string
	SessionTTLMinutes int
	LoginPath         string
	RenewalPath       string
	SuperAdminKeyHash string
}

// TenantConfig controls tenant resolution caching.
type TenantConfig struct {
	CacheTTLSeconds int
}

// PaystackConfig holds Paystack API credentials.
type PaystackConfig struct {
	BaseURL   string
	SecretKey string
}

// StripeConfig holds Stripe API credentials.
type StripeConfig struct {
	BaseURL   string
	SecretKey string
}

// RemitaConfig holds Remita merchant credentials.
type RemitaConfig struct {
	BaseURL       string
	MerchantID    string
	ServiceTypeID string
	APIKey        string
}

// PaymentsConfig groups provider credentials and callback targets.
type PaymentsConfig struct {
	Paystack           PaystackConfig
	Stripe             StripeConfig
	Remita             RemitaConfig
	CallbackSuccessURL string
	CallbackFailureURL string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "coop-gateway"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Upstream: UpstreamConfig{
			BaseURL:        strings.TrimRight(os.Getenv("UPSTREAM_BASE_URL"), "/"),
			TimeoutSeconds: getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("AUTH_JWT_SECRET", "dev-secret"),
			SessionCookieName: getEnv("AUTH_SESSION_COOKIE", "coop_session"),
			SessionTTLMinutes: getEnvAsInt("AUTH_SESSION_TTL_MINUTES", 720),
			LoginPath:         getEnv("AUTH_LOGIN_PATH", "/login"),
			RenewalPath:       getEnv("SUBSCRIPTION_RENEWAL_PATH", "/billing/renew"),
			SuperAdminKeyHash: os.Getenv("AUTH_SUPER_ADMIN_KEY_HASH"),
		},
		Tenant: TenantConfig{
			CacheTTLSeconds: getEnvAsInt("TENANT_CACHE_TTL_SECONDS", 300),
		},
		Payments: PaymentsConfig{
			Paystack: PaystackConfig{
				BaseURL:   getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
				SecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
			},
			Stripe: StripeConfig{
				BaseURL:   getEnv("STRIPE_BASE_URL", "https://api.stripe.com"),
				SecretKey: os.Getenv("STRIPE_SECRET_KEY"),
			},
			Remita: RemitaConfig{
				BaseURL:       getEnv("REMITA_BASE_URL", "https://remitademo.net/remita/exapp/api/v1/send/api"),
				MerchantID:    os.Getenv("REMITA_MERCHANT_ID"),
				ServiceTypeID: os.Getenv("REMITA_SERVICE_TYPE_ID"),
				APIKey:        os.Getenv("REMITA_API_KEY"),
			},
			CallbackSuccessURL: getEnv("PAYMENT_SUCCESS_URL", "/payments/success"),
			CallbackFailureURL: getEnv("PAYMENT_FAILURE_URL", "/payments/failure"),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the outbound call timeout.
func (u UpstreamConfig) Timeout() time.Duration {
	if u.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(u.TimeoutSeconds) * time.Second
}

// SessionTTL returns the session lifetime.
func (a AuthConfig) SessionTTL() time.Duration {
	if a.SessionTTLMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(a.SessionTTLMinutes) * time.Minute
}

// CacheTTL returns the tenant cache lifetime.
func (t TenantConfig) CacheTTL() time.Duration {
	if t.CacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(t.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
