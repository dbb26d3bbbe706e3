package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Upstream      UpstreamConfig
	GuestStore    GuestStoreConfig
	DB            DBConfig
	Redis         RedisConfig
	Session       SessionConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Checkout      CheckoutConfig
	Stripe        StripeConfig
	Tracing       TracingConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.GuestStore.validate(); err != nil {
		return nil, err
	}
	if cfg.GuestStore.UsesSQL() {
		// the guest store driver picks the SQL dialect
		cfg.DB.Driver = cfg.GuestStore.normalizedDriver()
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ZYQORA_APP_ENV" required:"true"`
	Port         string `envconfig:"ZYQORA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ZYQORA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ZYQORA_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"ZYQORA_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// UpstreamConfig points at the commerce REST backend every cart, wishlist and order call is proxied to.
type UpstreamConfig struct {
	BaseURL   string        `envconfig:"ZYQORA_UPSTREAM_BASE_URL" required:"true"`
	Timeout   time.Duration `envconfig:"ZYQORA_UPSTREAM_TIMEOUT" default:"15s"`
	UserAgent string        `envconfig:"ZYQORA_UPSTREAM_USER_AGENT" default:"zyqora-storefront/1.0"`
	// LookupCacheTTL caches reference lists (countries, brands, ...); zero disables.
	LookupCacheTTL time.Duration `envconfig:"ZYQORA_UPSTREAM_LOOKUP_CACHE_TTL" default:"10m"`
}

type GuestStoreConfig struct {
	Driver        string        `envconfig:"ZYQORA_GUEST_STORE_DRIVER" default:"redis"`
	PersistentTTL time.Duration `envconfig:"ZYQORA_GUEST_STORE_PERSISTENT_TTL" default:"720h"`
	SessionTTL    time.Duration `envconfig:"ZYQORA_GUEST_STORE_SESSION_TTL" default:"12h"`
}

// UsesSQL reports whether guest state is kept in the relational database.
func (g GuestStoreConfig) UsesSQL() bool {
	switch g.normalizedDriver() {
	case GuestStoreDriverPostgres, GuestStoreDriverSQLite:
		return true
	}
	return false
}

// UsesRedis reports whether guest state is kept in redis.
func (g GuestStoreConfig) UsesRedis() bool {
	return g.normalizedDriver() == GuestStoreDriverRedis
}

func (g GuestStoreConfig) normalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(g.Driver))
}

func (g GuestStoreConfig) validate() error {
	switch g.normalizedDriver() {
	case GuestStoreDriverRedis, GuestStoreDriverPostgres, GuestStoreDriverSQLite, GuestStoreDriverMemory:
	default:
		return fmt.Errorf("%s must be one of redis, postgres, sqlite, memory (got %q)", EnvGuestStoreDriver, g.Driver)
	}
	if g.PersistentTTL <= 0 || g.SessionTTL <= 0 {
		return fmt.Errorf("guest store TTLs must be positive")
	}
	return nil
}

type DBConfig struct {
	DSN    string `envconfig:"ZYQORA_DB_DSN"`
	Driver string `envconfig:"ZYQORA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"ZYQORA_DB_HOST"`
	Port     int    `envconfig:"ZYQORA_DB_PORT" default:"5432"`
	User     string `envconfig:"ZYQORA_DB_USER"`
	Password string `envconfig:"ZYQORA_DB_PASSWORD"`
	Name     string `envconfig:"ZYQORA_DB_NAME"`
	SSLMode  string `envconfig:"ZYQORA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ZYQORA_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"ZYQORA_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"ZYQORA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ZYQORA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ZYQORA_REDIS_URL"`
	Address      string        `envconfig:"ZYQORA_REDIS_ADDR"`
	Password     string        `envconfig:"ZYQORA_REDIS_PASSWORD"`
	DB           int           `envconfig:"ZYQORA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ZYQORA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ZYQORA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ZYQORA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ZYQORA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ZYQORA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Configured reports whether any redis endpoint was supplied.
func (r RedisConfig) Configured() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type SessionConfig struct {
	CookieName   string        `envconfig:"ZYQORA_SESSION_COOKIE_NAME" default:"zq_session"`
	CookieSecure bool          `envconfig:"ZYQORA_SESSION_COOKIE_SECURE" default:"true"`
	IdleTimeout  time.Duration `envconfig:"ZYQORA_SESSION_IDLE_TIMEOUT" default:"30m"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"ZYQORA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"ZYQORA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"ZYQORA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"ZYQORA_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"ZYQORA_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"ZYQORA_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate         bool `envconfig:"ZYQORA_AUTO_MIGRATE" default:"false"`
	CrossInstanceEvents bool `envconfig:"ZYQORA_CROSS_INSTANCE_EVENTS" default:"true"`
}

type CheckoutConfig struct {
	RedirectDelay  time.Duration `envconfig:"ZYQORA_CHECKOUT_REDIRECT_DELAY" default:"3s"`
	TaxRate        string        `envconfig:"ZYQORA_CHECKOUT_TAX_RATE" default:"0.10"`
	IdempotencyTTL time.Duration `envconfig:"ZYQORA_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

type StripeConfig struct {
	APIKey string `envconfig:"ZYQORA_STRIPE_API_KEY"`
	Env    string `envconfig:"ZYQORA_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type TracingConfig struct {
	JaegerEndpoint string  `envconfig:"ZYQORA_JAEGER_ENDPOINT"`
	SampleRatio    float64 `envconfig:"ZYQORA_TRACING_SAMPLE_RATIO" default:"1"`
}

// Enabled reports whether spans should be exported.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.JaegerEndpoint) != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ZYQORA_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, GuestStoreDriverSQLite) {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range splitDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
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
