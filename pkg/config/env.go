package config

const EnvPrefix = "ZYQORA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	GuestStoreDriverRedis    = "redis"
	GuestStoreDriverPostgres = "postgres"
	GuestStoreDriverSQLite   = "sqlite"
	GuestStoreDriverMemory   = "memory"
)

const (
	EnvAppEnv            = "ZYQORA_APP_ENV"
	EnvPort              = "ZYQORA_APP_PORT"
	EnvUpstreamBaseURL   = "ZYQORA_UPSTREAM_BASE_URL"
	EnvUpstreamTimeout   = "ZYQORA_UPSTREAM_TIMEOUT"
	EnvGuestStoreDriver  = "ZYQORA_GUEST_STORE_DRIVER"
	EnvGuestStoreTTL     = "ZYQORA_GUEST_STORE_PERSISTENT_TTL"
	EnvRedisURL          = "ZYQORA_REDIS_URL"
	EnvDBDSN             = "ZYQORA_DB_DSN"
	EnvDBDriver          = "ZYQORA_DB_DRIVER"
	EnvDBHost            = "ZYQORA_DB_HOST"
	EnvDBUser            = "ZYQORA_DB_USER"
	EnvDBName            = "ZYQORA_DB_NAME"
	EnvCheckoutTaxRate   = "ZYQORA_CHECKOUT_TAX_RATE"
	EnvCORSAllowedOrigin = "ZYQORA_CORS_ALLOWED_ORIGINS"
)

var splitDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
