package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "NOVAERA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "NOVAERA_DB_DSN"
	EnvDBHost = "NOVAERA_DB_HOST"
	EnvDBUser = "NOVAERA_DB_USER"
	EnvDBName = "NOVAERA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Pix           PixConfig
	Checkout      CheckoutConfig
	Delivery      DeliveryConfig
	Cron          CronConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
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
	Env          string `envconfig:"NOVAERA_APP_ENV" required:"true"`
	Port         string `envconfig:"NOVAERA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NOVAERA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NOVAERA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"NOVAERA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"NOVAERA_DB_DSN"`
	Driver string `envconfig:"NOVAERA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"NOVAERA_DB_HOST"`
	LegacyPort     int    `envconfig:"NOVAERA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"NOVAERA_DB_USER"`
	LegacyPassword string `envconfig:"NOVAERA_DB_PASSWORD"`
	LegacyName     string `envconfig:"NOVAERA_DB_NAME"`
	LegacySSLMode  string `envconfig:"NOVAERA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NOVAERA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NOVAERA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NOVAERA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NOVAERA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NOVAERA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"NOVAERA_REDIS_ADDR"`
	Password     string        `envconfig:"NOVAERA_REDIS_PASSWORD"`
	DB           int           `envconfig:"NOVAERA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NOVAERA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NOVAERA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NOVAERA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NOVAERA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NOVAERA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"NOVAERA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"NOVAERA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"NOVAERA_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"NOVAERA_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the server-side session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"NOVAERA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"NOVAERA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"NOVAERA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"NOVAERA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"NOVAERA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"NOVAERA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"NOVAERA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"NOVAERA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"NOVAERA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"NOVAERA_AUTO_MIGRATE" default:"false"`
}

type PixConfig struct {
	APIKey         string        `envconfig:"NOVAERA_PIX_API_KEY"`
	WebhookSecret  string        `envconfig:"NOVAERA_PIX_WEBHOOK_SECRET"`
	Env            string        `envconfig:"NOVAERA_PIX_ENV" default:"sandbox"`
	BaseURL        string        `envconfig:"NOVAERA_PIX_BASE_URL"`
	RequestTimeout time.Duration `envconfig:"NOVAERA_PIX_REQUEST_TIMEOUT" default:"15s"`
	ExpirationSecs int           `envconfig:"NOVAERA_PIX_EXPIRATION_SECONDS" default:"3600"`
}

// Environment returns the normalized PIX gateway environment (sandbox/production).
func (p PixConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(p.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type CheckoutConfig struct {
	PendingOrderTTL time.Duration `envconfig:"NOVAERA_CHECKOUT_PENDING_ORDER_TTL" default:"24h"`
}

type DeliveryConfig struct {
	CacheTTL time.Duration `envconfig:"NOVAERA_DELIVERY_CACHE_TTL" default:"1h"`
}

type CronConfig struct {
	Interval         time.Duration `envconfig:"NOVAERA_CRON_INTERVAL" default:"1m"`
	LockTTL          time.Duration `envconfig:"NOVAERA_CRON_LOCK_TTL" default:"5m"`
	ReconcileMinAge  time.Duration `envconfig:"NOVAERA_CRON_RECONCILE_MIN_AGE" default:"30s"`
	ReconcileBatch   int           `envconfig:"NOVAERA_CRON_RECONCILE_BATCH" default:"50"`
	ReconcileTimeout time.Duration `envconfig:"NOVAERA_CRON_RECONCILE_TIMEOUT" default:"45s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"NOVAERA_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"NOVAERA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"NOVAERA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"NOVAERA_PUBSUB_ORDERS_TOPIC" default:"ne-order-events"`
	OrdersSubscription string `envconfig:"NOVAERA_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"NOVAERA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"NOVAERA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"NOVAERA_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
