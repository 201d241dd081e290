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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Otp           OtpConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	PubSub        PubSubConfig
	Square        SquareConfig
	Sendgrid      SendgridConfig
	Notify        NotifyConfig
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
	Env          string `envconfig:"ATELIERA_APP_ENV" required:"true"`
	Port         string `envconfig:"ATELIERA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ATELIERA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ATELIERA_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"ATELIERA_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma-separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	parts := strings.Split(a.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

type DBConfig struct {
	DSN    string `envconfig:"ATELIERA_DB_DSN"`
	Driver string `envconfig:"ATELIERA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ATELIERA_DB_HOST"`
	LegacyPort     int    `envconfig:"ATELIERA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ATELIERA_DB_USER"`
	LegacyPassword string `envconfig:"ATELIERA_DB_PASSWORD"`
	LegacyName     string `envconfig:"ATELIERA_DB_NAME"`
	LegacySSLMode  string `envconfig:"ATELIERA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ATELIERA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ATELIERA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ATELIERA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ATELIERA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ATELIERA_REDIS_URL" required:"true"`
	Password     string        `envconfig:"ATELIERA_REDIS_PASSWORD"`
	DB           int           `envconfig:"ATELIERA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ATELIERA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ATELIERA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ATELIERA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ATELIERA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ATELIERA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ATELIERA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ATELIERA_JWT_ISSUER" default:"ateliera"`
	ExpirationMinutes int    `envconfig:"ATELIERA_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// AccessTokenTTL returns the access token validity window. The storefront
// keeps admins signed in for a week by default.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ATELIERA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ATELIERA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ATELIERA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ATELIERA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ATELIERA_ARGON_KEY_LEN" default:"32"`
}

type OtpConfig struct {
	TTL    time.Duration `envconfig:"ATELIERA_OTP_TTL" default:"10m"`
	Digits int           `envconfig:"ATELIERA_OTP_DIGITS" default:"6"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ATELIERA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ATELIERA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ATELIERA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ATELIERA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ATELIERA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ATELIERA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ATELIERA_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"ATELIERA_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"ATELIERA_GCP_CREDENTIALS_JSON"`
}

type GCSConfig struct {
	BucketName string `envconfig:"ATELIERA_GCS_BUCKET_NAME"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"ATELIERA_MAX_UPLOAD_MB" default:"25"`
	MaxCovers   int `envconfig:"ATELIERA_MEDIA_MAX_COVERS" default:"10"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"ATELIERA_PUBSUB_ORDERS_TOPIC" default:"atl-order-events"`
	OrdersSubscription string `envconfig:"ATELIERA_PUBSUB_ORDERS_SUBSCRIPTION" default:"atl-order-events-notify"`
}

type SquareConfig struct {
	AccessToken string `envconfig:"ATELIERA_SQUARE_ACCESS_TOKEN"`
	BaseURL     string `envconfig:"ATELIERA_SQUARE_BASE_URL" default:"https://connect.squareupsandbox.com"`
	LocationID  string `envconfig:"ATELIERA_SQUARE_LOCATION_ID"`
	Currency    string `envconfig:"ATELIERA_SQUARE_CURRENCY" default:"CAD"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"ATELIERA_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"ATELIERA_SENDGRID_FROM_EMAIL"`
	FromName    string `envconfig:"ATELIERA_SENDGRID_FROM_NAME" default:"Ateliera"`
}

type NotifyConfig struct {
	AdminEmail string `envconfig:"ATELIERA_NOTIFY_ADMIN_EMAIL"`
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
