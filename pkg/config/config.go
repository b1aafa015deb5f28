package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Orders OrdersConfig
	Cart   CartConfig
	GCP    GCPConfig
	GCS    GCSConfig
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
	Env          string `envconfig:"CAMPUSBITE_APP_ENV" required:"true"`
	Port         string `envconfig:"CAMPUSBITE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CAMPUSBITE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CAMPUSBITE_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"CAMPUSBITE_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"CAMPUSBITE_DB_DSN"`

	Host     string `envconfig:"CAMPUSBITE_DB_HOST"`
	Port     int    `envconfig:"CAMPUSBITE_DB_PORT" default:"5432"`
	User     string `envconfig:"CAMPUSBITE_DB_USER"`
	Password string `envconfig:"CAMPUSBITE_DB_PASSWORD"`
	Name     string `envconfig:"CAMPUSBITE_DB_NAME"`
	SSLMode  string `envconfig:"CAMPUSBITE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CAMPUSBITE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAMPUSBITE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAMPUSBITE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAMPUSBITE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CAMPUSBITE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CAMPUSBITE_REDIS_ADDR"`
	Password     string        `envconfig:"CAMPUSBITE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAMPUSBITE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAMPUSBITE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAMPUSBITE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAMPUSBITE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAMPUSBITE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAMPUSBITE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CAMPUSBITE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CAMPUSBITE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CAMPUSBITE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type OrdersConfig struct {
	// CallTimeout bounds every individual data-store call made by the order
	// services; a deadline hit surfaces as a retryable timeout.
	CallTimeout time.Duration `envconfig:"CAMPUSBITE_ORDERS_CALL_TIMEOUT" default:"10s"`
}

type CartConfig struct {
	// SnapshotTTL bounds how long an abandoned cart snapshot survives in redis.
	SnapshotTTL  time.Duration `envconfig:"CAMPUSBITE_CART_SNAPSHOT_TTL" default:"168h"`
	WriteTimeout time.Duration `envconfig:"CAMPUSBITE_CART_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CAMPUSBITE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CAMPUSBITE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CAMPUSBITE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName  string `envconfig:"CAMPUSBITE_GCS_BUCKET_NAME"`
	MaxUploadMB int    `envconfig:"CAMPUSBITE_MAX_UPLOAD_MB" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	discrete := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if discrete[env] == "" {
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
