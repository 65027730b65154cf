package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"SchemePortal"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"schemeportal"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

		MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
		MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
		ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"*"`
		MaxUpload   int64         `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET"`
		Issuer    string `envconfig:"JWT_ISSUER" default:"schemeportal"`
	}

	Tx struct {
		// TransientRetries is how often a serialization failure or deadlock
		// is retried before it is reported.
		TransientRetries int           `envconfig:"TX_TRANSIENT_RETRIES" default:"2"`
		InitialBackoff   time.Duration `envconfig:"TX_INITIAL_BACKOFF" default:"20ms"`
		MaxBackoff       time.Duration `envconfig:"TX_MAX_BACKOFF" default:"500ms"`
	}

	Log struct {
		Level  slog.Level `envconfig:"LOG_LEVEL" default:"info"`
		Format string     `envconfig:"LOG_FORMAT" default:"text"`
	}
}

func (c *Config) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     fmt.Sprintf("%s:%d", c.DB.Host, c.DB.Port),
		Path:     c.DB.Name,
		RawQuery: url.Values{"sslmode": {c.DB.SSLMode}}.Encode(),
	}

	return u.String()
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.Log.Format {
	case "text", "json":
	default:
		return nil, fmt.Errorf("LOG_FORMAT %q: expected text or json", cfg.Log.Format)
	}

	return &cfg, nil
}

// RequireAuth reports a missing signing secret. Only the binaries that
// verify or issue tokens need one.
func (c *Config) RequireAuth() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	return nil
}
