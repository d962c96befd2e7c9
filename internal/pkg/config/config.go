package config

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Storage backends accepted by STORE_BACKEND.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Session backends accepted by SESSION_BACKEND.
const (
	SessionRedis  = "redis"
	SessionMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	StoreBackend   string   `env:"STORE_BACKEND,   default=mongo"`
	SessionBackend string   `env:"SESSION_BACKEND, default=redis"`
	CORSOrigins    []string `env:"CORS_ORIGINS,    default=http://localhost:3000"`

	Session SessionConfig
	Mongo   MongoConfig
	SQL     SQLConfig
	Redis   RedisConfig
	Image   ImageConfig
	Login   LoginConfig
	Admin   AdminConfig
}

type SessionConfig struct {
	Secret     string        `env:"SESSION_SECRET"`
	TTL        time.Duration `env:"SESSION_TTL,             default=24h"`
	CookieName string        `env:"SESSION_COOKIE_NAME,     default=session"`
	Secure     bool          `env:"SESSION_COOKIE_SECURE,   default=false"`
	SameSite   string        `env:"SESSION_COOKIE_SAMESITE, default=lax"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=listings"`
}

type SQLConfig struct {
	DSN string `env:"SQL_DSN"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

type ImageConfig struct {
	MaxBytes     int `env:"IMAGE_MAX_BYTES,     default=512000"`
	StartQuality int `env:"IMAGE_START_QUALITY, default=95"`
	QualityStep  int `env:"IMAGE_QUALITY_STEP,  default=5"`
	MinQuality   int `env:"IMAGE_MIN_QUALITY,   default=5"`
	Workers      int `env:"IMAGE_WORKERS,       default=4"`
}

type LoginConfig struct {
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	Window      time.Duration `env:"LOGIN_WINDOW,       default=15m"`
}

type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME"`
	Password string `env:"ADMIN_PASSWORD"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate rejects unknown backends and settings that cannot work together.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMongo, StoreMemory:
	case StorePostgres, StoreSQLite:
		if c.SQL.DSN == "" {
			return fmt.Errorf("config: SQL_DSN is required for STORE_BACKEND=%s", c.StoreBackend)
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.SessionBackend {
	case SessionRedis, SessionMemory:
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.SessionBackend)
	}

	if c.IsProduction() && len(c.Session.Secret) < 32 {
		return fmt.Errorf("config: SESSION_SECRET must be at least 32 bytes in production")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive")
	}
	if _, err := ParseSameSite(c.Session.SameSite); err != nil {
		return err
	}
	if (c.Admin.Username == "") != (c.Admin.Password == "") {
		return fmt.Errorf("config: ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	return nil
}

// ParseSameSite maps SESSION_COOKIE_SAMESITE to the cookie attribute.
func ParseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("config: unknown SESSION_COOKIE_SAMESITE %q", s)
	}
}
