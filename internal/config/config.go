package config

import (
	"fmt"  // Error wrapping
	"time" // Durations for token and cache lifetimes

	"github.com/caarlos0/env/v11" // Typed environment parsing
	"github.com/joho/godotenv"    // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort  string `env:"APP_PORT" envDefault:"8000"`  // Application port
	IsProd   bool   `env:"IS_PROD" envDefault:"false"`  // Is production environment
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"` // logrus level name

	DB    DBConfig
	Token TokenConfig
	Super SuperuserConfig
	Redis RedisConfig
	HTTP  HTTPConfig
}

// DBConfig selects the gorm dialector and its DSN
type DBConfig struct {
	Driver      string `env:"DB_DRIVER" envDefault:"sqlite"`      // mysql, postgres or sqlite
	URL         string `env:"DB_URL" envDefault:"bookkeeping.db"` // Driver specific DSN
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`     // Run AutoMigrate on server start
}

// TokenConfig configures password hashing and bearer token signing
type TokenConfig struct {
	Secret     string        `env:"SECRET_KEY,required"`          // HMAC signing secret
	Algorithm  string        `env:"ALGORITHM" envDefault:"HS256"` // HS256, HS384 or HS512
	TTL        time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`
}

// SuperuserConfig describes the administrative principal that has no user row
type SuperuserConfig struct {
	Username     string `env:"SUPERUSER_USERNAME"`      // Empty disables superuser login
	Password     string `env:"SUPERUSER_PASSWORD"`      // Plaintext fallback
	PasswordHash string `env:"SUPERUSER_PASSWORD_HASH"` // bcrypt hash, preferred over Password
}

// RedisConfig configures the optional read cache
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`                 // Empty disables caching
	Password string        `env:"REDIS_PASS"`                 // Redis password
	DB       int           `env:"REDIS_DB" envDefault:"0"`    // Redis database number
	TTL      time.Duration `env:"CACHE_TTL" envDefault:"60s"` // Cache entry lifetime
}

// HTTPConfig holds router level settings
type HTTPConfig struct {
	TrustedProxies []string `env:"TRUSTED_PROXIES" envDefault:"127.0.0.1"`
	CORSOrigins    []string `env:"CORS_ORIGINS" envDefault:"*"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoadConfig is LoadConfig for binaries that cannot start without it
func MustLoadConfig() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.Token.Secret == "" {
		return fmt.Errorf("SECRET_KEY must not be empty")
	}
	switch c.Token.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported ALGORITHM %q", c.Token.Algorithm)
	}
	if c.Token.TTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	return nil
}
