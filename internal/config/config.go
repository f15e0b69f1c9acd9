package config // package config loads application configuration from environment variables

import (
    "fmt"
    "strings"

    "github.com/cockroachdb/errors"
    "github.com/joho/godotenv"
    "github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration values.  Values come from the
// process environment; a .env file in the working directory is loaded
// first when present.  Nested structs group related settings.
type Config struct {
    Env        string `envconfig:"APP_ENV" default:"dev"`    // application environment (dev/test/prod)
    Port       string `envconfig:"APP_PORT" default:"8080"`  // HTTP port to listen on
    LogLevel   string `envconfig:"LOG_LEVEL" default:"info"` // debug, info, warn or error
    JWTSecret  string `envconfig:"JWT_SECRET"`               // enables the management route guard when set
    AMQPURL    string `envconfig:"RABBITMQ_URL"`             // reservation events are published when set
    MoviesFile string `envconfig:"MOVIES_FILE"`              // JSON movie list used when DB_DRIVER=memory
    DB         DBConfig
    Pricing    PricingConfig
    Redis      RedisConfig
    Cache      CacheConfig
    RateLimit  RateLimitConfig
}

// DBConfig selects and configures the persistent store.  Driver is one of
// mysql, postgres or memory.  DSN, when set, overrides the assembled
// connection string.
type DBConfig struct {
    Driver   string `envconfig:"DB_DRIVER" default:"mysql"`
    Host     string `envconfig:"DB_HOST" default:"localhost"`
    Port     string `envconfig:"DB_PORT"`
    User     string `envconfig:"DB_USER" default:"cinema"`
    Password string `envconfig:"DB_PASS"`
    Name     string `envconfig:"DB_NAME" default:"cinema"`
    DSN      string `envconfig:"DB_DSN"`
    Migrate  bool   `envconfig:"DB_MIGRATE" default:"true"`
}

// PricingConfig holds the reservation price tiers in cents.
type PricingConfig struct {
    BaseCents int64 `envconfig:"PRICE_BASE_CENTS" default:"1199"`
    PairCents int64 `envconfig:"PRICE_PAIR_CENTS" default:"1999"`
}

// Load reads the optional .env file and then the environment.
func Load() (Config, error) {
    _ = godotenv.Load() // .env is optional
    var cfg Config
    if err := envconfig.Process("", &cfg); err != nil {
        return Config{}, errors.Wrap(err, "failed to process env config")
    }
    cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
    switch cfg.DB.Driver {
    case "mysql", "postgres", "memory":
    default:
        return Config{}, errors.Newf("unsupported DB_DRIVER %q", cfg.DB.Driver)
    }
    if cfg.Pricing.BaseCents <= 0 || cfg.Pricing.PairCents <= 0 {
        return Config{}, errors.New("price tiers must be positive")
    }
    return cfg, nil
}

// BuildDSN assembles the driver specific connection string.
// parseTime=true maps DATETIME to time.Time and loc=UTC keeps times consistent.
func (c DBConfig) BuildDSN() string {
    if c.DSN != "" {
        return c.DSN
    }
    switch c.Driver {
    case "postgres":
        port := c.Port
        if port == "" {
            port = "5432"
        }
        return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&timezone=UTC",
            c.User, c.Password, c.Host, port, c.Name)
    default:
        port := c.Port
        if port == "" {
            port = "3306"
        }
        auth := c.User
        if c.Password != "" {
            auth = fmt.Sprintf("%s:%s", c.User, c.Password)
        }
        return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
            auth, c.Host, port, c.Name)
    }
}
