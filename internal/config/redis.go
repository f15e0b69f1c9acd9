package config

// Redis backs the response cache and the rate limiter.  If the server
// cannot be reached at startup, NewRedisClient returns nil and both
// middlewares degrade to pass-through.

import (
    "context"
    "crypto/tls"
    "log/slog"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisConfig holds the Redis connection settings.  Addr is host:port.
type RedisConfig struct {
    Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
    Password string `envconfig:"REDIS_PASSWORD"`
    DB       int    `envconfig:"REDIS_DB" default:"0"`
    TLS      bool   `envconfig:"REDIS_TLS" default:"false"`
}

// NewRedisClient instantiates a Redis client and pings it with a short
// timeout.  The returned client is nil when the server is unreachable.
func NewRedisClient(cfg RedisConfig, logger *slog.Logger) *redis.Client {
    var tlsConf *tls.Config
    if cfg.TLS {
        tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      cfg.Addr,
        Password:  cfg.Password,
        DB:        cfg.DB,
        TLSConfig: tlsConf,
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        logger.Warn("redis unavailable, cache and rate limit disabled", "addr", cfg.Addr, "error", err)
        _ = client.Close()
        return nil
    }
    return client
}
