package config

import "time"

// RateLimitConfig configures the Redis token bucket that guards the
// reservation write endpoints.
type RateLimitConfig struct {
    Enabled        bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
    Capacity       int           `envconfig:"RATE_LIMIT_CAPACITY" default:"20"`
    RefillTokens   int           `envconfig:"RATE_LIMIT_REFILL_TOKENS" default:"1"`
    RefillInterval time.Duration `envconfig:"RATE_LIMIT_REFILL_INTERVAL" default:"1s"`
    TTL            time.Duration `envconfig:"RATE_LIMIT_TTL" default:"10m"`
    KeyStrategy    string        `envconfig:"RATE_LIMIT_KEY_STRATEGY" default:"ip_route"`
    Prefix         string        `envconfig:"RATE_LIMIT_PREFIX" default:"rl"`
}

// Normalized clamps values so the limiter script never divides by zero
// and keys outlive a full refill.
func (c RateLimitConfig) Normalized() RateLimitConfig {
    if c.Capacity < 1 {
        c.Capacity = 1
    }
    if c.RefillTokens < 1 {
        c.RefillTokens = 1
    }
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
        c.TTL = minTTL
    }
    return c
}
