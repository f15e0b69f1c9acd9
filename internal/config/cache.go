package config

import (
    "strings"
    "time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching will be disabled.
// Only room and showtime reads are wrapped.  Seat maps are always served
// from the store.
type CacheConfig struct {
    Enabled      bool          `envconfig:"CACHE_ENABLED" default:"true"`
    Methods      []string      `envconfig:"CACHE_METHODS" default:"GET"`
    TTL          time.Duration `envconfig:"CACHE_TTL" default:"5s"`
    KeyStrategy  string        `envconfig:"CACHE_KEY_STRATEGY" default:"route_query"`
    Prefix       string        `envconfig:"CACHE_PREFIX" default:"cache"`
    MaxBodyBytes int           `envconfig:"CACHE_MAX_BODY_BYTES" default:"1048576"`
}

// MethodSet returns the cacheable methods upper-cased for lookups.
func (c CacheConfig) MethodSet() map[string]bool {
    m := map[string]bool{}
    for _, p := range c.Methods {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}
