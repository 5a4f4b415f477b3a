package config

import (
    "strings"
    "time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching will be disabled.
// TTL defines the lifetime of cache entries.  KeyStrategy determines which parts
// of the request contribute to the cache key.  Prefix and MaxBodyBytes allow
// control over namespacing and the maximum size of responses to cache.
type CacheConfig struct {
    Enabled      bool          `env:"CACHE_ENABLED" envDefault:"true"`
    TTL          time.Duration `env:"CACHE_TTL" envDefault:"30s"`
    KeyStrategy  string        `env:"CACHE_KEY_STRATEGY" envDefault:"route_query"`
    Prefix       string        `env:"CACHE_PREFIX" envDefault:"blog:cache"`
    MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES" envDefault:"1048576"`
}

// Strategy returns the normalized key strategy.
func (c CacheConfig) Strategy() string {
    s := strings.ToLower(strings.TrimSpace(c.KeyStrategy))
    switch s {
    case "route", "route_query":
        return s
    }
    return "route_query"
}
