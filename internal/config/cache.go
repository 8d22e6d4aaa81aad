package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching will be disabled.
// MethodList lists the HTTP methods to cache (e.g. GET, HEAD).  TTL defines the
// lifetime of cache entries.  KeyStrategy determines which parts of the request
// contribute to the cache key.  Prefix and MaxBodyBytes allow control over
// namespacing and the maximum size of responses to cache.
type CacheConfig struct {
	Enabled      bool          `env:"CACHE_ENABLED"        env-default:"true"`
	MethodList   string        `env:"CACHE_METHODS"        env-default:"GET"`
	TTL          time.Duration `env:"CACHE_TTL"            env-default:"30s"`
	KeyStrategy  string        `env:"CACHE_KEY_STRATEGY"   env-default:"route_query"`
	Prefix       string        `env:"CACHE_PREFIX"         env-default:"cache"`
	MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES" env-default:"1048576"`
}

// Methods returns the upper-cased set of cacheable methods.
func (c CacheConfig) Methods() map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(c.MethodList, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
