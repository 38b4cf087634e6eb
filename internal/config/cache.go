package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is skipped.
// KeyStrategy selects which parts of the request form the cache key:
// route, method_route, method_route_query or route_query (default).
type CacheConfig struct {
	Enabled      bool          `envconfig:"CACHE_ENABLED" default:"true"`
	MethodList   []string      `envconfig:"CACHE_METHODS" default:"GET"`
	TTL          time.Duration `envconfig:"CACHE_TTL" default:"30s"`
	KeyStrategy  string        `envconfig:"CACHE_KEY_STRATEGY" default:"route_query"`
	Prefix       string        `envconfig:"CACHE_PREFIX" default:"pousada:cache"`
	MaxBodyBytes int           `envconfig:"CACHE_MAX_BODY_BYTES" default:"1048576"`

	// Methods is the upper-cased set built from MethodList.
	Methods map[string]bool `ignored:"true"`
}

func (c *CacheConfig) normalize() {
	c.Methods = make(map[string]bool, len(c.MethodList))
	for _, m := range c.MethodList {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m != "" {
			c.Methods[m] = true
		}
	}
	if c.TTL <= 0 {
		c.TTL = 30 * time.Second
	}
	c.KeyStrategy = strings.ToLower(strings.TrimSpace(c.KeyStrategy))
}
