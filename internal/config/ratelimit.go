package config

import "time"

// RateLimitConfig configures the token bucket limiter. Capacity tokens are
// available at once and RefillTokens are added every RefillInterval. TTL
// bounds how long an idle bucket is kept in Redis. MemoryRPS is used by the
// in-process fallback limiter when Redis is unavailable.
//
// The limiter guards the whole /api group and runs before JWTAuth, so the
// user part of a key is always "anon" there. The default buckets per client
// IP and route; the user strategies only count per account when the
// middleware is mounted after JWTAuth.
type RateLimitConfig struct {
	Enabled        bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	Capacity       int           `envconfig:"RATE_LIMIT_CAPACITY" default:"60"`
	RefillTokens   int           `envconfig:"RATE_LIMIT_REFILL_TOKENS" default:"1"`
	RefillInterval time.Duration `envconfig:"RATE_LIMIT_REFILL_INTERVAL" default:"1s"`
	TTL            time.Duration `envconfig:"RATE_LIMIT_TTL" default:"10m"`
	KeyStrategy    string        `envconfig:"RATE_LIMIT_KEY_STRATEGY" default:"ip_route"`
	Prefix         string        `envconfig:"RATE_LIMIT_PREFIX" default:"pousada:rl"`
	MemoryRPS      float64       `envconfig:"RATE_LIMIT_MEMORY_RPS" default:"20"`
	Debug          bool          `envconfig:"RATE_LIMIT_DEBUG" default:"false"`
}

func (r *RateLimitConfig) normalize() {
	if r.Capacity < 1 {
		r.Capacity = 1
	}
	if r.RefillTokens < 1 {
		r.RefillTokens = 1
	}
	if r.RefillInterval <= 0 {
		r.RefillInterval = time.Second
	}
	// a bucket must outlive several refill periods or it resets to full
	if minTTL := 5 * r.RefillInterval; r.TTL < minTTL {
		r.TTL = minTTL
	}
	if r.MemoryRPS <= 0 {
		r.MemoryRPS = 20
	}
}
