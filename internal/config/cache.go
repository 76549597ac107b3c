package config

import "time"

// CacheConfig defines settings for the response cache middleware.
// Caching is disabled when Enabled is false or no Redis client is
// available. The cache covers GET responses only; entries are
// invalidated as a group whenever the ledger mutates, so TTL is a
// backstop rather than the consistency mechanism.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a
// CacheConfig. Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
