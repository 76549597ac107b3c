package config

import (
	"os"
	"time"
)

// RateLimitConfig controls the Redis token-bucket limiter applied to
// booking and cancellation endpoints. Capacity is the burst size;
// one token refills every RefillInterval. TTL bounds how long idle
// bucket state lives in Redis.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

// LoadRateLimitConfig builds a RateLimitConfig from the environment
// with conservative defaults suitable for a low-traffic internal
// tool.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 30),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if min := 5 * cfg.RefillInterval; cfg.TTL < min {
		cfg.TTL = min
	}
	return cfg
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
