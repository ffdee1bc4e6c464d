package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig controls the Redis token bucket on the scan endpoint.
// Networked scanner devices can misfire and resubmit rapidly; the bucket
// caps how many scan submissions a single station may post per interval
// before receiving 429 with a Retry-After hint.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads the rate-limit settings from the environment
// with defaults tuned for one badge per second with short bursts.
func LoadRateLimitConfig() RateLimitConfig {
	def := RateLimitConfig{
		Enabled:        envBool("SCAN_RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("SCAN_RATE_LIMIT_CAPACITY", 10),
		RefillTokens:   envInt("SCAN_RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("SCAN_RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("SCAN_RATE_LIMIT_TTL", 10*time.Minute),
		Prefix:         envStr("SCAN_RATE_LIMIT_PREFIX", "scanrl"),
		Debug:          envBool("SCAN_RATE_LIMIT_DEBUG", false),
	}
	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	minTTL := 5 * def.RefillInterval
	if def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
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
