package config

import (
	"strings"
	"time"
)

// CacheConfig configures the Redis response cache used on public property
// reads.  Booking endpoints are never cached.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string // route, method_route, method_route_query, route_query
	Prefix       string
	MaxBodyBytes int
}

func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      map[string]bool{},
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "spacelink:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
	for _, m := range splitList(envStr("CACHE_METHODS", "GET")) {
		cfg.Methods[strings.ToUpper(m)] = true
	}
	return cfg
}
