package config

import "time"

// PageCacheConfig controls the Redis cache in front of the anonymous pages
// (landing, login and register forms).  Pages rendered for a signed-in
// user are never cached.
type PageCacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadPageCacheConfig reads PAGE_CACHE_* variables.
func LoadPageCacheConfig() PageCacheConfig {
	cfg := PageCacheConfig{
		Enabled:      envBool("PAGE_CACHE_ENABLED", true),
		TTL:          envDur("PAGE_CACHE_TTL", 5*time.Minute),
		Prefix:       getenv("PAGE_CACHE_PREFIX", "page"),
		MaxBodyBytes: envInt("PAGE_CACHE_MAX_BODY_BYTES", 256<<10),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	return cfg
}
