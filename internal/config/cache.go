package config

import "time"

// CacheConfig controls how the services treat the session cache.
//
// Optional is the "cache-optional mode": when true, failed cache writes and
// deletes are logged and ignored, and an unreachable cache on refresh means
// the refresh token signature alone is trusted. When false, the same
// failures are returned to the caller as server errors.
// OpTimeout bounds every individual cache call.
type CacheConfig struct {
	Optional  bool
	OpTimeout time.Duration
}

// LoadCacheConfig reads CACHE_OPTIONAL and CACHE_OP_TIMEOUT.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Optional:  envBool("CACHE_OPTIONAL", true),
		OpTimeout: envDur("CACHE_OP_TIMEOUT", 2*time.Second),
	}
}
