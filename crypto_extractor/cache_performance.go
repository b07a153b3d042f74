package crypto_extractor

import (
	"time"
)

// recordCacheHit increments cache hit counter
func (ec *ExtractionCache) recordCacheHit() {
	if ec.stats == nil {
		return
	}
	ec.stats.mutex.Lock()
	defer ec.stats.mutex.Unlock()
	ec.stats.TotalRequests++
	ec.stats.CacheHits++
}

// recordCacheMiss increments cache miss counter
func (ec *ExtractionCache) recordCacheMiss() {
	if ec.stats == nil {
		return
	}
	ec.stats.mutex.Lock()
	defer ec.stats.mutex.Unlock()
	ec.stats.TotalRequests++
	ec.stats.CacheMisses++
}

// GetPerformanceStats returns cache hit/miss statistics for the lifetime of
// this cache instance.
func (ec *ExtractionCache) GetPerformanceStats() map[string]interface{} {
	if ec.stats == nil {
		return map[string]interface{}{
			"total_requests":   int64(0),
			"cache_hits":       int64(0),
			"cache_misses":     int64(0),
			"hit_rate_percent": 0.0,
		}
	}

	ec.stats.mutex.RLock()
	defer ec.stats.mutex.RUnlock()

	hitRate := 0.0
	if ec.stats.TotalRequests > 0 {
		hitRate = float64(ec.stats.CacheHits) / float64(ec.stats.TotalRequests) * 100
	}

	return map[string]interface{}{
		"total_requests":   ec.stats.TotalRequests,
		"cache_hits":       ec.stats.CacheHits,
		"cache_misses":     ec.stats.CacheMisses,
		"hit_rate_percent": hitRate,
		"uptime_seconds":   time.Since(ec.stats.LastResetTime).Seconds(),
		"last_reset":       ec.stats.LastResetTime.Format(time.RFC3339),
	}
}

// ResetPerformanceStats resets all performance counters
func (ec *ExtractionCache) ResetPerformanceStats() {
	if ec.stats == nil {
		return
	}
	ec.stats.mutex.Lock()
	defer ec.stats.mutex.Unlock()

	ec.stats.TotalRequests = 0
	ec.stats.CacheHits = 0
	ec.stats.CacheMisses = 0
	ec.stats.LastResetTime = time.Now()
}
