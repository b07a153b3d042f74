package crypto_extractor

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/kaiyuhsu/cipherlift/crypto_extractor/models"
	"github.com/zeebo/xxh3"
)

// CacheEntry wraps one cached analysis result with the snapshot used to
// decide whether it is still valid.
type CacheEntry struct {
	Corpus    *models.EncryptionCorpus
	Snapshot  *models.ProjectSnapshot
	Timestamp time.Time
}

// ExtractionCache persists analysis results per project root, so re-running
// the extractor against an unchanged project skips parsing entirely.
type ExtractionCache struct {
	cacheDir string
	mutex    sync.RWMutex
	stats    *CacheStats
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	TotalRequests int64
	CacheHits     int64
	CacheMisses   int64
	LastResetTime time.Time
	mutex         sync.RWMutex
}

// NewExtractionCache creates a cache rooted at cacheDir.
// If cacheDir is empty, it defaults to ".cipherlift_cache" in the current working directory
func NewExtractionCache(cacheDir string) (*ExtractionCache, error) {
	if cacheDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		cacheDir = filepath.Join(cwd, ".cipherlift_cache")
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &ExtractionCache{
		cacheDir: cacheDir,
		stats: &CacheStats{
			LastResetTime: time.Now(),
		},
	}

	// Background cleanup keeps stale entries from piling up between runs
	go cache.performAutoCleanup()

	return cache, nil
}

// generateCacheKey creates a unique cache key for a project root
func (ec *ExtractionCache) generateCacheKey(rootDir string) string {
	return fmt.Sprintf("%016x.cache", xxh3.HashString(rootDir))
}

// getCachePath returns the full path to a cache file
func (ec *ExtractionCache) getCachePath(cacheKey string) string {
	return filepath.Join(ec.cacheDir, cacheKey)
}

// GetCorpus retrieves the cached corpus for a project root when the stored
// snapshot still matches the current one. A stale or undecodable entry is
// removed on the spot.
func (ec *ExtractionCache) GetCorpus(rootDir string, current *models.ProjectSnapshot) (*models.EncryptionCorpus, bool) {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	cachePath := ec.getCachePath(ec.generateCacheKey(rootDir))

	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		ec.recordCacheMiss()
		return nil, false
	}

	data, err := ioutil.ReadFile(cachePath)
	if err != nil {
		ec.recordCacheMiss()
		return nil, false
	}

	var entry CacheEntry
	decoder := gob.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&entry); err != nil {
		os.Remove(cachePath)
		ec.recordCacheMiss()
		return nil, false
	}

	// Any file added, removed, resized or touched invalidates the entry
	if entry.Corpus == nil || !entry.Snapshot.Matches(current) {
		os.Remove(cachePath)
		ec.recordCacheMiss()
		return nil, false
	}

	ec.recordCacheHit()
	return entry.Corpus, true
}

// SetCorpus stores an analysis result together with the project snapshot it
// was computed from.
func (ec *ExtractionCache) SetCorpus(rootDir string, corpus *models.EncryptionCorpus, snapshot *models.ProjectSnapshot) error {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()

	entry := CacheEntry{
		Corpus:    corpus,
		Snapshot:  snapshot,
		Timestamp: time.Now(),
	}

	var buffer bytes.Buffer
	encoder := gob.NewEncoder(&buffer)
	if err := encoder.Encode(entry); err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	cachePath := ec.getCachePath(ec.generateCacheKey(rootDir))
	if err := ioutil.WriteFile(cachePath, buffer.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// Clear removes every cache entry but keeps the cache directory itself.
func (ec *ExtractionCache) Clear() error {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()

	files, err := ioutil.ReadDir(ec.cacheDir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		os.Remove(filepath.Join(ec.cacheDir, file.Name()))
	}

	return nil
}

// GetStats returns cache storage statistics
func (ec *ExtractionCache) GetStats() (map[string]interface{}, error) {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	files, err := ioutil.ReadDir(ec.cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var totalSize int64
	for _, file := range files {
		if !file.IsDir() {
			totalSize += file.Size()
		}
	}

	stats := make(map[string]interface{})
	stats["cache_files"] = len(files)
	stats["total_size"] = totalSize
	stats["total_size_mb"] = float64(totalSize) / (1024 * 1024)
	stats["cache_dir"] = ec.cacheDir

	return stats, nil
}

// CleanupOptions defines criteria for cache cleanup
type CleanupOptions struct {
	MaxAge   time.Duration // Remove entries older than this
	MaxFiles int           // Remove oldest entries beyond this count
	DryRun   bool          // If true, only report what would be removed
}

// CleanupCache removes entries by age first, then trims the oldest entries
// down to the file budget. Returns a summary of what was (or would be)
// removed.
func (ec *ExtractionCache) CleanupCache(options CleanupOptions) (map[string]interface{}, error) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()

	files, err := ioutil.ReadDir(ec.cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	type cacheFile struct {
		path     string
		entryAge time.Time
	}

	var entries []cacheFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		cachePath := filepath.Join(ec.cacheDir, file.Name())

		entryAge := file.ModTime()
		if data, err := ioutil.ReadFile(cachePath); err == nil {
			var entry CacheEntry
			if decoder := gob.NewDecoder(bytes.NewReader(data)); decoder.Decode(&entry) == nil {
				entryAge = entry.Timestamp
			}
		}

		entries = append(entries, cacheFile{path: cachePath, entryAge: entryAge})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].entryAge.Before(entries[j].entryAge)
	})

	marked := make(map[string]bool)
	var deletedByAge, deletedByCount int

	if options.MaxAge > 0 {
		cutoff := time.Now().Add(-options.MaxAge)
		for _, entry := range entries {
			if entry.entryAge.Before(cutoff) {
				marked[entry.path] = true
				deletedByAge++
			}
		}
	}

	if options.MaxFiles > 0 {
		remaining := len(entries) - len(marked)
		for _, entry := range entries {
			if remaining <= options.MaxFiles {
				break
			}
			if marked[entry.path] {
				continue
			}
			marked[entry.path] = true
			deletedByCount++
			remaining--
		}
	}

	deleted := 0
	if options.DryRun {
		deleted = len(marked)
	} else {
		for path := range marked {
			if err := os.Remove(path); err == nil {
				deleted++
			}
		}
	}

	return map[string]interface{}{
		"files_before_cleanup":    len(entries),
		"files_marked_for_delete": len(marked),
		"files_actually_deleted":  deleted,
		"deleted_by_age":          deletedByAge,
		"deleted_by_count":        deletedByCount,
		"files_after_cleanup":     len(entries) - deleted,
		"dry_run":                 options.DryRun,
	}, nil
}

// performAutoCleanup performs background automatic cleanup with conservative defaults
func (ec *ExtractionCache) performAutoCleanup() {
	ec.CleanupCache(CleanupOptions{
		MaxAge:   7 * 24 * time.Hour, // 7 days
		MaxFiles: 100,
	})
}
