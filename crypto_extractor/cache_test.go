package crypto_extractor

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kaiyuhsu/cipherlift/crypto_extractor/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cacheTestSnapshot(rootDir string, size int64) *models.ProjectSnapshot {
	return &models.ProjectSnapshot{
		RootDir:   rootDir,
		Timestamp: time.Unix(1700000000, 0),
		Files: map[string]models.FileSnapshot{
			"cipher.py": {RelativePath: "cipher.py", ModTime: time.Unix(1700000000, 0), Size: size},
		},
	}
}

func cacheTestCorpus(projectName string) *models.EncryptionCorpus {
	corpus := models.NewEncryptionCorpus(projectName)
	corpus.AddImport("import base64")
	corpus.PrimaryFiles = append(corpus.PrimaryFiles, "cipher.py")
	corpus.Functions = append(corpus.Functions, models.ExtractedFragment{
		Category: models.CategoryFunction, Name: "pad", SourcePath: "cipher.py",
		Code: "def pad(data):\n    return data", LineCount: 2,
	})
	return corpus
}

// Test cache setup and the basic miss, store, hit cycle.
func TestExtractionCache_BasicOperations(t *testing.T) {
	// Create temporary cache directory
	tempDir, err := ioutil.TempDir("", "cache_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	cache, err := NewExtractionCache(filepath.Join(tempDir, "cache"))
	require.NoError(t, err)
	require.NotNil(t, cache)

	projectRoot := "/tmp/project-a"
	snapshot := cacheTestSnapshot(projectRoot, 128)

	// Nothing cached yet
	corpus, found := cache.GetCorpus(projectRoot, snapshot)
	assert.False(t, found)
	assert.Nil(t, corpus)

	stored := cacheTestCorpus("project-a")
	require.NoError(t, cache.SetCorpus(projectRoot, stored, snapshot))

	// Same snapshot, so the stored corpus comes back
	cached, found := cache.GetCorpus(projectRoot, snapshot)
	assert.True(t, found)
	require.NotNil(t, cached)
	assert.Equal(t, "project-a", cached.ProjectName)
	assert.Contains(t, cached.Imports, "import base64")
	assert.Equal(t, stored.PrimaryFiles, cached.PrimaryFiles)
	require.Len(t, cached.Functions, 1)
	assert.Equal(t, "pad", cached.Functions[0].Name)
	assert.Equal(t, stored.Functions[0].Code, cached.Functions[0].Code)
}

// Test that a changed project snapshot invalidates and removes the entry.
func TestExtractionCache_SnapshotInvalidation(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "cache_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	cache, err := NewExtractionCache(filepath.Join(tempDir, "cache"))
	require.NoError(t, err)

	projectRoot := "/tmp/project-b"
	require.NoError(t, cache.SetCorpus(projectRoot, cacheTestCorpus("project-b"), cacheTestSnapshot(projectRoot, 128)))

	// A different file size means the project changed since the analysis
	corpus, found := cache.GetCorpus(projectRoot, cacheTestSnapshot(projectRoot, 256))
	assert.False(t, found)
	assert.Nil(t, corpus)

	// The stale entry is removed on the spot
	stats, err := cache.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats["cache_files"])
}

// Test that an undecodable cache file is treated as a miss and removed.
func TestExtractionCache_CorruptEntry(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "cache_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	cache, err := NewExtractionCache(filepath.Join(tempDir, "cache"))
	require.NoError(t, err)

	projectRoot := "/tmp/project-c"
	cachePath := cache.getCachePath(cache.generateCacheKey(projectRoot))
	require.NoError(t, ioutil.WriteFile(cachePath, []byte("not a gob stream"), 0644))

	corpus, found := cache.GetCorpus(projectRoot, cacheTestSnapshot(projectRoot, 128))
	assert.False(t, found)
	assert.Nil(t, corpus)

	_, err = os.Stat(cachePath)
	assert.True(t, os.IsNotExist(err), "Corrupt cache file should be removed")
}

// Test that Clear removes every entry but keeps the cache directory.
func TestExtractionCache_Clear(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "cache_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	cacheDir := filepath.Join(tempDir, "cache")
	cache, err := NewExtractionCache(cacheDir)
	require.NoError(t, err)

	require.NoError(t, cache.SetCorpus("/tmp/one", cacheTestCorpus("one"), cacheTestSnapshot("/tmp/one", 1)))
	require.NoError(t, cache.SetCorpus("/tmp/two", cacheTestCorpus("two"), cacheTestSnapshot("/tmp/two", 2)))

	stats, err := cache.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats["cache_files"])

	require.NoError(t, cache.Clear())

	stats, err = cache.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats["cache_files"])

	// Directory itself survives
	info, err := os.Stat(cacheDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// Test cache storage statistics.
func TestExtractionCache_Statistics(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "cache_stats_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	cacheDir := filepath.Join(tempDir, "cache")
	cache, err := NewExtractionCache(cacheDir)
	require.NoError(t, err)

	// Initially empty
	stats, err := cache.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats["cache_files"])
	assert.Equal(t, int64(0), stats["total_size"])

	require.NoError(t, cache.SetCorpus("/tmp/project", cacheTestCorpus("project"), cacheTestSnapshot("/tmp/project", 64)))

	stats, err = cache.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats["cache_files"])
	assert.Greater(t, stats["total_size"], int64(0))
	assert.Equal(t, cacheDir, stats["cache_dir"])
}

// Test count-based cleanup: the oldest entries go first and the newest survives.
func TestExtractionCache_CleanupByCount(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "cache_cleanup_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	cache, err := NewExtractionCache(filepath.Join(tempDir, "cache"))
	require.NoError(t, err)

	roots := []string{"/tmp/oldest", "/tmp/middle", "/tmp/newest"}
	for _, root := range roots {
		require.NoError(t, cache.SetCorpus(root, cacheTestCorpus(filepath.Base(root)), cacheTestSnapshot(root, 16)))
		// Distinct timestamps decide the deletion order
		time.Sleep(15 * time.Millisecond)
	}

	summary, err := cache.CleanupCache(CleanupOptions{MaxFiles: 1})
	require.NoError(t, err)

	assert.Equal(t, 3, summary["files_before_cleanup"])
	assert.Equal(t, 2, summary["files_marked_for_delete"])
	assert.Equal(t, 2, summary["files_actually_deleted"])
	assert.Equal(t, 0, summary["deleted_by_age"])
	assert.Equal(t, 2, summary["deleted_by_count"])
	assert.Equal(t, 1, summary["files_after_cleanup"])
	assert.Equal(t, false, summary["dry_run"])

	// The most recent entry is the one left standing
	_, found := cache.GetCorpus("/tmp/newest", cacheTestSnapshot("/tmp/newest", 16))
	assert.True(t, found)
	_, found = cache.GetCorpus("/tmp/oldest", cacheTestSnapshot("/tmp/oldest", 16))
	assert.False(t, found)
}

// Test age-based cleanup with a cutoff every entry has already passed.
func TestExtractionCache_CleanupByAge(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "cache_cleanup_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	cache, err := NewExtractionCache(filepath.Join(tempDir, "cache"))
	require.NoError(t, err)

	require.NoError(t, cache.SetCorpus("/tmp/a", cacheTestCorpus("a"), cacheTestSnapshot("/tmp/a", 1)))
	require.NoError(t, cache.SetCorpus("/tmp/b", cacheTestCorpus("b"), cacheTestSnapshot("/tmp/b", 2)))

	time.Sleep(50 * time.Millisecond)

	summary, err := cache.CleanupCache(CleanupOptions{MaxAge: 20 * time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, 2, summary["deleted_by_age"])
	assert.Equal(t, 0, summary["files_after_cleanup"])
}

// Test that a dry run reports deletions without touching the disk.
func TestExtractionCache_CleanupDryRun(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "cache_cleanup_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	cache, err := NewExtractionCache(filepath.Join(tempDir, "cache"))
	require.NoError(t, err)

	require.NoError(t, cache.SetCorpus("/tmp/a", cacheTestCorpus("a"), cacheTestSnapshot("/tmp/a", 1)))
	time.Sleep(15 * time.Millisecond)
	require.NoError(t, cache.SetCorpus("/tmp/b", cacheTestCorpus("b"), cacheTestSnapshot("/tmp/b", 2)))

	summary, err := cache.CleanupCache(CleanupOptions{MaxFiles: 1, DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 1, summary["files_marked_for_delete"])
	assert.Equal(t, 1, summary["files_actually_deleted"])
	assert.Equal(t, true, summary["dry_run"])

	// Nothing was actually removed
	stats, err := cache.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats["cache_files"])
}

// Test hit/miss counters and their reset.
func TestExtractionCache_PerformanceStats(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "cache_perf_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	cache, err := NewExtractionCache(filepath.Join(tempDir, "cache"))
	require.NoError(t, err)

	stats := cache.GetPerformanceStats()
	assert.Equal(t, int64(0), stats["total_requests"])

	projectRoot := "/tmp/project-d"
	snapshot := cacheTestSnapshot(projectRoot, 32)

	// First lookup misses
	_, found := cache.GetCorpus(projectRoot, snapshot)
	require.False(t, found)

	stats = cache.GetPerformanceStats()
	assert.Equal(t, int64(1), stats["total_requests"])
	assert.Equal(t, int64(0), stats["cache_hits"])
	assert.Equal(t, int64(1), stats["cache_misses"])
	assert.Equal(t, 0.0, stats["hit_rate_percent"])

	// Store and hit
	require.NoError(t, cache.SetCorpus(projectRoot, cacheTestCorpus("project-d"), snapshot))
	_, found = cache.GetCorpus(projectRoot, snapshot)
	require.True(t, found)

	stats = cache.GetPerformanceStats()
	assert.Equal(t, int64(2), stats["total_requests"])
	assert.Equal(t, int64(1), stats["cache_hits"])
	assert.Equal(t, 50.0, stats["hit_rate_percent"])

	cache.ResetPerformanceStats()
	stats = cache.GetPerformanceStats()
	assert.Equal(t, int64(0), stats["total_requests"])
	assert.Equal(t, int64(0), stats["cache_hits"])
	assert.Equal(t, int64(0), stats["cache_misses"])
}
