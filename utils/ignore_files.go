package utils

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
)

// excludeCacheEntry holds compiled exclude patterns with metadata
type excludeCacheEntry struct {
	patterns []glob.Glob
	modTime  time.Time
}

// Global cache for exclude patterns
var (
	excludeCache = make(map[string]*excludeCacheEntry)
	cacheMutex   sync.RWMutex
)

// GetExcludePatterns reads and compiles the patterns from the
// .cipherlift-ignore file at the project root. A missing file yields an
// empty pattern list. Compiled patterns are cached per file and refreshed
// when the file's modification time changes.
func GetExcludePatterns(cwd string) ([]glob.Glob, error) {
	ignorePath := filepath.Join(cwd, ".cipherlift-ignore")

	fileInfo, err := os.Stat(ignorePath)
	if os.IsNotExist(err) {
		return []glob.Glob{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("error checking .cipherlift-ignore: %w", err)
	}

	cacheMutex.RLock()
	if cached, exists := excludeCache[ignorePath]; exists {
		if fileInfo.ModTime().Equal(cached.modTime) {
			cacheMutex.RUnlock()
			return cached.patterns, nil
		}
	}
	cacheMutex.RUnlock()

	patterns, err := readExcludeFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .cipherlift-ignore: %w", err)
	}

	cacheMutex.Lock()
	excludeCache[ignorePath] = &excludeCacheEntry{
		patterns: patterns,
		modTime:  fileInfo.ModTime(),
	}
	cacheMutex.Unlock()

	return patterns, nil
}

// readExcludeFile parses one glob pattern per line, skipping blank lines and
// comments. An invalid pattern is dropped with a warning rather than failing
// the whole walk.
func readExcludeFile(ignorePath string) ([]glob.Glob, error) {
	content, err := ioutil.ReadFile(ignorePath)
	if err != nil {
		return nil, err
	}

	var patterns []glob.Glob
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		compiled, err := glob.Compile(line, '/')
		if err != nil {
			fmt.Printf("⚠️ Skipping invalid ignore pattern %q: %v\n", line, err)
			continue
		}
		patterns = append(patterns, compiled)
	}

	return patterns, nil
}

// IsHidden reports whether a file or directory name is hidden.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// IsDefaultIgnored filters out directories that never hold project source:
// virtualenvs, caches, packaging output and VCS internals.
func IsDefaultIgnored(path string) bool {
	ignoreParts := []string{
		"__pycache__",
		".git",
		".svn",
		".tox",
		".venv",
		"venv",
		"node_modules",
		"site-packages",
		"dist",
		"build",
		".eggs",
		".mypy_cache",
		".pytest_cache",
	}

	for _, part := range strings.Split(path, "/") {
		part = strings.ToLower(part)
		for _, pattern := range ignoreParts {
			if part == pattern {
				return true
			}
		}
		if strings.HasSuffix(part, ".egg-info") {
			return true
		}
	}

	return false
}

// IsExcluded checks a relative path against the compiled user patterns.
func IsExcluded(path string, patterns []glob.Glob) bool {
	for _, pattern := range patterns {
		if pattern.Match(path) {
			return true
		}
	}

	return false
}

// ClearExcludeCache clears all cached exclude patterns
func ClearExcludeCache() {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	excludeCache = make(map[string]*excludeCacheEntry)
}
