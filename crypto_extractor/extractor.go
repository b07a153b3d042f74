package crypto_extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/kaiyuhsu/cipherlift/constants/lipgloss"
	"github.com/kaiyuhsu/cipherlift/crypto_extractor/contracts"
	"github.com/kaiyuhsu/cipherlift/crypto_extractor/models"
	"github.com/kaiyuhsu/cipherlift/embed_data"
)

// ErrNoCryptoCode reports an analysis that finished without finding a single
// cryptography-related file. No oracle can be generated from such a run.
var ErrNoCryptoCode = errors.New("no encryption related code found in project")

// CryptoExtractor analyzes a Python project and collects its
// cryptography-related code into an EncryptionCorpus.
type CryptoExtractor struct {
	Cache   *ExtractionCache
	queries map[string]string
	modules moduleIndex
}

// NewCryptoExtractor initializes a CryptoExtractor. With caching enabled,
// analysis results are reused across runs for unchanged projects; a cache
// that fails to initialize downgrades to uncached analysis.
func NewCryptoExtractor(enableCache bool) contracts.ICryptoExtractor {
	var cache *ExtractionCache
	if enableCache {
		var err error
		cache, err = NewExtractionCache("")
		if err != nil {
			log.Printf("Warning: failed to initialize extraction cache: %v", err)
			cache = nil
		}
	}

	queries := make(map[string]string)
	if err := json.Unmarshal(embed_data.PythonQuery, &queries); err != nil {
		log.Fatalf("failed to unmarshal embedded python queries: %v", err)
	}

	return &CryptoExtractor{Cache: cache, queries: queries}
}

// AnalyzeProject walks the project under rootDir, classifies every Python
// file, resolves internal dependencies of the relevant ones and collects all
// crypto-related fragments. Per-file read and parse failures are reported and
// recovered locally; only a run that finds nothing relevant fails, with
// ErrNoCryptoCode.
func (extractor *CryptoExtractor) AnalyzeProject(rootDir string) (*models.EncryptionCorpus, error) {
	projectName := filepath.Base(rootDir)
	fmt.Println(lipgloss.Info.Render(fmt.Sprintf("🔍 Analyzing project: %s", projectName)))

	files, snapshot, err := extractor.discoverProjectFiles(rootDir)
	if err != nil {
		return nil, err
	}
	fmt.Printf("📁 Found %d Python files\n", len(files))

	if extractor.Cache != nil {
		if corpus, found := extractor.Cache.GetCorpus(rootDir, snapshot); found {
			fmt.Println(lipgloss.BlueSky.Render("⚡ Project unchanged, using cached analysis"))
			return corpus, nil
		}
	}

	extractor.modules = buildModuleIndex(files)

	for _, file := range files {
		if err := extractor.loadProjectFile(file); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("❌ %v", err)))
		}
	}

	var primaries []*ProjectFile
	for _, file := range files {
		if extractor.fileContainsCrypto(file) {
			primaries = append(primaries, file)
			fmt.Printf("✅ Found crypto-related file: %s\n", file.RelativePath)
		}
	}

	if len(primaries) == 0 {
		fmt.Println(lipgloss.Red.Render("❌ No crypto-related code found in project"))
		return nil, ErrNoCryptoCode
	}

	dependencies := extractor.resolveDependencies(primaries)

	corpus := models.NewEncryptionCorpus(projectName)
	for _, file := range primaries {
		fmt.Printf("🔎 Analyzing file: %s\n", file.RelativePath)
		extractor.collectFileFragments(file, false, corpus)
		corpus.PrimaryFiles = append(corpus.PrimaryFiles, file.RelativePath)
	}
	for _, file := range dependencies {
		fmt.Printf("🔎 Analyzing dependency: %s\n", file.RelativePath)
		extractor.collectFileFragments(file, true, corpus)
		corpus.HelperFiles = append(corpus.HelperFiles, file.RelativePath)
	}

	if extractor.Cache != nil {
		if err := extractor.Cache.SetCorpus(rootDir, corpus, snapshot); err != nil {
			log.Printf("Warning: failed to cache analysis result: %v", err)
		}
	}

	return corpus, nil
}

// GetCacheStats reports storage statistics for the extraction cache.
func (extractor *CryptoExtractor) GetCacheStats() (map[string]interface{}, error) {
	if extractor.Cache == nil {
		return nil, errors.New("cache is not enabled")
	}

	return extractor.Cache.GetStats()
}

// ClearCache removes all cached analysis results.
func (extractor *CryptoExtractor) ClearCache() error {
	if extractor.Cache == nil {
		return errors.New("cache is not enabled")
	}

	return extractor.Cache.Clear()
}
