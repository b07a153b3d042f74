package contracts

import (
	"github.com/kaiyuhsu/cipherlift/crypto_extractor/models"
)

type ICryptoExtractor interface {
	AnalyzeProject(rootDir string) (*models.EncryptionCorpus, error)
	GenerateOracle(corpus *models.EncryptionCorpus, outputPath string) error
	GetCacheStats() (map[string]interface{}, error)
	ClearCache() error
}
