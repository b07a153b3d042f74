package contracts

import (
	"github.com/kaiyuhsu/cipherlift/crypto_extractor/models"
)

type IExtractionStats interface {
	Record(corpus *models.EncryptionCorpus)
	DisplayStats()
	GetCurrentCounts() (projects int, imports int, constants int, classes int, functions int, helpers int)
	ClearStats()
}
