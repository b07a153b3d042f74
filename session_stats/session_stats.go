package session_stats

import (
	"fmt"

	"github.com/kaiyuhsu/cipherlift/constants/lipgloss"
	"github.com/kaiyuhsu/cipherlift/crypto_extractor/models"
	"github.com/kaiyuhsu/cipherlift/session_stats/contracts"
)

// ExtractionStats implementation
type extractionStats struct {
	analyzedProjects int
	imports          int
	constants        int
	classes          int
	functions        int
	helperFunctions  int
}

// NewExtractionStats creates a new session stats accumulator
func NewExtractionStats() contracts.IExtractionStats {
	return &extractionStats{}
}

// Record accumulates one project's corpus counts into the session totals.
func (es *extractionStats) Record(corpus *models.EncryptionCorpus) {
	if corpus == nil {
		return
	}

	stats := corpus.Stats()
	es.analyzedProjects++
	es.imports += stats.Imports
	es.constants += stats.Constants
	es.classes += stats.Classes
	es.functions += stats.Functions
	es.helperFunctions += stats.HelperFunctions
}

func (es *extractionStats) DisplayStats() {
	statsInfo := fmt.Sprintf("Projects: %d - Imports: %d - Constants: %d - Classes: %d - Functions: %d - Helpers: %d",
		es.analyzedProjects, es.imports, es.constants, es.classes, es.functions, es.helperFunctions)

	statsBox := lipgloss.BoxStyle.Render(statsInfo)
	fmt.Println(statsBox)
}

func (es *extractionStats) GetCurrentCounts() (projects int, imports int, constants int, classes int, functions int, helpers int) {
	return es.analyzedProjects, es.imports, es.constants, es.classes, es.functions, es.helperFunctions
}

func (es *extractionStats) ClearStats() {
	es.analyzedProjects = 0
	es.imports = 0
	es.constants = 0
	es.classes = 0
	es.functions = 0
	es.helperFunctions = 0
}
