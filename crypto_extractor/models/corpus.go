package models

import (
	"sort"
	"strings"
	"time"
)

// InternalImportNote marks an import statement that was rewritten into a
// comment because the imported module's code is inlined in the oracle.
const InternalImportNote = "# internal project import, code inlined below"

// FragmentCategory tags the kind of declaration a fragment was taken from.
type FragmentCategory string

const (
	CategoryImport   FragmentCategory = "import"
	CategoryConstant FragmentCategory = "constant"
	CategoryFunction FragmentCategory = "function"
	CategoryClass    FragmentCategory = "class"
)

// ExtractedFragment is a contiguous, indentation-normalized span of source
// lines copied out of exactly one project file.
type ExtractedFragment struct {
	Category   FragmentCategory
	Name       string
	SourcePath string
	Code       string
	LineCount  int
}

// EncryptionCorpus aggregates everything the analysis pass extracted from one
// project. It is built incrementally and consumed exactly once by reassembly.
type EncryptionCorpus struct {
	ProjectName     string
	Imports         map[string]bool
	Constants       []ExtractedFragment
	HelperFunctions []ExtractedFragment
	Classes         []ExtractedFragment
	Functions       []ExtractedFragment
	PrimaryFiles    []string
	HelperFiles     []string
}

// NewEncryptionCorpus returns an empty corpus for the named project.
func NewEncryptionCorpus(projectName string) *EncryptionCorpus {
	return &EncryptionCorpus{
		ProjectName: projectName,
		Imports:     make(map[string]bool),
	}
}

// AddImport records a reconstructed import statement, deduplicated.
func (c *EncryptionCorpus) AddImport(stmt string) {
	if stmt == "" {
		return
	}
	c.Imports[stmt] = true
}

// SortedImports splits the import set into the standard/third-party bucket and
// the internal-marker bucket, each sorted lexicographically so rendering is
// deterministic regardless of traversal order.
func (c *EncryptionCorpus) SortedImports() (standard []string, internal []string) {
	for stmt := range c.Imports {
		if strings.Contains(stmt, InternalImportNote) {
			internal = append(internal, stmt)
		} else {
			standard = append(standard, stmt)
		}
	}
	sort.Strings(standard)
	sort.Strings(internal)
	return standard, internal
}

// Stats reports how many fragments of each kind the corpus holds.
func (c *EncryptionCorpus) Stats() CorpusStats {
	return CorpusStats{
		Imports:         len(c.Imports),
		Constants:       len(c.Constants),
		Classes:         len(c.Classes),
		Functions:       len(c.Functions),
		HelperFunctions: len(c.HelperFunctions),
	}
}

// CorpusStats carries the per-category extraction counters shown in the
// final summary.
type CorpusStats struct {
	Imports         int
	Constants       int
	Classes         int
	Functions       int
	HelperFunctions int
}

// ProjectSnapshot fingerprints the state of every source file under a project
// root at analysis time, used to decide whether a cached corpus is still valid.
type ProjectSnapshot struct {
	RootDir   string                  `json:"root_dir"`
	Timestamp time.Time               `json:"timestamp"`
	Files     map[string]FileSnapshot `json:"files"`
}

// FileSnapshot records the state of a single file.
type FileSnapshot struct {
	RelativePath string    `json:"relative_path"`
	ModTime      time.Time `json:"mod_time"`
	Size         int64     `json:"size"`
}

// Matches reports whether two snapshots cover the same file set with identical
// sizes and modification times.
func (s *ProjectSnapshot) Matches(other *ProjectSnapshot) bool {
	if s == nil || other == nil {
		return false
	}
	if len(s.Files) != len(other.Files) {
		return false
	}
	for path, file := range s.Files {
		otherFile, ok := other.Files[path]
		if !ok {
			return false
		}
		if file.Size != otherFile.Size || !file.ModTime.Equal(otherFile.ModTime) {
			return false
		}
	}
	return true
}
