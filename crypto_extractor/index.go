package crypto_extractor

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kaiyuhsu/cipherlift/constants/lipgloss"
	"github.com/kaiyuhsu/cipherlift/crypto_extractor/models"
	"github.com/kaiyuhsu/cipherlift/utils"
	sitter "github.com/smacker/go-tree-sitter"
)

// sourceExtension is the extension of the files the engine analyzes.
const sourceExtension = ".py"

// ProjectFile holds one discovered source file for the duration of an
// analysis run. Content is read exactly once; Tree stays nil when the file
// could not be read or parsed.
type ProjectFile struct {
	Path         string
	RelativePath string
	ModuleName   string
	Stem         string
	Content      []byte
	Lines        []string
	Tree         *sitter.Tree
}

// moduleIndex maps candidate module names (dotted relative path and bare file
// stem) to the owning project file. Built once, immutable afterwards.
type moduleIndex map[string]*ProjectFile

// discoverProjectFiles walks rootDir and returns every non-hidden source file
// in lexical traversal order, plus a snapshot of file sizes and modification
// times for cache validation. The root must exist and be a directory.
func (extractor *CryptoExtractor) discoverProjectFiles(rootDir string) ([]*ProjectFile, *models.ProjectSnapshot, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, nil, fmt.Errorf("project root is not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("project root %s is not a directory", rootDir)
	}

	// Retrieve user exclude patterns from .cipherlift-ignore, if present
	excludePatterns, err := utils.GetExcludePatterns(rootDir)
	if err != nil {
		return nil, nil, err
	}

	var files []*ProjectFile
	snapshot := &models.ProjectSnapshot{
		RootDir:   rootDir,
		Timestamp: time.Now(),
		Files:     make(map[string]models.FileSnapshot),
	}

	err = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == rootDir {
			return nil
		}

		relativePath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return err
		}
		relativePath = strings.ReplaceAll(relativePath, "\\", "/")

		// Hidden entries and ignored directories are skipped wholesale
		if utils.IsHidden(d.Name()) || utils.IsDefaultIgnored(relativePath) || utils.IsExcluded(relativePath, excludePatterns) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !strings.HasSuffix(d.Name(), sourceExtension) {
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to get file info: %s, error: %w", relativePath, err)
		}

		moduleName := strings.ReplaceAll(strings.TrimSuffix(relativePath, sourceExtension), "/", ".")
		files = append(files, &ProjectFile{
			Path:         path,
			RelativePath: relativePath,
			ModuleName:   moduleName,
			Stem:         strings.TrimSuffix(d.Name(), sourceExtension),
		})

		snapshot.Files[relativePath] = models.FileSnapshot{
			RelativePath: relativePath,
			ModTime:      fileInfo.ModTime(),
			Size:         fileInfo.Size(),
		}

		return nil
	})

	if err != nil {
		return nil, nil, err
	}

	return files, snapshot, nil
}

// buildModuleIndex registers every file under its dotted module path and its
// bare stem. When two files share a name the first discovered file wins;
// WalkDir traverses in lexical order, so the outcome is deterministic.
func buildModuleIndex(files []*ProjectFile) moduleIndex {
	index := make(moduleIndex, len(files)*2)
	for _, file := range files {
		registerModuleName(index, file.ModuleName, file)
		registerModuleName(index, file.Stem, file)
		fmt.Println(fmt.Sprintf("📝 Mapped module: %s -> %s", file.Stem, file.RelativePath))
	}
	return index
}

func registerModuleName(index moduleIndex, name string, file *ProjectFile) {
	if existing, ok := index[name]; ok {
		if existing != file {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("⚠️ Module name %s already maps to %s, keeping it over %s", name, existing.RelativePath, file.RelativePath)))
		}
		return
	}
	index[name] = file
}
