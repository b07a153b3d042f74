package crypto_extractor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kaiyuhsu/cipherlift/crypto_extractor/models"
	sitter "github.com/smacker/go-tree-sitter"
)

// standardCarryModules are standard library modules carried into the oracle
// even without a crypto signal of their own, they keep extracted code
// runnable.
var standardCarryModules = map[string]bool{
	"os":        true,
	"sys":       true,
	"struct":    true,
	"socket":    true,
	"threading": true,
	"time":      true,
	"unittest":  true,
	"filecmp":   true,
}

// collectImports reconstructs one canonical import line per imported alias
// and keeps the lines worth carrying into the oracle.
func (extractor *CryptoExtractor) collectImports(file *ProjectFile, corpus *models.EncryptionCorpus) {
	for _, node := range extractor.captureNodes(file, "import") {
		extractor.collectPlainImport(file, node, corpus)
	}

	for _, node := range extractor.captureNodes(file, "import_from") {
		extractor.collectFromImport(file, node, corpus)
	}
}

// collectPlainImport handles `import a.b as c, d` statements. A plain import
// is kept when the module is a crypto library, keyword-relevant, or one of
// the carried standard library modules.
func (extractor *CryptoExtractor) collectPlainImport(file *ProjectFile, node *sitter.Node, corpus *models.EncryptionCorpus) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		moduleName, alias := importedName(node.NamedChild(i), file.Content)
		if moduleName == "" {
			continue
		}

		if !isCryptoLibrary(moduleName) && !isEncryptionRelated(moduleName) && !standardCarryModules[moduleName] {
			continue
		}

		statement := "import " + moduleName
		if alias != "" {
			statement += " as " + alias
		}

		if _, internal := extractor.modules[firstSegment(moduleName)]; internal {
			statement = markInternalImport(statement)
		}

		corpus.AddImport(statement)
	}
}

// collectFromImport handles `from mod import a as b, c` statements, wildcard
// imports included. Project-internal imports are always kept, commented out
// so they never execute in the oracle.
func (extractor *CryptoExtractor) collectFromImport(file *ProjectFile, node *sitter.Node, corpus *models.EncryptionCorpus) {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return
	}

	moduleText := moduleNode.Content(file.Content)
	moduleName := strings.TrimLeft(moduleText, ".")
	_, internal := extractor.modules[moduleName]

	for _, nameNode := range importedNameNodes(node) {
		name, alias := importedName(nameNode, file.Content)
		if name == "" {
			continue
		}

		if !isCryptoLibrary(moduleName) && !isEncryptionRelated(name) && !isEncryptionRelated(moduleName) &&
			!standardCarryModules[moduleName] && !internal {
			continue
		}

		statement := "from " + moduleText + " import " + name
		if alias != "" {
			statement += " as " + alias
		}

		if internal {
			statement = markInternalImport(statement)
		}

		corpus.AddImport(statement)
	}
}

// importedNameNodes returns the name nodes following the `import` keyword of
// an import_from_statement.
func importedNameNodes(node *sitter.Node) []*sitter.Node {
	var names []*sitter.Node

	pastImportKeyword := false
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if !child.IsNamed() {
			if child.Type() == "import" {
				pastImportKeyword = true
			}
			continue
		}
		if pastImportKeyword {
			names = append(names, child)
		}
	}

	return names
}

// importedName resolves one imported entry to its module or symbol name plus
// an optional alias.
func importedName(node *sitter.Node, source []byte) (string, string) {
	switch node.Type() {
	case "aliased_import":
		return nodeFieldText(node, "name", source), nodeFieldText(node, "alias", source)
	case "wildcard_import":
		return "*", ""
	default:
		return node.Content(source), ""
	}
}

// markInternalImport comments out an import of project-internal code so the
// reassembled file never tries to resolve it.
func markInternalImport(statement string) string {
	return "# " + statement + "  " + models.InternalImportNote
}

// resolveDependencies scans the primary files' imports and returns every
// project file they reference that is not itself primary. Resolution is
// single-hop: imports of dependency files are not followed. The result is
// ordered by relative path so downstream processing stays deterministic.
func (extractor *CryptoExtractor) resolveDependencies(primaries []*ProjectFile) []*ProjectFile {
	primarySet := make(map[*ProjectFile]bool, len(primaries))
	for _, file := range primaries {
		primarySet[file] = true
	}

	dependencySet := make(map[*ProjectFile]bool)
	for _, file := range primaries {
		for _, node := range extractor.captureNodes(file, "import_from") {
			moduleNode := node.ChildByFieldName("module_name")
			if moduleNode == nil {
				continue
			}
			moduleName := strings.TrimLeft(moduleNode.Content(file.Content), ".")
			extractor.recordDependency(moduleName, primarySet, dependencySet)
		}

		for _, node := range extractor.captureNodes(file, "import") {
			for i := 0; i < int(node.NamedChildCount()); i++ {
				moduleName, _ := importedName(node.NamedChild(i), file.Content)
				extractor.recordDependency(firstSegment(moduleName), primarySet, dependencySet)
			}
		}
	}

	dependencies := make([]*ProjectFile, 0, len(dependencySet))
	for file := range dependencySet {
		dependencies = append(dependencies, file)
	}
	sort.Slice(dependencies, func(i, j int) bool {
		return dependencies[i].RelativePath < dependencies[j].RelativePath
	})

	return dependencies
}

func (extractor *CryptoExtractor) recordDependency(moduleName string, primarySet, dependencySet map[*ProjectFile]bool) {
	if moduleName == "" {
		return
	}

	dependencyFile, ok := extractor.modules[moduleName]
	if !ok || primarySet[dependencyFile] || dependencySet[dependencyFile] {
		return
	}

	dependencySet[dependencyFile] = true
	fmt.Printf("🔗 Found dependency: %s -> %s\n", moduleName, dependencyFile.RelativePath)
}

func firstSegment(moduleName string) string {
	if i := strings.Index(moduleName, "."); i >= 0 {
		return moduleName[:i]
	}

	return moduleName
}
