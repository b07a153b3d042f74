package crypto_extractor

import (
	"fmt"
	"io/ioutil"
	"log"
	"strings"

	"github.com/kaiyuhsu/cipherlift/constants/lipgloss"
	"github.com/kaiyuhsu/cipherlift/crypto_extractor/models"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// loadProjectFile reads a file's content exactly once and parses it with
// Tree-sitter. A file whose parse fails keeps its raw text with a nil tree so
// text-only relevance matching still applies to it.
func (extractor *CryptoExtractor) loadProjectFile(file *ProjectFile) error {
	content, err := ioutil.ReadFile(file.Path)
	if err != nil {
		return fmt.Errorf("failed to read file: %s, error: %w", file.RelativePath, err)
	}

	file.Content = content
	file.Lines = strings.Split(string(content), "\n")

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree := parser.Parse(nil, content)
	if tree == nil || tree.RootNode() == nil || tree.RootNode().HasError() {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("⚠️ Warning: failed to parse %s, using text matching only", file.RelativePath)))
		file.Tree = nil
		return nil
	}

	file.Tree = tree
	return nil
}

// captureNodes runs the embedded query registered under tag against the
// file's tree and returns the captured nodes in document order. Files without
// a tree yield nothing.
func (extractor *CryptoExtractor) captureNodes(file *ProjectFile, tag string) []*sitter.Node {
	if file.Tree == nil {
		return nil
	}

	return extractor.querySubtree(file.Tree.RootNode(), tag)
}

// querySubtree runs the query registered under tag against one subtree.
func (extractor *CryptoExtractor) querySubtree(root *sitter.Node, tag string) []*sitter.Node {
	queryStr, ok := extractor.queries[tag]
	if !ok {
		return nil
	}

	query, err := sitter.NewQuery([]byte(queryStr), python.GetLanguage())
	if err != nil {
		log.Fatalf("failed to compile query: %v", err)
	}

	cursor := sitter.NewQueryCursor()
	cursor.Exec(query, root)

	var nodes []*sitter.Node
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, capture := range match.Captures {
			nodes = append(nodes, capture.Node)
		}
	}

	return nodes
}

// nodeFieldText returns the text of a named field child, or "" when the field
// is absent.
func nodeFieldText(node *sitter.Node, field string, source []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}

	return child.Content(source)
}

// isModuleLevel reports whether a node sits directly at module scope, with no
// enclosing function or class body. The parser's parent links give each node
// a single authoritative ancestry, so one upward walk settles the question.
func isModuleLevel(node *sitter.Node) bool {
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		switch parent.Type() {
		case "function_definition", "class_definition":
			return false
		}
	}

	return true
}

// extractFragment lifts a node's whole-line span out of its file and
// normalizes the indentation so the fragment can live at module level.
func (extractor *CryptoExtractor) extractFragment(file *ProjectFile, node *sitter.Node, category models.FragmentCategory, name string) models.ExtractedFragment {
	startLine, endLine := nodeSpan(node)
	code := extractNodeCode(file.Lines, startLine, endLine, true)

	return models.ExtractedFragment{
		Category:   category,
		Name:       name,
		SourcePath: file.RelativePath,
		Code:       code,
		LineCount:  strings.Count(code, "\n") + 1,
	}
}

// nodeSpan returns a node's zero-based start and end lines.
func nodeSpan(node *sitter.Node) (int, int) {
	return int(node.StartPoint().Row), int(node.EndPoint().Row)
}

// extractNodeCode copies whole source lines from startLine through endLine,
// both zero-based and inclusive. When endLine is negative the extent is
// computed by the indentation rule: the span continues while lines are blank
// or more indented than the first line.
func extractNodeCode(lines []string, startLine, endLine int, fixIndentation bool) string {
	if startLine < 0 || startLine >= len(lines) {
		return ""
	}

	if endLine < 0 {
		endLine = startLine
		baseIndent := indentWidth(lines[startLine])
		for i := startLine + 1; i < len(lines); i++ {
			line := lines[i]
			if strings.TrimSpace(line) != "" && indentWidth(line) <= baseIndent {
				break
			}
			endLine = i
		}
	}

	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}

	extracted := strings.Join(lines[startLine:endLine+1], "\n")
	if fixIndentation {
		extracted = fixCodeIndentation(extracted)
	}

	return extracted
}

// fixCodeIndentation strips the first non-blank line's indentation width from
// every line. Non-blank lines shorter than that width lose all leading
// whitespace instead, so a malformed fragment never slices out of range.
func fixCodeIndentation(code string) string {
	lines := strings.Split(code, "\n")

	firstLineIndent := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			firstLineIndent = indentWidth(line)
			break
		}
	}

	fixed := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			fixed = append(fixed, "")
			continue
		}
		if len(line) >= firstLineIndent {
			fixed = append(fixed, line[firstLineIndent:])
		} else {
			fixed = append(fixed, strings.TrimLeft(line, " \t"))
		}
	}

	return strings.Join(fixed, "\n")
}

func indentWidth(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
