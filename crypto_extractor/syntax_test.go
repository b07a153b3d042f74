package crypto_extractor

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/kaiyuhsu/cipherlift/crypto_extractor/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test loading and parsing a well formed source file.
func TestSyntax_LoadProjectFile(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "syntax_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	extractor := newTestExtractor(t)
	file := loadTestFile(t, extractor, tempDir, "cipher.py", cipherSource)

	assert.Equal(t, []byte(cipherSource), file.Content)
	assert.NotNil(t, file.Tree)
	assert.Len(t, file.Lines, 22)
}

// Test that a syntax error downgrades the file to text-only matching instead
// of failing the load.
func TestSyntax_LoadProjectFile_ParseError(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "syntax_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	extractor := newTestExtractor(t)
	path := writeProjectFile(t, tempDir, "broken.py", "def broken(:\n    return (\n")

	file := &ProjectFile{Path: path, RelativePath: "broken.py", ModuleName: "broken", Stem: "broken"}
	require.NoError(t, extractor.loadProjectFile(file))

	assert.Nil(t, file.Tree)
	assert.NotEmpty(t, file.Content)
	assert.Nil(t, extractor.captureNodes(file, "function"))
}

// Test the error path for an unreadable file.
func TestSyntax_LoadProjectFile_MissingFile(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "syntax_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	extractor := newTestExtractor(t)
	file := &ProjectFile{
		Path:         filepath.Join(tempDir, "missing.py"),
		RelativePath: "missing.py",
	}

	err = extractor.loadProjectFile(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

// Test node spans and module-level detection on captured nodes.
func TestSyntax_NodeSpanAndModuleLevel(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "syntax_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	extractor := newTestExtractor(t)
	file := loadTestFile(t, extractor, tempDir, "span.py", `TOP = 1


def wrapper():
    INNER = 2
`)

	assignments := extractor.captureNodes(file, "assignment")
	require.Len(t, assignments, 2)

	startLine, endLine := nodeSpan(assignments[0])
	assert.Equal(t, 0, startLine)
	assert.Equal(t, 0, endLine)

	assert.True(t, isModuleLevel(assignments[0]))
	assert.False(t, isModuleLevel(assignments[1]))

	functions := extractor.captureNodes(file, "function")
	require.Len(t, functions, 1)
	startLine, endLine = nodeSpan(functions[0])
	assert.Equal(t, 3, startLine)
	assert.Equal(t, 4, endLine)
}

// Test line extraction with explicit spans, clamped spans and the
// indentation-driven extent used when the end line is unknown.
func TestSyntax_ExtractNodeCode(t *testing.T) {
	lines := []string{"def f():", "    a = 1", "", "    b = 2", "x = 3"}

	assert.Equal(t, "def f():\n    a = 1", extractNodeCode(lines, 0, 1, false))
	assert.Equal(t, "    b = 2\nx = 3", extractNodeCode(lines, 3, 99, false))
	assert.Equal(t, "", extractNodeCode(lines, 9, 9, false))
	assert.Equal(t, "", extractNodeCode(lines, -1, 2, false))

	// negative end line: follow blank and deeper-indented lines, stop at the
	// first line back at the base indent
	assert.Equal(t, "def f():\n    a = 1\n\n    b = 2", extractNodeCode(lines, 0, -1, false))

	assert.Equal(t, "a = 1", extractNodeCode(lines, 1, 1, true))
}

// Test indentation normalization, including lines shorter than the base indent.
func TestSyntax_FixCodeIndentation(t *testing.T) {
	code := "        alpha = 1\n            beta = 2\n\n    x"
	fixed := fixCodeIndentation(code)
	assert.Equal(t, "alpha = 1\n    beta = 2\n\nx", fixed)

	assert.Equal(t, "plain", fixCodeIndentation("plain"))
	assert.Equal(t, "", fixCodeIndentation(""))
}

// Test fragment extraction end to end on a parsed method.
func TestSyntax_ExtractFragment(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "syntax_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	extractor := newTestExtractor(t)
	file := loadTestFile(t, extractor, tempDir, "frag.py", `class Box:
    def encrypt(self, data):
        return data
`)

	functions := extractor.captureNodes(file, "function")
	require.Len(t, functions, 1)

	fragment := extractor.extractFragment(file, functions[0], models.CategoryFunction, "encrypt")
	assert.Equal(t, models.CategoryFunction, fragment.Category)
	assert.Equal(t, "encrypt", fragment.Name)
	assert.Equal(t, "frag.py", fragment.SourcePath)
	assert.Equal(t, "def encrypt(self, data):\n    return data", fragment.Code)
	assert.Equal(t, 2, fragment.LineCount)
}
