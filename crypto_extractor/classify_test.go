package crypto_extractor

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test keyword matching on identifiers and arbitrary text.
func TestClassify_IsEncryptionRelated(t *testing.T) {
	assert.True(t, isEncryptionRelated("encrypt_data"))
	assert.True(t, isEncryptionRelated("AESCipher"))
	assert.True(t, isEncryptionRelated("build_hmac_digest"))
	assert.True(t, isEncryptionRelated("KEY_SIZE = 16"))

	// substring matching is deliberately loose, "iv" hides inside "derive"
	assert.True(t, isEncryptionRelated("derive_token"))

	assert.False(t, isEncryptionRelated("main"))
	assert.False(t, isEncryptionRelated("run_report"))
	assert.False(t, isEncryptionRelated(""))
}

// Test library name matching, which is case sensitive unlike keyword matching.
func TestClassify_IsCryptoLibrary(t *testing.T) {
	assert.True(t, isCryptoLibrary("Crypto"))
	assert.True(t, isCryptoLibrary("Crypto.Cipher"))
	assert.True(t, isCryptoLibrary("cryptography.hazmat"))
	assert.True(t, isCryptoLibrary("hashlib"))
	assert.True(t, isCryptoLibrary("base64"))

	// lowercase "crypto" is not the PyCrypto package name
	assert.False(t, isCryptoLibrary("crypto"))
	assert.False(t, isCryptoLibrary("json"))
	assert.False(t, isCryptoLibrary(""))
}

// Test the uppercase-only heuristic for constant names.
func TestClassify_IsConstantName(t *testing.T) {
	assert.True(t, isConstantName("KEY_SIZE"))
	assert.True(t, isConstantName("BLOCK_SIZE"))
	assert.True(t, isConstantName("A"))
	assert.True(t, isConstantName("MODE_ECB"))

	assert.False(t, isConstantName("Key"))
	assert.False(t, isConstantName("key_size"))
	assert.False(t, isConstantName("_"))
	assert.False(t, isConstantName("__all__"))
}

// Test crypto detection inside function bodies, including methods whose names
// give nothing away.
func TestClassify_FunctionContainsCryptoOperations(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "classify_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	extractor := newTestExtractor(t)
	file := loadTestFile(t, extractor, tempDir, "ops.py", `def checksum(data):
    return data.digest()


def plain(data):
    return data + 1
`)

	functions := extractor.captureNodes(file, "function")
	require.Len(t, functions, 2)

	assert.True(t, extractor.functionContainsCryptoOperations(file, functions[0]))
	assert.False(t, extractor.functionContainsCryptoOperations(file, functions[1]))
}

// Test that a class is relevant when any method at any depth touches crypto.
func TestClassify_ClassContainsCryptoMethods(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "classify_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	extractor := newTestExtractor(t)
	file := loadTestFile(t, extractor, tempDir, "nested.py", `class Outer:
    class Inner:
        def rotate(self, data):
            return data.hexdigest()


class Bare:
    def run(self):
        return 1
`)

	classes := extractor.captureNodes(file, "class")
	require.Len(t, classes, 3)

	assert.True(t, extractor.classContainsCryptoMethods(file, classes[0]))
	assert.False(t, extractor.classContainsCryptoMethods(file, classes[2]))
}

// Test value-side matching for assignments whose target name is neutral.
func TestClassify_AssignmentContainsCryptoValues(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "classify_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	extractor := newTestExtractor(t)
	file := loadTestFile(t, extractor, tempDir, "values.py", `BLOCK = AES.block_size
LIMIT = 10
`)

	assignments := extractor.captureNodes(file, "assignment")
	require.Len(t, assignments, 2)

	assert.True(t, extractor.assignmentContainsCryptoValues(file, assignments[0]))
	assert.False(t, extractor.assignmentContainsCryptoValues(file, assignments[1]))
}

// Test file level detection across its three tiers: raw keywords, library
// names and syntax tree inspection.
func TestClassify_FileContainsCrypto(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "classify_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	extractor := newTestExtractor(t)

	keywordFile := loadTestFile(t, extractor, tempDir, "keyword.py", "def encrypt_data(data):\n    return data\n")
	assert.True(t, extractor.fileContainsCrypto(keywordFile))

	libraryFile := loadTestFile(t, extractor, tempDir, "library.py", "import hashlib\n\n\ndef noop():\n    pass\n")
	assert.True(t, extractor.fileContainsCrypto(libraryFile))

	// ".digest" is the one signal with no raw-text keyword, it only shows up
	// through the function body scan
	treeFile := loadTestFile(t, extractor, tempDir, "tree.py", "def checksum(data):\n    return data.digest()\n")
	assert.True(t, extractor.fileContainsCrypto(treeFile))

	plainFile := loadTestFile(t, extractor, tempDir, "plain.py", utilsSource)
	assert.False(t, extractor.fileContainsCrypto(plainFile))
}

// Test docstring collection from a function body.
func TestClassify_BodyStringLiterals(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "classify_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	extractor := newTestExtractor(t)
	file := loadTestFile(t, extractor, tempDir, "doc.py", `def mix(data):
    """Apply the rounds."""
    return data
`)

	functions := extractor.captureNodes(file, "function")
	require.Len(t, functions, 1)

	literals := bodyStringLiterals(file, functions[0])
	assert.Contains(t, literals, "Apply the rounds.")
}
