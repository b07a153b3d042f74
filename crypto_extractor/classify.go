package crypto_extractor

import (
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
)

// encryptionKeywords drive the substring relevance checks. Every subject is
// lowercased before matching.
var encryptionKeywords = []string{
	"encrypt", "decrypt", "cipher", "aes", "des", "rsa", "md5",
	"sha", "hash", "crypto", "pad", "unpad", "pbkdf", "hmac",
	"crypt", "secret", "key", "iv", "nonce", "salt", "encode", "decode",
}

// cryptoLibraries mark well known cryptography packages. Import statements
// match them case-sensitively, raw file text matches them case-insensitively.
var cryptoLibraries = []string{
	"Crypto", "cryptography", "pycrypto", "pycryptodome",
	"hashlib", "hmac", "secrets", "base64",
}

// cryptoUsagePatterns catch function bodies that operate on crypto
// primitives even when the function name gives nothing away.
var cryptoUsagePatterns = []string{
	"aes.new", "cipher.", ".encrypt", ".decrypt", ".digest",
	".hexdigest", "hash", "crypto", "pbkdf", "hmac", "rsa", "key",
}

// isEncryptionRelated reports whether a name or code snippet contains any
// encryption keyword.
func isEncryptionRelated(name string) bool {
	if name == "" {
		return false
	}

	nameLower := strings.ToLower(name)
	for _, keyword := range encryptionKeywords {
		if strings.Contains(nameLower, keyword) {
			return true
		}
	}

	return false
}

// isCryptoLibrary reports whether a module name references a known
// cryptography library.
func isCryptoLibrary(moduleName string) bool {
	if moduleName == "" {
		return false
	}

	for _, library := range cryptoLibraries {
		if strings.Contains(moduleName, library) {
			return true
		}
	}

	return false
}

// isConstantName reports whether name is an upper-case constant name the way
// Python's str.isupper sees it: no lower-case characters and at least one
// upper-case one.
func isConstantName(name string) bool {
	hasUpper := false
	for _, r := range name {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}

	return hasUpper
}

// functionContainsCryptoOperations checks a function body for crypto usage
// patterns. When the body text cannot be reconstructed it falls back to the
// function name plus any top-level string literal statements.
func (extractor *CryptoExtractor) functionContainsCryptoOperations(file *ProjectFile, functionNode *sitter.Node) bool {
	source := functionNode.Content(file.Content)
	if source == "" {
		source = nodeFieldText(functionNode, "name", file.Content) + " " + bodyStringLiterals(file, functionNode)
	}

	sourceLower := strings.ToLower(source)
	for _, pattern := range cryptoUsagePatterns {
		if strings.Contains(sourceLower, pattern) {
			return true
		}
	}

	return false
}

// classContainsCryptoMethods reports whether any method nested anywhere
// inside the class satisfies the function relevance rule.
func (extractor *CryptoExtractor) classContainsCryptoMethods(file *ProjectFile, classNode *sitter.Node) bool {
	for _, functionNode := range extractor.querySubtree(classNode, "function") {
		name := nodeFieldText(functionNode, "name", file.Content)
		if isEncryptionRelated(name) || extractor.functionContainsCryptoOperations(file, functionNode) {
			return true
		}
	}

	return false
}

// assignmentContainsCryptoValues checks the reconstructed assignment text for
// encryption keywords.
func (extractor *CryptoExtractor) assignmentContainsCryptoValues(file *ProjectFile, assignmentNode *sitter.Node) bool {
	return isEncryptionRelated(assignmentNode.Content(file.Content))
}

// fileContainsCrypto decides whether a file is cryptography-relevant: raw
// text keyword match, raw text library match, or a relevant function or class
// somewhere in its tree.
func (extractor *CryptoExtractor) fileContainsCrypto(file *ProjectFile) bool {
	contentLower := strings.ToLower(string(file.Content))

	for _, keyword := range encryptionKeywords {
		if strings.Contains(contentLower, keyword) {
			return true
		}
	}

	for _, library := range cryptoLibraries {
		if strings.Contains(contentLower, strings.ToLower(library)) {
			return true
		}
	}

	for _, functionNode := range extractor.captureNodes(file, "function") {
		name := nodeFieldText(functionNode, "name", file.Content)
		if isEncryptionRelated(name) || extractor.functionContainsCryptoOperations(file, functionNode) {
			return true
		}
	}

	for _, classNode := range extractor.captureNodes(file, "class") {
		name := nodeFieldText(classNode, "name", file.Content)
		if isEncryptionRelated(name) || extractor.classContainsCryptoMethods(file, classNode) {
			return true
		}
	}

	return false
}

// bodyStringLiterals joins the text of every top-level string literal
// statement in a function body, docstrings included.
func bodyStringLiterals(file *ProjectFile, functionNode *sitter.Node) string {
	body := functionNode.ChildByFieldName("body")
	if body == nil {
		return ""
	}

	var literals []string
	for i := 0; i < int(body.NamedChildCount()); i++ {
		statement := body.NamedChild(i)
		if statement.Type() != "expression_statement" || statement.NamedChildCount() == 0 {
			continue
		}
		if expr := statement.NamedChild(0); expr.Type() == "string" {
			literals = append(literals, expr.Content(file.Content))
		}
	}

	return strings.Join(literals, " ")
}
