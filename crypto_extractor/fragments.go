package crypto_extractor

import (
	"github.com/kaiyuhsu/cipherlift/crypto_extractor/models"
	sitter "github.com/smacker/go-tree-sitter"
)

// collectFileFragments pulls every relevant fragment out of one file into the
// corpus. Functions found in dependency files become helper functions;
// classes and constants land in the same buckets regardless of origin. Files
// without a tree contribute nothing.
func (extractor *CryptoExtractor) collectFileFragments(file *ProjectFile, isDependency bool, corpus *models.EncryptionCorpus) {
	if file.Tree == nil {
		return
	}

	extractor.collectImports(file, corpus)

	functions := extractor.collectFunctions(file)
	if isDependency {
		corpus.HelperFunctions = append(corpus.HelperFunctions, functions...)
	} else {
		corpus.Functions = append(corpus.Functions, functions...)
	}

	corpus.Classes = append(corpus.Classes, extractor.collectClasses(file)...)
	corpus.Constants = append(corpus.Constants, extractor.collectConstants(file)...)
}

// collectFunctions extracts every relevant function definition in document
// order, methods included. A method lifted this way is deliberately
// duplicated outside its class so it stays callable on its own.
func (extractor *CryptoExtractor) collectFunctions(file *ProjectFile) []models.ExtractedFragment {
	var fragments []models.ExtractedFragment

	for _, functionNode := range extractor.captureNodes(file, "function") {
		name := nodeFieldText(functionNode, "name", file.Content)
		if isEncryptionRelated(name) || extractor.functionContainsCryptoOperations(file, functionNode) {
			fragments = append(fragments, extractor.extractFragment(file, functionNode, models.CategoryFunction, name))
		}
	}

	return fragments
}

// collectClasses extracts every relevant class definition in document order.
func (extractor *CryptoExtractor) collectClasses(file *ProjectFile) []models.ExtractedFragment {
	var fragments []models.ExtractedFragment

	for _, classNode := range extractor.captureNodes(file, "class") {
		name := nodeFieldText(classNode, "name", file.Content)
		if isEncryptionRelated(name) || extractor.classContainsCryptoMethods(file, classNode) {
			fragments = append(fragments, extractor.extractFragment(file, classNode, models.CategoryClass, name))
		}
	}

	return fragments
}

// collectConstants extracts module-level constant assignments. An assignment
// qualifies when it sits directly at module scope, targets an upper-case
// name, and either the name or the assignment text carries a crypto keyword.
// Annotated assignments are left alone.
func (extractor *CryptoExtractor) collectConstants(file *ProjectFile) []models.ExtractedFragment {
	var fragments []models.ExtractedFragment

	for _, assignmentNode := range extractor.captureNodes(file, "assignment") {
		if !isModuleLevel(assignmentNode) || assignmentNode.ChildByFieldName("type") != nil {
			continue
		}

		for _, target := range assignmentTargets(assignmentNode, file.Content) {
			if !isConstantName(target) {
				continue
			}
			if isEncryptionRelated(target) || extractor.assignmentContainsCryptoValues(file, assignmentNode) {
				fragments = append(fragments, extractor.extractFragment(file, assignmentNode, models.CategoryConstant, target))
			}
		}
	}

	return fragments
}

// assignmentTargets walks a chained assignment and returns every simple
// identifier target, so A = B = value has both names tested.
func assignmentTargets(assignmentNode *sitter.Node, source []byte) []string {
	var targets []string

	for node := assignmentNode; node != nil && node.Type() == "assignment"; {
		if left := node.ChildByFieldName("left"); left != nil && left.Type() == "identifier" {
			targets = append(targets, left.Content(source))
		}
		node = node.ChildByFieldName("right")
	}

	return targets
}
