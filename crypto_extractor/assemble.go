package crypto_extractor

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/kaiyuhsu/cipherlift/constants/lipgloss"
	"github.com/kaiyuhsu/cipherlift/crypto_extractor/models"
)

var sectionDivider = "# " + strings.Repeat("=", 50)

// GenerateOracle renders the corpus into a single standalone Python file at
// outputPath, creating the output directory when needed. Given the same
// corpus it produces byte-identical output on every run.
func (extractor *CryptoExtractor) GenerateOracle(corpus *models.EncryptionCorpus, outputPath string) error {
	if corpus == nil {
		return errors.New("no encryption corpus to render")
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %v", err)
		}
	}

	if err := ioutil.WriteFile(outputPath, []byte(renderOracle(corpus)), 0644); err != nil {
		return fmt.Errorf("failed to write oracle file: %v", err)
	}

	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✅ Oracle file generated: %s", outputPath)))

	stats := corpus.Stats()
	fmt.Println("📊 Extraction summary:")
	fmt.Printf("   - Import statements: %d\n", stats.Imports)
	fmt.Printf("   - Constants: %d\n", stats.Constants)
	fmt.Printf("   - Classes: %d\n", stats.Classes)
	fmt.Printf("   - Functions: %d\n", stats.Functions)
	fmt.Printf("   - Helper functions: %d\n", stats.HelperFunctions)

	return nil
}

// renderOracle lays the corpus out in the fixed section order: header,
// imports, constants, helper functions, classes, functions, smoke test.
// Import buckets are sorted; every other section keeps discovery order.
func renderOracle(corpus *models.EncryptionCorpus) string {
	var lines []string

	lines = append(lines,
		"#!/usr/bin/env python3",
		`"""`,
		fmt.Sprintf("Encryption oracle extracted from %s", corpus.ProjectName),
		"Internal project imports are commented out and their code inlined below",
		`"""`,
		"",
	)

	standardImports, internalImports := corpus.SortedImports()

	if len(standardImports) > 0 {
		lines = append(lines, "# Standard library and third-party imports", sectionDivider)
		lines = append(lines, standardImports...)
		lines = append(lines, "")
	}

	if len(internalImports) > 0 {
		lines = append(lines, "# Internal project imports (code inlined below)", sectionDivider)
		lines = append(lines, internalImports...)
		lines = append(lines, "")
	}

	sections := []struct {
		header    string
		fragments []models.ExtractedFragment
	}{
		{"# Constant definitions", corpus.Constants},
		{"# Helper functions (from project dependencies)", corpus.HelperFunctions},
		{"# Main class definitions", corpus.Classes},
		{"# Main function definitions", corpus.Functions},
	}

	for _, section := range sections {
		if len(section.fragments) == 0 {
			continue
		}
		lines = append(lines, section.header, sectionDivider)
		for _, fragment := range section.fragments {
			lines = append(lines, fragment.Code, "")
		}
	}

	lines = append(lines, renderSmokeTest(corpus)...)

	return strings.Join(lines, "\n")
}

// renderSmokeTest emits the executable self-check appended to every oracle.
// When at least one class was extracted the stub instantiates the first
// discovered one and exercises its set_mode call.
func renderSmokeTest(corpus *models.EncryptionCorpus) []string {
	lines := []string{
		"# Smoke test",
		sectionDivider,
		"if __name__ == '__main__':",
		"    print('✅ Encryption oracle loaded')",
		"    ",
		"    # Try to create a cipher instance",
		"    try:",
		"        # Look for an available cipher class",
	}

	if len(corpus.Classes) > 0 {
		className := corpus.Classes[0].Name
		lines = append(lines,
			fmt.Sprintf("        cipher = %s()", className),
			fmt.Sprintf("        print('✅ %s instance created')", className),
			"        ",
			"        # Exercise ECB mode",
			"        cipher.set_mode('ECB')",
			"        print('✅ ECB mode set')",
		)
	} else {
		lines = append(lines, "        print('ℹ️ No cipher class found')")
	}

	lines = append(lines,
		"    except Exception as e:",
		"        print(f'⚠️ Smoke test error: {e}')",
	)

	return lines
}
