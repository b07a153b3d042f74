package security_scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kaiyuhsu/cipherlift/constants/lipgloss"
	"github.com/kaiyuhsu/cipherlift/security_scanner/contracts"
	"github.com/kaiyuhsu/cipherlift/utils"
)

// ScannerConfig selects the bandit binary and report format.
type ScannerConfig struct {
	Bin    string `mapstructure:"bin"`
	Format string `mapstructure:"format"`
}

// BanditScanner implements contracts.ISecurityScanner by shelling out to the
// bandit static analyzer.
type BanditScanner struct {
	config   *ScannerConfig
	executor *utils.CommandExecutor
}

// NewBanditScanner creates a scanner from an explicit config.
func NewBanditScanner(config *ScannerConfig) contracts.ISecurityScanner {
	return &BanditScanner{
		config:   config,
		executor: utils.NewCommandExecutor(),
	}
}

// Scan runs bandit recursively over targetDir and writes a report next to it,
// returning the report path. Bandit exits non-zero whenever it finds issues,
// so a run that still produced a report counts as success.
func (bs *BanditScanner) Scan(ctx context.Context, targetDir string) (string, error) {
	bin := bs.config.Bin
	if bin == "" {
		bin = "bandit"
	}

	format := bs.config.Format
	if format == "" {
		format = "html"
	}

	reportPath := filepath.Clean(targetDir) + "-bandit-report." + format

	err := bs.executor.ExecuteArgs(ctx, bin, "-r", targetDir, "-f", format, "-o", reportPath)
	if err != nil {
		if _, statErr := os.Stat(reportPath); statErr == nil {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("⚠️ Bandit reported findings, see %s", reportPath)))
			return reportPath, nil
		}
		return "", fmt.Errorf("bandit scan failed: %w", err)
	}

	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("🛡️ Bandit scan finished: %s", reportPath)))
	return reportPath, nil
}
