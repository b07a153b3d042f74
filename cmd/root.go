package cmd

import (
	"fmt"
	"github.com/kaiyuhsu/cipherlift/config"
	"github.com/kaiyuhsu/cipherlift/constants/lipgloss"
	"github.com/kaiyuhsu/cipherlift/crypto_extractor"
	contracts_extractor "github.com/kaiyuhsu/cipherlift/crypto_extractor/contracts"
	"github.com/kaiyuhsu/cipherlift/repo_fetcher"
	contracts_fetcher "github.com/kaiyuhsu/cipherlift/repo_fetcher/contracts"
	"github.com/kaiyuhsu/cipherlift/security_scanner"
	contracts_scanner "github.com/kaiyuhsu/cipherlift/security_scanner/contracts"
	"github.com/kaiyuhsu/cipherlift/session_stats"
	contracts_stats "github.com/kaiyuhsu/cipherlift/session_stats/contracts"
	"github.com/spf13/cobra"
	"os"
)

// RootDependencies holds the dependencies needed for the application
type RootDependencies struct {
	Config    *config.Config
	Cwd       string
	Extractor contracts_extractor.ICryptoExtractor
	Fetcher   contracts_fetcher.IRepoFetcher
	Scanner   contracts_scanner.ISecurityScanner
	Stats     contracts_stats.IExtractionStats
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cipherlift",
	Short: "cipherlift lifts encryption code out of python projects into standalone oracle files.",
	Long: `cipherlift analyzes a python project, finds the functions, classes, constants and imports
that participate in its encryption logic, and reassembles them into a single runnable
oracle file. It can also hunt GitHub for candidate projects, download them, scan them
with bandit and extract oracles from them in one session.`,
	Run: func(cmd *cobra.Command, args []string) {
		runRootCommand(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Initialize the flags for the root command
	config.InitFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("error executing command: %v", err)))
		os.Exit(1)
	}
}

func runRootCommand(cmd *cobra.Command) {
	// If the version flag is set, display the version and exit
	if versionFlag, _ := cmd.Flags().GetBool("version"); versionFlag {
		fmt.Println("cipherlift version", config.DefaultConfig.Version)
		return
	}

	_ = cmd.Help()
}

// handleRootCommand loads the configuration and wires the application dependencies.
func handleRootCommand(cmd *cobra.Command) *RootDependencies {
	rootDependencies := &RootDependencies{}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error getting current directory: %v", err)))
		return nil
	}
	rootDependencies.Cwd = cwd

	rootDependencies.Config = config.LoadConfigWithCache(cmd.Root(), cwd)

	rootDependencies.Extractor = crypto_extractor.NewCryptoExtractor(rootDependencies.Config.EnableCache)
	rootDependencies.Fetcher = repo_fetcher.NewGitHubFetcher(rootDependencies.Config.GitHubConfig)
	rootDependencies.Scanner = security_scanner.NewBanditScanner(rootDependencies.Config.ScannerConfig)
	rootDependencies.Stats = session_stats.NewExtractionStats()

	return rootDependencies
}
