package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/kaiyuhsu/cipherlift/constants/lipgloss"
	"github.com/kaiyuhsu/cipherlift/crypto_extractor"
	"github.com/kaiyuhsu/cipherlift/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"io/ioutil"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

// searchResultsFile keeps the raw code search hits next to the downloads for later inspection.
const searchResultsFile = "search_results.json"

// huntCmd: cipherlift hunt
var huntCmd = &cobra.Command{
	Use:   "hunt",
	Short: "Hunt GitHub for python encryption code and lift oracles from the matching repositories.",
	Long: `The 'hunt' subcommand searches GitHub code for the configured encryption query and walks
the matching repositories one by one within a session: download the repository archive,
optionally scan it with bandit, extract an encryption oracle from the downloaded code and
drive the exploiter script against the freshly generated oracle.`,
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		if rootDependencies == nil {
			return
		}
		handleHuntCommand(rootDependencies)
	},
}

func init() {
	rootCmd.AddCommand(huntCmd)
}

func handleHuntCommand(rootDependencies *RootDependencies) {

	// Create a context with cancel function
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go utils.GracefulShutdown(ctx, cancel, func() {
		rootDependencies.Stats.ClearStats()
	})

	reader := bufio.NewReader(os.Stdin)

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").WithDelay(100).WithRemoveWhenDone(true)

	query := rootDependencies.Config.GitHubConfig.SearchQuery
	fmt.Println(lipgloss.Info.Render(fmt.Sprintf("🔍 Searching GitHub code: %s", query)))

	spinnerSearch, _ := spinner.Start("Searching GitHub for encryption code...")

	hits, err := rootDependencies.Fetcher.SearchCode(ctx, query)

	spinnerSearch.Stop()
	fmt.Print("\r")

	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	if len(hits) == 0 {
		fmt.Println(lipgloss.Yellow.Render("No repositories matched the search query."))
		return
	}

	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✅ Found %d matching results", len(hits))))

	if resultsJSON, err := json.MarshalIndent(hits, "", "    "); err == nil {
		if err := ioutil.WriteFile(searchResultsFile, resultsJSON, 0644); err != nil {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("⚠️ Could not save search results: %v", err)))
		} else {
			fmt.Println(lipgloss.Green.Render(fmt.Sprintf("📝 Search results saved to %s", searchResultsFile)))
		}
	}

	executor := utils.NewCommandExecutor()

	for index, hit := range hits {
		select {
		case <-ctx.Done():
			// Wait for GracefulShutdown to complete
			return
		default:
		}

		resultBox := lipgloss.BoxStyle.Render(fmt.Sprintf("Result %d of %d\nRepository: %s\nFile: %s\nURL: %s", index+1, len(hits), hit.Repository, hit.Path, hit.HTMLURL))
		fmt.Println(resultBox)

		download, err := utils.ConfirmPrompt(ctx, reader, "Download this repository?")
		if err != nil {
			if err == context.Canceled {
				fmt.Println(lipgloss.Yellow.Render("\n🔄 Exiting..."))
				return
			}
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
			continue
		}

		if download {
			huntRepository(ctx, rootDependencies, executor, reader, hit.Repository)
		}

		keepGoing, err := utils.ConfirmPrompt(ctx, reader, "Continue to the next result?")
		if err != nil {
			if err == context.Canceled {
				fmt.Println(lipgloss.Yellow.Render("\n🔄 Exiting..."))
				return
			}
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
			continue
		}

		if !keepGoing {
			break
		}
	}

	rootDependencies.Stats.DisplayStats()
}

// huntRepository downloads a single repository, optionally scans it with bandit
// and lifts an encryption oracle out of the downloaded code.
func huntRepository(ctx context.Context, rootDependencies *RootDependencies, executor *utils.CommandExecutor, reader *bufio.Reader, fullName string) {

	downloadDir := filepath.Join(rootDependencies.Config.GitHubConfig.DownloadDir, strings.ReplaceAll(fullName, "/", "_"))

	zipPath, err := rootDependencies.Fetcher.DownloadRepository(ctx, fullName, downloadDir)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error downloading repository: %v", err)))
		return
	}

	projectPath, err := rootDependencies.Fetcher.ExtractArchive(zipPath, downloadDir)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error extracting archive: %v", err)))
		return
	}

	runScan, err := utils.ConfirmPrompt(ctx, reader, "Run a bandit security scan?")
	if err != nil {
		if err == context.Canceled {
			return
		}
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	if runScan {
		if _, err := rootDependencies.Scanner.Scan(ctx, projectPath); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		}
	}

	corpus, err := rootDependencies.Extractor.AnalyzeProject(projectPath)
	if err != nil {
		if errors.Is(err, crypto_extractor.ErrNoCryptoCode) {
			fmt.Println(lipgloss.Yellow.Render("Nothing to extract, moving on."))
			return
		}
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	outputPath := rootDependencies.Config.OutputPath
	if err := rootDependencies.Extractor.GenerateOracle(corpus, outputPath); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	rootDependencies.Stats.Record(corpus)

	runExploiterLoop(ctx, rootDependencies, executor, reader)
}

// runExploiterLoop feeds user supplied plaintexts to the exploiter script until an empty line is entered.
func runExploiterLoop(ctx context.Context, rootDependencies *RootDependencies, executor *utils.CommandExecutor, reader *bufio.Reader) {

	exploiterScript := rootDependencies.Config.ExploiterScript
	if exploiterScript == "" {
		return
	}

	if _, err := os.Stat(exploiterScript); err != nil {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("⚠️ Exploiter script not found: %s", exploiterScript)))
		return
	}

	fmt.Println(lipgloss.Info.Render("⚡ Starting exploiter, enter a plaintext (empty line to finish)"))

	for {
		plaintext, err := utils.InputPromptWithContext(ctx, reader)
		if err != nil {
			if err == context.Canceled {
				return
			}
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
			continue
		}

		if plaintext == "" {
			fmt.Println(lipgloss.Green.Render("✅ Exploiter session finished"))
			return
		}

		if err := executor.ExecuteArgs(ctx, "python", exploiterScript, "demo", "--plaintext", plaintext); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error running exploiter: %v", err)))
		}
	}
}
