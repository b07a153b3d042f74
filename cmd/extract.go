package cmd

import (
	"context"
	"errors"
	"fmt"
	"github.com/kaiyuhsu/cipherlift/constants/lipgloss"
	"github.com/kaiyuhsu/cipherlift/crypto_extractor"
	"github.com/kaiyuhsu/cipherlift/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"io/ioutil"
	"os/signal"
	"syscall"
)

// extractCmd: cipherlift extract
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract encryption related code from a python project into an oracle file.",
	Long: `The 'extract' subcommand analyzes a python project, collects every function, class,
constant and import that participates in its encryption logic, resolves the internal
modules those pieces depend on, and reassembles everything into a single standalone
oracle file that can be imported and exercised on its own.`,
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		if rootDependencies == nil {
			return
		}
		handleExtractCommand(rootDependencies, cmd)
	},
}

func init() {
	// Define command-specific flags
	extractCmd.Flags().StringP("path", "p", "", "Path of the python project to analyze (defaults to the current directory)")
	extractCmd.Flags().StringP("output", "o", "", "Path of the generated oracle file (overrides the configured output_path)")
	extractCmd.Flags().Bool("preview", false, "Render the generated oracle with syntax highlighting after extraction")

	rootCmd.AddCommand(extractCmd)
}

func handleExtractCommand(rootDependencies *RootDependencies, cmd *cobra.Command) {

	// Create a context with cancel function
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go utils.GracefulShutdown(ctx, cancel, func() {
		rootDependencies.Stats.ClearStats()
	})

	projectPath, _ := cmd.Flags().GetString("path")
	if projectPath == "" {
		projectPath = rootDependencies.Cwd
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = rootDependencies.Config.OutputPath
	}

	corpus, err := rootDependencies.Extractor.AnalyzeProject(projectPath)
	if err != nil {
		if errors.Is(err, crypto_extractor.ErrNoCryptoCode) {
			fmt.Println(lipgloss.Yellow.Render("Nothing to extract, try another project."))
			return
		}
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").WithDelay(100).WithRemoveWhenDone(true)

	spinnerGenerate, _ := spinner.Start("Generating oracle file...")

	err = rootDependencies.Extractor.GenerateOracle(corpus, outputPath)

	spinnerGenerate.Stop()
	fmt.Print("\r")

	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	rootDependencies.Stats.Record(corpus)
	rootDependencies.Stats.DisplayStats()

	if preview, _ := cmd.Flags().GetBool("preview"); preview {
		content, err := ioutil.ReadFile(outputPath)
		if err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error reading oracle file: %v", err)))
			return
		}

		if err := utils.RenderOraclePreview(ctx, string(content), rootDependencies.Config.Theme); err != nil {
			if err == context.Canceled {
				return
			}
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		}
	}
}
