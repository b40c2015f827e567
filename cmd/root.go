// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/naka-gawa/contrib-scout/internal/domain"
	"github.com/naka-gawa/contrib-scout/internal/gateway"
	"github.com/naka-gawa/contrib-scout/internal/usecase"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "contrib-scout",
	Short: "A CLI tool to find GitHub repositories worth contributing to.",
	Long: `contrib-scout scores GitHub repositories for open-source contribution
friendliness (recent activity, popularity, issue health, contributing guide and
good first issues) on a 0-10 scale. Repositories can be analyzed by name or
discovered through a search.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Interrupting the process cancels the repository being analyzed.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().BoolP("advanced", "a", false, "Also compute PR merge time and issue response time (more API calls)")
}

// newLogger discards all logs unless --verbose is set.
func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// newFetcher builds the GitHub gateway from the GITHUB_TOKEN environment variable.
func newFetcher(logger *log.Logger) gateway.Fetcher {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
		os.Exit(1)
	}
	fetcher, err := gateway.NewGitHubGateway(token, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
		os.Exit(1)
	}
	return fetcher
}

func newAnalyzer(fetcher gateway.Fetcher, logger *log.Logger) *usecase.Analyzer {
	return usecase.NewAnalyzer(fetcher, domain.DefaultScoringConfig(), logger)
}

// printJSON writes the analyses as pretty-printed JSON to w.
func printJSON(w io.Writer, analyses []*domain.RepositoryAnalysis) error {
	jsonData, err := json.MarshalIndent(analyses, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}
