package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze OWNER/REPO [OWNER/REPO...]",
	Short: "Scores repositories and outputs them as JSON",
	Long: `Analyzes one or more repositories, scores them for contribution friendliness
and outputs the results, best first, in JSON format.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		logger := newLogger(cmd)
		advanced, _ := cmd.Flags().GetBool("advanced")

		analyzer := newAnalyzer(newFetcher(logger), logger)
		results, analyzeErr := analyzer.AnalyzeAll(ctx, args, advanced)
		if results == nil && analyzeErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to analyze repositories: %v\n", analyzeErr)
			os.Exit(1)
		}

		if err := printJSON(cmd.OutOrStdout(), results); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

		// Print what we could, then report the repositories that failed.
		if analyzeErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to analyze some repositories:\n%v\n", analyzeErr)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
