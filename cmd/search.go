package cmd

import (
	"fmt"
	"os"

	"github.com/naka-gawa/contrib-scout/internal/usecase"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Discovers repositories and outputs them ranked as JSON",
	Long: `Searches GitHub for repositories matching the given filters, scores each of
them for contribution friendliness and outputs them, best first, in JSON format.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		logger := newLogger(cmd)
		advanced, _ := cmd.Flags().GetBool("advanced")

		var criteria usecase.SearchCriteria
		criteria.Language, _ = cmd.Flags().GetString("language")
		criteria.Topic, _ = cmd.Flags().GetString("topic")
		criteria.MinStars, _ = cmd.Flags().GetInt("min-stars")
		criteria.MinGoodFirstIssues, _ = cmd.Flags().GetInt("min-good-first-issues")
		criteria.PushedWithinDays, _ = cmd.Flags().GetInt("pushed-within")
		criteria.Limit, _ = cmd.Flags().GetInt("limit")

		fetcher := newFetcher(logger)
		discoverer := usecase.NewDiscoverer(fetcher, newAnalyzer(fetcher, logger), logger)
		results, err := discoverer.Discover(ctx, criteria, advanced)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to discover repositories: %v\n", err)
			os.Exit(1)
		}

		if err := printJSON(cmd.OutOrStdout(), results); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringP("language", "l", "", "Primary language of the repositories")
	searchCmd.Flags().StringP("topic", "t", "", "Topic the repositories are tagged with")
	searchCmd.Flags().Int("min-stars", 10, "Minimum number of stars")
	searchCmd.Flags().Int("min-good-first-issues", 1, "Minimum number of good first issues")
	searchCmd.Flags().Int("pushed-within", 90, "Only repositories pushed within this many days (0 disables)")
	searchCmd.Flags().IntP("limit", "n", 10, "Maximum number of repositories to analyze (up to 100)")
}
