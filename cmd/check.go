package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-mcp/internal/usecase"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the configured token and print a JSON report",
	Long: `Probes the GitHub API with the configured credentials: resolves the token's
login over GraphQL and makes one repository and one event request. The report
includes the remaining rate limit. Exits non-zero if any probe fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		githubGateway, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer githubGateway.Close()

		report, err := usecase.NewChecker(githubGateway, logger).Check(cmd.Context())
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}

		// Marshal the report into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report to JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
