package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-mcp/internal/toolserver"
	"github.com/naka-gawa/github-mcp/internal/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdin/stdout",
	Long: `Starts the MCP server. Requests are read from standard input and responses
written to standard output; logs go to standard error. The server stops when
standard input is closed or on SIGINT/SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	githubGateway, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer githubGateway.Close()

	// Inject dependencies and run the server.
	toolset := usecase.NewToolset(githubGateway, logger)
	srv := toolserver.New(toolset, version, logger)

	logger.Println("Starting GitHub MCP server...")
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Println("GitHub MCP server stopped")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
