// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-mcp/internal/config"
	"github.com/naka-gawa/github-mcp/internal/gateway"
)

// version is overridden at build time with -ldflags "-X".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "github-mcp",
	Short: "An MCP server exposing read-only GitHub tools over stdio.",
	Long: `github-mcp is a Model Context Protocol server that lets an AI assistant
read the configured user's GitHub account: list repositories, inspect a
repository, search code and review recent activity.

Running it without a subcommand starts the server on stdin/stdout.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("env-file", "", "Path to a .env file (default: ./.env if present)")
}

// newLogger writes to stderr; stdout carries the protocol stream.
func newLogger(verbose bool) *log.Logger {
	if verbose {
		return log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile)
	}
	return log.New(os.Stderr, "", log.LstdFlags)
}

// setup loads the configuration and builds the gateway shared by every
// subcommand. The caller must Close the gateway.
func setup(cmd *cobra.Command) (*gateway.GitHubGateway, *log.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	configPath, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	logger := newLogger(verbose)

	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return nil, nil, err
	}

	githubGateway, err := gateway.NewGitHubGateway(gateway.Options{
		Token:    cfg.Token,
		Username: cfg.Username,
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.Timeout,
		Debug:    verbose,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	logger.Printf("GitHub client initialized for user: %s", cfg.Username)
	return githubGateway, logger, nil
}
