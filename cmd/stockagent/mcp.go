package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/stockagent/internal/logging"
	"github.com/tailored-agentic-units/stockagent/internal/mcpserver"
	"github.com/tailored-agentic-units/stockagent/kernel"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the tools over MCP on stdio",
	Long: `Serves the market and brokerage tools as an MCP server on stdin and stdout.
When ANTHROPIC_API_KEY is set, the "ask" tool runs full agent invocations.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	// Stdout carries the protocol; logs go to stderr only when asked for.
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		if err := setupLogger(cmd, os.Stderr); err != nil {
			return err
		}
	} else {
		slog.SetDefault(logging.Nop())
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	k, err := kernel.New(cfg)
	if err != nil {
		return err
	}

	var a mcpserver.Agent
	if cfg.Agent.APIKey != "" {
		a = k
	}

	srv, err := mcpserver.New("stockagent", version, k.Tools(), a)
	if err != nil {
		return err
	}
	return srv.ServeStdio()
}
