package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/stockagent/manifest"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "stockagent %s (agent card %s)\n", version, manifest.DefaultConfig().Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
