package main

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/stockagent/agent"
	"github.com/tailored-agentic-units/stockagent/internal/logging"
	"github.com/tailored-agentic-units/stockagent/kernel"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the configured agents",
	RunE: func(cmd *cobra.Command, _ []string) error {
		slog.SetDefault(logging.Nop())

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg.Observers = []string{"noop"}

		k, err := kernel.New(cfg)
		if err != nil {
			return err
		}

		printAgents(cmd.OutOrStdout(), cfg, k.Agents())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(agentsCmd)
}

// printAgents writes one row per agent; the first row is the default agent
// when none of the named agents is selected.
func printAgents(w io.Writer, cfg *kernel.Config, infos []agent.AgentInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "NAME\tPROVIDER\tMODEL\tDEFAULT")
	if cfg.DefaultAgent == "" {
		fmt.Fprintf(tw, "(agent)\t%s\t%s\t*\n", cfg.Agent.Provider, cfg.Agent.Model)
	}
	for _, info := range infos {
		mark := ""
		if info.Name == cfg.DefaultAgent {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Name, info.Provider, info.Model, mark)
	}
}
