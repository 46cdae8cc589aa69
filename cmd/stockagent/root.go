package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/stockagent/internal/logging"
	"github.com/tailored-agentic-units/stockagent/kernel"
)

// Environment variables holding credentials.
const (
	envAnthropicKey    = "ANTHROPIC_API_KEY"
	envAlphaVantageKey = "ALPHA_VANTAGE_API_KEY"
	envRobinhoodKey    = "ROBINHOOD_API_KEY"
	envRobinhoodSecret = "ROBINHOOD_PRIVATE_KEY"
)

var errMissingAPIKey = errors.New(envAnthropicKey + " environment variable not set")

var rootCmd = &cobra.Command{
	Use:   "stockagent",
	Short: "Stock and crypto assistant",
	Long: `stockagent answers questions about stock prices, crypto holdings, account
information and crypto quotes, and places crypto orders, by driving a language
model through a fixed set of market and brokerage tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	addConfigFlags(rootCmd)
}

// addConfigFlags registers the flags shared by every subcommand.
func addConfigFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to a JSON or YAML config file")
	flags.String("model", "", "Model name (overrides config)")
	flags.String("system-prompt", "", "System prompt (overrides config)")
	flags.String("memory", "", "Directory of context documents appended to the system prompt (overrides config)")
	flags.Int("max-iterations", 0, "Maximum model queries per invocation (overrides config)")
	flags.String("log-format", logging.FormatText, "Log format: text or json")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
}

// loadConfig builds the kernel config from file, flags, and environment.
func loadConfig(cmd *cobra.Command) (*kernel.Config, error) {
	flags := cmd.Flags()

	cfg := kernel.DefaultConfig()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := kernel.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if v, _ := flags.GetString("model"); v != "" {
		cfg.Agent.Model = v
	}
	if v, _ := flags.GetString("system-prompt"); v != "" {
		cfg.SystemPrompt = v
	}
	if v, _ := flags.GetString("memory"); v != "" {
		cfg.Memory.Path = v
	}
	if v, _ := flags.GetInt("max-iterations"); v > 0 {
		cfg.MaxIterations = v
	}

	cfg.Agent.APIKey = os.Getenv(envAnthropicKey)
	cfg.Tools.AlphaVantageAPIKey = os.Getenv(envAlphaVantageKey)
	cfg.Tools.RobinhoodAPIKey = os.Getenv(envRobinhoodKey)
	cfg.Tools.RobinhoodPrivateKey = os.Getenv(envRobinhoodSecret)

	for name := range cfg.Agents {
		agentCfg := cfg.Agents[name]
		if agentCfg.APIKey == "" {
			agentCfg.APIKey = cfg.Agent.APIKey
			cfg.Agents[name] = agentCfg
		}
	}

	return &cfg, nil
}

// setupLogger installs the process logger writing to w.
func setupLogger(cmd *cobra.Command, w io.Writer) error {
	format, _ := cmd.Flags().GetString("log-format")
	verbose, _ := cmd.Flags().GetBool("verbose")

	logger, err := logging.New(w, logging.Options{Format: format, Verbose: verbose})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}
