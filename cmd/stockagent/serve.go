package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/stockagent/kernel"
	"github.com/tailored-agentic-units/stockagent/manifest"
	"github.com/tailored-agentic-units/stockagent/observability"
	"github.com/tailored-agentic-units/stockagent/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the agent server",
	Long: `Starts the agent server, exposing the agent card at /.well-known/agent.json,
the Invoke and Stream RPCs, Prometheus metrics at /metrics, and /healthz.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := setupLogger(cmd, os.Stderr); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Agent.APIKey == "" {
		return errMissingAPIKey
	}
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		cfg.Server.Host = v
	}
	if v, _ := cmd.Flags().GetInt("port"); v > 0 {
		cfg.Server.Port = v
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewPrometheusObserver("stockagent", registry)
	if err != nil {
		return err
	}
	observability.RegisterObserver("prometheus", metrics)
	if len(cfg.Observers) == 0 {
		cfg.Observers = []string{"slog", "prometheus"}
	}

	k, err := kernel.New(cfg)
	if err != nil {
		return err
	}

	observer, err := observability.Resolve(cfg.Observers...)
	if err != nil {
		return err
	}

	card := manifest.New(cfg.Manifest, cfg.Server.URL())
	srv := server.New(k, card,
		server.WithObserver(observer),
		server.WithGatherer(registry),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("server listening", "addr", cfg.Server.Addr(), "card", card.URL+".well-known/agent.json")
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr(), cfg.Server.ShutdownTimeout); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}
