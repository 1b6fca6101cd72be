package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/c360studio/namelint/config"
	declindexer "github.com/c360studio/namelint/processor/decl-indexer"
	naminglint "github.com/c360studio/namelint/processor/naming-lint"
	"github.com/c360studio/semstreams/component"
	semconfig "github.com/c360studio/semstreams/config"
	"github.com/c360studio/semstreams/natsclient"
)

func serveCmd(configPath, logLevel *string) *cobra.Command {
	var (
		natsURL     string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the streaming naming pipeline",
		Long: `Serve runs the declaration indexer and naming linter as streaming
components over NATS JetStream.

The indexer scans the configured source roots, watches for changes,
and publishes declaration batches. The linter consumes batches,
checks them against the naming policy, and publishes lint reports.
Prometheus metrics are exposed on the metrics address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			logger := newLogger(*logLevel)

			cfg, err := loadConfig(*configPath, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if natsURL != "" {
				cfg.NATS.URL = natsURL
			}
			if metricsAddr != "" {
				cfg.NATS.MetricsAddr = metricsAddr
			}

			return runServe(cfg, logger)
		},
	}

	cmd.Flags().StringVar(&natsURL, "nats", "", "NATS server URL")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Prometheus metrics listen address")

	return cmd
}

func runServe(cfg *config.Config, logger *slog.Logger) error {
	printBanner()

	ctx := context.Background()

	natsClient, err := connectToNATS(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer natsClient.Close(ctx)

	if err := ensureStreams(ctx, cfg, natsClient, logger); err != nil {
		return err
	}

	deps := component.Dependencies{
		NATSClient: natsClient,
		Logger:     logger,
	}

	indexerConfig, _ := json.Marshal(map[string]any{
		"scan_paths":    cfg.Source.Roots,
		"project":       cfg.Project.Name,
		"watch_enabled": true,
		"scan_interval": "5m",
		"stream_name":   cfg.NATS.Stream,
	})
	indexerComp, err := declindexer.NewComponent(indexerConfig, deps)
	if err != nil {
		return fmt.Errorf("create decl-indexer: %w", err)
	}
	indexer := indexerComp.(*declindexer.Component)

	linterConfig, _ := json.Marshal(map[string]any{
		"stream_name": cfg.NATS.Stream,
		"policy_path": cfg.Policy.Path,
	})
	linterComp, err := naminglint.NewComponent(linterConfig, deps)
	if err != nil {
		return fmt.Errorf("create naming-lint: %w", err)
	}
	linter := linterComp.(*naminglint.Component)

	if err := indexer.Initialize(); err != nil {
		return fmt.Errorf("initialize decl-indexer: %w", err)
	}
	if err := linter.Initialize(); err != nil {
		return fmt.Errorf("initialize naming-lint: %w", err)
	}

	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	// Linter first so the consumer exists before batches arrive
	if err := linter.Start(signalCtx); err != nil {
		return fmt.Errorf("start naming-lint: %w", err)
	}
	if err := indexer.Start(signalCtx); err != nil {
		stopComponent("naming-lint", linter.Stop)
		return fmt.Errorf("start decl-indexer: %w", err)
	}

	metricsServer := startMetricsServer(cfg, linter, logger)

	slog.Info("Namelint pipeline ready",
		"version", Version,
		"stream", cfg.NATS.Stream,
		"roots", cfg.Source.Roots)

	// Block until shutdown signal
	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	stopComponent("decl-indexer", indexer.Stop)
	stopComponent("naming-lint", linter.Stop)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Error stopping metrics server", "error", err)
		}
	}

	slog.Info("Namelint shutdown complete")
	return nil
}

func stopComponent(name string, stop func(time.Duration) error) {
	if err := stop(30 * time.Second); err != nil {
		slog.Error("Error stopping component", "component", name, "error", err)
	}
}

// startMetricsServer exposes the linter's Prometheus registry. Returns
// nil when no metrics address is configured.
func startMetricsServer(cfg *config.Config, linter *naminglint.Component, logger *slog.Logger) *http.Server {
	if cfg.NATS.MetricsAddr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(linter.MetricsRegistry(), promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              cfg.NATS.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Metrics endpoint listening", "addr", cfg.NATS.MetricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server failed", "error", err)
		}
	}()
	return server
}

func printBanner() {
	fmt.Println("╔═══════════════════════════════════════════════╗")
	fmt.Println("║             Namelint v" + Version + "                    ║")
	fmt.Println("║      Naming Convention Pipeline               ║")
	fmt.Println("╚═══════════════════════════════════════════════╝")
}

func connectToNATS(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*natsclient.Client, error) {
	natsURL := cfg.NATS.URL

	// Environment variable override takes precedence
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		natsURL = envURL
	}

	logger.Info("Connecting to NATS", "url", natsURL)

	client, err := natsclient.NewClient(natsURL,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
		natsclient.WithHealthInterval(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, wrapNATSError(err, natsURL)
	}

	connCtx, cancel := context.WithTimeout(ctx, cfg.NATS.ConnectTimeout)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, wrapNATSError(err, natsURL)
	}

	logger.Info("Connected to NATS", "url", natsURL)
	return client, nil
}

// wrapNATSError provides helpful guidance when NATS connection fails.
func wrapNATSError(err error, url string) error {
	errStr := err.Error()

	// Check for common connection errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

To start NATS:
  docker compose up -d nats

Or set NATS_URL environment variable to point to your NATS server.`, err, url)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}

func ensureStreams(ctx context.Context, cfg *config.Config, natsClient *natsclient.Client, logger *slog.Logger) error {
	logger.Debug("Creating JetStream streams")

	streamsConfig := &semconfig.Config{
		Version: "1.0.0",
		Streams: semconfig.StreamConfigs{
			cfg.NATS.Stream: semconfig.StreamConfig{
				Subjects: []string{
					"naming.decl.batch",
					"naming.lint.report.>",
				},
				MaxAge:   "24h",
				Storage:  "file",
				Replicas: 1,
			},
		},
	}

	streamsManager := semconfig.NewStreamsManager(natsClient, logger)
	if err := streamsManager.EnsureStreams(ctx, streamsConfig); err != nil {
		return fmt.Errorf("ensure streams: %w", err)
	}

	logger.Debug("JetStream streams ready")
	return nil
}
