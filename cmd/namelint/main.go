// Package main provides the namelint binary entry point.
// Namelint checks C++ declaration names against a prefix policy,
// either as a one-shot CLI check or as streaming components over NATS.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	// Register declaration extractors via init()
	_ "github.com/c360studio/namelint/processor/decl/cpp"

	"github.com/c360studio/namelint/config"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "namelint"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "namelint",
		Short: "Naming convention checker for C++ sources",
		Long: `Namelint checks C++ declaration names against a prefix policy.

It extracts declarations (constants, members, parameters, template
names, typedefs) from C++ sources and verifies each name carries the
prefix its category requires.

Modes:
- check: one-shot scan of source trees with a rendered report
- serve: streaming components over NATS that index declarations and
  lint them continuously`,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(checkCmd(&configPath, &logLevel))
	cmd.AddCommand(serveCmd(&configPath, &logLevel))

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// loadConfig loads an explicit config file when given, otherwise the
// layered user/project configuration.
func loadConfig(configPath string, logger *slog.Logger) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.NewLoader(logger).Load()
}

// newLogger builds the process logger at the requested level.
func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
