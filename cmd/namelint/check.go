package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/c360studio/namelint/config"
	"github.com/c360studio/namelint/policy"
	"github.com/c360studio/namelint/processor/decl"
	declindexer "github.com/c360studio/namelint/processor/decl-indexer"
	"github.com/c360studio/namelint/report"
)

func checkCmd(configPath, logLevel *string) *cobra.Command {
	var (
		policyPath string
		format     string
		output     string
		failOn     string
		project    string
		include    []string
		exclude    []string
	)

	cmd := &cobra.Command{
		Use:   "check [roots...]",
		Short: "Check C++ sources against the naming policy",
		Long: `Check scans source trees, extracts declarations, and verifies each
name against the naming policy. Roots may be directories or doublestar
glob patterns; without arguments the configured roots (or the git
root) are used.

Exits non-zero when violations at or above the fail-on severity are
found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			logger := newLogger(*logLevel)

			cfg, err := loadConfig(*configPath, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			// Flags override config
			if len(args) > 0 {
				cfg.Source.Roots = args
			}
			if policyPath != "" {
				cfg.Policy.Path = policyPath
			}
			if format != "" {
				cfg.Report.Format = format
			}
			if output != "" {
				cfg.Report.Output = output
			}
			if failOn != "" {
				cfg.Report.FailOn = failOn
			}
			if project != "" {
				cfg.Project.Name = project
			}
			if len(include) > 0 {
				cfg.Source.Include = include
			}
			if len(exclude) > 0 {
				cfg.Source.Exclude = exclude
			}

			return runCheck(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVar(&policyPath, "policy", "", "Policy file path (YAML, default: built-in rules)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Report format (text, json, html, markdown)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write report to file instead of stdout")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "Severity at or above which the check fails (error, warning, suggestion, hint)")
	cmd.Flags().StringVar(&project, "project", "", "Project name for the report")
	cmd.Flags().StringSliceVar(&include, "include", nil, "Only report files matching these glob patterns")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Skip files matching these glob patterns")

	return cmd
}

func runCheck(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	outFormat, err := report.ParseFormat(cfg.Report.Format)
	if err != nil {
		return err
	}
	threshold, err := policy.ParseSeverity(cfg.Report.FailOn)
	if err != nil {
		return fmt.Errorf("fail-on: %w", err)
	}

	pol := policy.DefaultPolicy()
	if cfg.Policy.Path != "" {
		pol, err = policy.LoadPolicy(cfg.Policy.Path)
		if err != nil {
			return fmt.Errorf("load policy: %w", err)
		}
	}
	engine := policy.NewEngine(pol)

	roots, err := declindexer.ResolveScanPaths(cfg.Source.Roots)
	if err != nil {
		return fmt.Errorf("resolve source roots: %w", err)
	}
	if len(roots) == 0 {
		return fmt.Errorf("no source roots matched %v", cfg.Source.Roots)
	}

	rep := report.New(cfg.Project.Name)
	for _, root := range roots {
		logger.Debug("Scanning source root", "root", root)
		for _, name := range decl.DefaultRegistry.ListExtractors() {
			extractor, err := decl.DefaultRegistry.CreateExtractor(name, root)
			if err != nil {
				return fmt.Errorf("create %s extractor: %w", name, err)
			}
			results, err := extractor.ExtractDirectory(ctx, root)
			if err != nil {
				return fmt.Errorf("extract %s declarations from %s: %w", name, root, err)
			}
			for _, result := range results {
				verdicts, err := engine.CheckAll(result.Declarations)
				if err != nil {
					return fmt.Errorf("check %s: %w", result.Path, err)
				}
				rep.Add(verdicts)
			}
		}
	}

	rep = rep.Filter(cfg.Source.Include, cfg.Source.Exclude)
	rep.Sort()

	var w io.Writer = os.Stdout
	if cfg.Report.Output != "" {
		f, err := os.Create(cfg.Report.Output)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := report.Render(w, rep, outFormat); err != nil {
		return err
	}

	logger.Info("Naming check complete",
		"checked", rep.Checked,
		"violations", len(rep.Violations))

	if rep.HasAtOrAbove(threshold) {
		return fmt.Errorf("%d naming violations at or above severity %s", len(rep.Violations), threshold)
	}
	return nil
}
