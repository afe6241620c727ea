package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spare00/sospy/internal/analyzer"
	"github.com/spare00/sospy/internal/config"
	"github.com/spare00/sospy/internal/database"
	"github.com/spare00/sospy/internal/model"
	"github.com/spare00/sospy/internal/report"
	"github.com/spf13/cobra"
)

// addReportFlags registers the flags shared by every report command.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().BoolP("save", "s", false,
		"Record the analysis in the history database")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sospy in current or home directory)")
	cmd.Flags().String("unit", "K",
		"Memory unit for derived columns: K, M, or G")
}

// buildConfig creates a Config from cobra command flags and the optional
// config file. Flags the user set explicitly win over config file values.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Inputs = args
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load config file defaults first so explicit flags can override them.
	// If the user named a config file that doesn't exist, that's an error;
	// an absent default file is not.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cf.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if cmd.Flags().Changed("unit") {
		unitFlag, err := cmd.Flags().GetString("unit")
		if err != nil {
			return nil, err
		}
		cfg.Unit, err = model.ParseUnit(unitFlag)
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Lookup("top") != nil && cmd.Flags().Changed("top") {
		cfg.Top, err = cmd.Flags().GetInt("top")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Lookup("batch") != nil && cmd.Flags().Changed("batch") {
		cfg.BatchSize, err = cmd.Flags().GetInt("batch")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Lookup("filter-module") != nil {
		cfg.FilterModule, err = cmd.Flags().GetString("filter-module")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Lookup("process") != nil {
		cfg.TraceProcess, err = cmd.Flags().GetString("process")
		if err != nil {
			return nil, err
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("save") {
		cfg.SaveToDB, err = cmd.Flags().GetBool("save")
		if err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// runReportCmd is the shared driver for the single-file report commands.
// It validates the configuration, analyzes the input, renders the chosen
// section, and optionally records the analysis.
func runReportCmd(cmd *cobra.Command, args []string, section report.Section, defaultTop int) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("top") && cfg.Top == 0 {
		cfg.Top = defaultTop
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a := analyzer.New(
		analyzer.WithLogger(logger),
		analyzer.WithTopTraces(traceLimit(cfg, section)),
		analyzer.WithTraceProcess(cfg.TraceProcess),
	)
	rep, err := a.Analyze(ctx, cfg.Inputs[0])
	if err != nil {
		return err
	}

	if err := outputReport(cfg, rep, section); err != nil {
		return err
	}

	return saveReport(ctx, cfg, rep, logger)
}

// traceLimit picks how many deduplicated traces the analyzer should keep.
// The traces section needs exactly the requested number; other sections
// keep the analyzer default so saved reports stay useful.
func traceLimit(cfg *config.Config, section report.Section) int {
	if section == report.SectionTraces && cfg.Top > 0 {
		return cfg.Top
	}
	return analyzer.DefaultTopTraces
}

// outputReport renders the report in the requested format and destination.
func outputReport(cfg *config.Config, rep *model.Report, section report.Section) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output, section)
	default:
		w = report.NewTextWriter(output, section,
			report.WithUnit(cfg.Unit),
			report.WithTop(cfg.Top),
			report.WithModuleFilter(cfg.FilterModule),
		)
	}

	_, err := w.Write(rep)
	return err
}

// saveReport records the analysis in the history database when enabled.
func saveReport(ctx context.Context, cfg *config.Config, rep *model.Report, logger *slog.Logger) error {
	if !cfg.SaveToDB {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveReport(ctx, rep)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	logger.Info("analysis saved", "id", id, "file", rep.InputFile)
	return nil
}
