package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/spare00/sospy/internal/analyzer"
	"github.com/spare00/sospy/internal/config"
	"github.com/spare00/sospy/internal/database"
	"github.com/spare00/sospy/internal/model"
	"github.com/spare00/sospy/internal/report"
	"github.com/spf13/cobra"
)

// NewSummaryCmd creates the summary command.
func NewSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <page_owner_file>...",
		Short: "Show an overall allocation summary per dump",
		Long: `Summary prints the headline totals of one or more page_owner dumps:
allocation and page counts, parse-skip statistics, and the heaviest
modules and processes.

Multiple files (for example, captures from several hosts of a cluster)
are analyzed concurrently.

Examples:
  # One dump
  sospy summary page_owner.txt

  # Several dumps, four at a time, totals in gigabytes
  sospy summary --batch 4 --unit G host1.txt host2.txt host3.txt

  # Which processes allocate through one driver
  sospy summary --filter-module vmxnet3 page_owner.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSummaryCmd,
	}

	cmd.Flags().IntP("top", "t", config.DefaultTopSummary, "Rows per ranked table (0 = all)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of concurrent analyses")
	cmd.Flags().String("filter-module", "", "Show only the processes allocating through this module")
	addReportFlags(cmd)

	return cmd
}

// runSummaryCmd executes the summary command.
func runSummaryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("top") && cfg.Top == 0 {
		cfg.Top = config.DefaultTopSummary
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

	a := analyzer.New(analyzer.WithLogger(logger))

	if len(cfg.Inputs) > 1 && cfg.BatchSize > 1 {
		return runBatchSummary(ctx, cfg, a, logger)
	}
	return runSequentialSummary(ctx, cfg, a, logger)
}

// runSequentialSummary analyzes inputs one at a time.
// The first failing file aborts the run; nothing is printed for it.
func runSequentialSummary(ctx context.Context, cfg *config.Config, a *analyzer.Analyzer, logger *slog.Logger) error {
	db, err := openHistoryDB(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	for _, input := range cfg.Inputs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rep, err := a.Analyze(ctx, input)
		if err != nil {
			return err
		}

		if err := outputReport(cfg, rep, report.SectionSummary); err != nil {
			return err
		}
		if err := saveSummary(ctx, db, rep, logger); err != nil {
			return err
		}
	}

	return nil
}

// runBatchSummary analyzes inputs concurrently, printing each summary as
// its analysis completes. Per-file failures are reported on stderr and
// turn into a non-zero exit after all files finished.
func runBatchSummary(ctx context.Context, cfg *config.Config, a *analyzer.Analyzer, logger *slog.Logger) error {
	db, err := openHistoryDB(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	bp := analyzer.NewBatchProcessor(a,
		analyzer.WithConcurrency(cfg.BatchSize),
		analyzer.WithBatchLogger(logger),
	)

	var mu sync.Mutex
	var failed int
	err = bp.ProcessBatchWithCallback(ctx, cfg.Inputs, func(rep *model.Report, index int, err error) {
		mu.Lock()
		defer mu.Unlock()

		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "Analysis error for %s: %v\n", cfg.Inputs[index], err)
			return
		}

		if err := outputReport(cfg, rep, report.SectionSummary); err != nil {
			logger.Error("report failed", "file", rep.InputFile, "error", err)
		}
		if err := saveSummary(ctx, db, rep, logger); err != nil {
			logger.Error("failed to save analysis", "file", rep.InputFile, "error", err)
		}
	})
	if err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d analyses failed", failed, len(cfg.Inputs))
	}
	return nil
}

// openHistoryDB opens the history database when saving is enabled.
// Returns nil without error when saving is off.
func openHistoryDB(cfg *config.Config) (*database.HistoryDB, error) {
	if !cfg.SaveToDB {
		return nil, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return db, nil
}

// saveSummary records one analysis if the database is open.
func saveSummary(ctx context.Context, db *database.HistoryDB, rep *model.Report, logger *slog.Logger) error {
	if db == nil {
		return nil
	}
	id, err := db.SaveReport(ctx, rep)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	logger.Info("analysis saved", "id", id, "file", rep.InputFile)
	return nil
}
