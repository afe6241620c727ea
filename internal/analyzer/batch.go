package analyzer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/spare00/sospy/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor analyzes multiple dump files concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding
// multi-file support to Analyzer because it keeps Analyzer focused on
// single-file analysis and gives batch callers control over ordering and
// error handling.
type BatchProcessor struct {
	// analyzer performs the per-file analysis. Analyzer is stateless
	// across files, so a single instance is shared by all goroutines.
	analyzer *Analyzer

	// concurrency is the maximum number of files analyzed at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed reports, indexed by input position.
	// Access is synchronized via mutex.
	results []*model.Report
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(analyzer *Analyzer, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		analyzer:    analyzer,
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch analyzes multiple files concurrently.
// Results keep the order of the input slice; a file that failed to parse
// leaves a nil slot and its error is logged. The error return indicates
// cancellation, not per-file failures.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, files []string) ([]*model.Report, error) {
	bp.logger.Info("starting batch analysis",
		"total_files", len(files),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.Report, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, file := range files {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report, err := bp.analyzer.Analyze(ctx, file)
			if err != nil {
				// Don't return the error to the errgroup - other files
				// should still be analyzed. The nil slot marks the failure.
				bp.logger.Warn("analysis failed",
					"file", file,
					"error", err,
				)
				return nil
			}

			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch analysis complete",
		"total_files", len(files),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

// ProcessBatchWithCallback analyzes multiple files and calls the callback
// for each one as it completes. This is useful for streaming output.
//
// The callback receives the report (nil on failure), the index of the
// file in the original slice, and the per-file error. It is called from
// the goroutine that finished the analysis, so it must be thread-safe if
// it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	files []string,
	callback func(report *model.Report, index int, err error),
) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, file := range files {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report, err := bp.analyzer.Analyze(ctx, file)
			callback(report, i, err)

			return nil
		})
	}

	return g.Wait()
}
