package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spare00/sospy/internal/aggregate"
	"github.com/spare00/sospy/internal/model"
	"github.com/spare00/sospy/internal/parser"
)

// DefaultTopTraces is the number of deduplicated call traces retained in
// a report when no explicit limit is configured.
const DefaultTopTraces = 10

// Analyzer analyzes page_owner dumps into reports.
// A single Analyzer can analyze any number of files; per-file state lives
// in the scanners and aggregators created inside Analyze.
type Analyzer struct {
	// logger is used for progress and skip diagnostics.
	logger *slog.Logger

	// topTraces limits how many deduplicated traces the report keeps.
	// 0 keeps all of them.
	topTraces int

	// traceProcess restricts the trace aggregation to allocations made by
	// one process. Empty keeps every trace.
	traceProcess string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithTopTraces sets how many deduplicated call traces to keep per report.
func WithTopTraces(n int) Option {
	return func(a *Analyzer) {
		if n >= 0 {
			a.topTraces = n
		}
	}
}

// WithTraceProcess restricts the trace aggregation to allocations made by
// the named process. An empty name keeps every trace.
func WithTraceProcess(name string) Option {
	return func(a *Analyzer) {
		a.traceProcess = name
	}
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		topTraces: DefaultTopTraces,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Analyze reads the dump at path and returns the full analysis result.
//
// The input must be a readable, pre-existing file; open failures are
// reported before any aggregation starts. The file is scanned twice: the
// block pass feeds the module, module-order, process, and trace
// aggregations, the line pass feeds the order-only totals.
func (a *Analyzer) Analyze(ctx context.Context, path string) (*model.Report, error) {
	report := model.NewReport(path)

	modules := aggregate.New(aggregate.ByModule)
	moduleOrders := aggregate.New(aggregate.ByModuleOrder)
	processes := aggregate.NewProcessAggregator()
	processModules := aggregate.NewProcessModuleAggregator()
	slabs := aggregate.NewSlabAggregator()
	traces := aggregate.NewTraceAggregator()

	blockStats, err := a.scanBlocks(path, func(ev model.Allocation) {
		modules.Fold(ev)
		moduleOrders.Fold(ev)
		processes.Fold(ev)
		processModules.Fold(ev)
		slabs.Fold(ev)
		if a.traceProcess == "" || ev.Process == a.traceProcess {
			traces.Fold(ev)
		}
		report.TotalAllocations++
		report.TotalPages += ev.Pages
	})
	if err != nil {
		return nil, err
	}
	report.Stats = blockStats

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	orders := aggregate.NewOrderAggregator()
	lineStats, err := a.scanLines(path, orders.Fold)
	if err != nil {
		return nil, err
	}
	report.Stats.BadLines = lineStats.BadLines

	report.Modules = modules.ModuleRows()
	report.ModuleOrders = moduleOrders.ModuleOrderRows()
	report.Orders = orders.Rows()
	report.TotalOrderPages = orders.TotalPages()
	report.Processes = processes.Rows()
	report.ProcessModules = processModules.Rows()
	report.Slabs = slabs.Rows()
	report.SlabOrders = slabs.OrderRows()
	report.Traces = traces.Top(a.topTraces)

	a.logger.Debug("analysis complete",
		"file", path,
		"blocks", report.Stats.Blocks,
		"emitted", report.Stats.Emitted,
		"skipped_missing_order", report.Stats.MissingOrder,
		"no_module", report.Stats.NoModule,
		"total_pages", report.TotalPages,
	)

	return report, nil
}

// scanBlocks runs the block scanner over the file at path.
func (a *Analyzer) scanBlocks(path string, emit func(model.Allocation)) (model.ParseStats, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return model.ParseStats{}, fmt.Errorf("cannot read input file %s: %w", path, err)
	}
	defer f.Close()

	return parser.NewBlockScanner().Scan(f, emit)
}

// scanLines runs the loose line scanner over the file at path.
func (a *Analyzer) scanLines(path string, emit func(order int, pages int64)) (model.ParseStats, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return model.ParseStats{}, fmt.Errorf("cannot read input file %s: %w", path, err)
	}
	defer f.Close()

	return parser.NewLineScanner().Scan(f, emit)
}
