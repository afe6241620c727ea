package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spare00/sospy/internal/model"
)

// Default configuration values.
const (
	// DefaultBatchSize of 4 concurrent analyses balances throughput with
	// memory usage: each in-flight file holds its aggregate tables in
	// memory, and page_owner dumps from large hosts run to gigabytes.
	DefaultBatchSize = 4

	// DefaultTopTraces matches the reference tooling, which printed the
	// three most common call traces.
	DefaultTopTraces = 3

	// DefaultTopSummary limits the module and process tables of the
	// summary report, where only the heaviest allocators matter.
	DefaultTopSummary = 10

	// AppName is the application name used for XDG directory paths.
	AppName = "sospy"
)

// Config holds all configuration options for one sospy invocation.
// This struct is designed to be populated from CLI flags and the optional
// config file, then passed through the application via dependency
// injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs.
// The number of options is manageable, and nesting would add complexity
// without significant benefit.
type Config struct {
	// Inputs are the page_owner dump files to analyze. The report
	// variant commands accept exactly one; summary accepts several.
	Inputs []string

	// Top limits ranked report sections to the N heaviest rows.
	// 0 renders everything.
	Top int

	// Unit is the memory unit for derived memory columns.
	Unit model.Unit

	// BatchSize is the number of concurrent analyses when summarizing
	// multiple input files.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON output instead of the fixed-width text
	// report. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown output instead of the fixed-width
	// text report. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile, when set, writes the report to this path instead of
	// standard output.
	ReportFile string

	// FilterModule narrows the summary to the processes that allocated
	// through the named module.
	FilterModule string

	// TraceProcess restricts the trace report to allocations made by the
	// named process.
	TraceProcess string

	// SaveToDB records the analysis in the history database.
	SaveToDB bool

	// DBDir is the directory holding the history database.
	DBDir string

	// ConfigFilePath is the path to the configuration file. If empty,
	// .sospy is searched for in the current and home directories.
	ConfigFilePath string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Unit:      model.UnitKB,
		BatchSize: DefaultBatchSize,
		DBDir:     XDGDataDir(),
	}
}

// Validate checks the configuration for inconsistencies.
// Returns one of the package sentinel errors on failure.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}
	if c.Top < 0 {
		return ErrInvalidTop
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// XDGDataDir returns the per-user data directory for the history database,
// following the XDG Base Directory specification.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}
