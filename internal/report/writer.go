package report

import (
	"io"

	"github.com/spare00/sospy/internal/model"
)

// Section selects which aggregation of a report a writer renders.
type Section int

// Report sections, one per report variant.
const (
	// SectionModules is the by-module report (pages descending).
	SectionModules Section = iota

	// SectionModuleOrders is the by-(module, order) report.
	SectionModuleOrders

	// SectionOrders is the order-only totals report.
	SectionOrders

	// SectionTraces is the most-frequent-call-traces report.
	SectionTraces

	// SectionSlabs is the slab allocator usage report (per-function
	// totals plus the slab vs non-slab split by order).
	SectionSlabs

	// SectionSummary is the overall summary (totals, top modules,
	// top processes, skip statistics).
	SectionSummary
)

// Writer defines the interface for report output.
// Implementations render one section of an analysis result in a
// particular format.
//
// Design decision: We use an interface so different formats and
// destinations share the same API; writing to files, stdout, or buffers
// is the caller's choice of io.Writer.
type Writer interface {
	// Write renders the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.Report) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// Useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than using
// io.MultiWriter because our Writer interface is different from io.Writer;
// we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the report through all configured Writers.
// Returns the total bytes written; stops on the first error encountered.
func (m *MultiWriter) Write(report *model.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
