package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spare00/sospy/internal/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TextWriter outputs fixed-width plain text tables.
// Column layouts match the classic page_owner summary tools: right-aligned
// numeric columns, a left-aligned trailing Module column, and an explicit
// Total row for the order-only report.
//
// Design decision: We render with fmt width specifiers rather than a table
// library because the layouts are part of the tool's contract; downstream
// awk/grep pipelines depend on the exact column positions.
type TextWriter struct {
	baseWriter

	// section selects which aggregation to render.
	section Section

	// unit is the memory unit for derived memory columns.
	unit model.Unit

	// top limits row output for ranked sections (modules, processes,
	// traces). 0 means no limit.
	top int

	// filterModule narrows the summary to the processes using one module.
	filterModule string
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithUnit sets the memory unit for derived memory columns.
func WithUnit(unit model.Unit) TextWriterOption {
	return func(w *TextWriter) {
		w.unit = unit
	}
}

// WithTop limits how many rows ranked sections render. 0 renders all.
func WithTop(n int) TextWriterOption {
	return func(w *TextWriter) {
		if n >= 0 {
			w.top = n
		}
	}
}

// WithModuleFilter narrows the summary section to the processes that
// allocated through the named module. Empty disables the filter.
func WithModuleFilter(module string) TextWriterOption {
	return func(w *TextWriter) {
		w.filterModule = module
	}
}

// NewTextWriter creates a TextWriter rendering the given section.
func NewTextWriter(output io.Writer, section Section, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		section:    section,
		unit:       model.UnitKB,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write renders the configured section of the report.
func (w *TextWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	switch w.section {
	case SectionModules:
		w.writeModules(&sb, report)
	case SectionModuleOrders:
		w.writeModuleOrders(&sb, report)
	case SectionOrders:
		w.writeOrders(&sb, report)
	case SectionTraces:
		w.writeTraces(&sb, report)
	case SectionSlabs:
		w.writeSlabs(&sb, report)
	case SectionSummary:
		w.writeSummary(&sb, report)
	}

	return io.WriteString(w.output, sb.String())
}

// memCell renders a page count in the configured unit, right-alignable.
// UnitKB keeps exact integers; MB and GB use two decimals.
func (w *TextWriter) memCell(pages int64) string {
	if w.unit == model.UnitKB {
		return strconv.FormatInt(pages*model.PageSizeKB, 10)
	}
	val, _ := w.unit.Convert(pages)
	return fmt.Sprintf("%.2f", val)
}

// limit applies the configured top-N cutoff to a row count.
func (w *TextWriter) limit(n int) int {
	if w.top > 0 && n > w.top {
		return w.top
	}
	return n
}

// writeModules renders the by-module table, sorted by pages descending.
func (w *TextWriter) writeModules(sb *strings.Builder, report *model.Report) {
	fmt.Fprintf(sb, "%10s %10s %10s %-10s\n", "Count", "Pages", w.unit.ColumnHeader(), "Module")

	rows := report.Modules
	for _, row := range rows[:w.limit(len(rows))] {
		fmt.Fprintf(sb, "%10d %10d %10s %-10s\n", row.Count, row.Pages, w.memCell(row.Pages), row.Module)
	}
}

// writeModuleOrders renders the by-(module, order) table.
func (w *TextWriter) writeModuleOrders(sb *strings.Builder, report *model.Report) {
	fmt.Fprintf(sb, "%10s %10s %10s %10s %-10s\n", "Count", "Pages", w.unit.ColumnHeader(), "Order", "Module")

	for _, row := range report.ModuleOrders {
		fmt.Fprintf(sb, "%10d %10d %10s %10d %-10s\n", row.Count, row.Pages, w.memCell(row.Pages), row.Order, row.Module)
	}
}

// writeOrders renders the order-only totals table with its Total row.
func (w *TextWriter) writeOrders(sb *strings.Builder, report *model.Report) {
	rule := strings.Repeat("=", 35)

	fmt.Fprintf(sb, "%-10s %10s %15s\n", "Order", "Pages", "Memory (KB)")
	sb.WriteString(rule)
	sb.WriteString("\n")

	for _, row := range report.Orders {
		fmt.Fprintf(sb, "%-10d %10d %15d\n", row.Order, row.Pages, row.Kbytes())
	}

	sb.WriteString(rule)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "%-10s %10d %15d\n", "Total", report.TotalOrderPages, report.TotalOrderPages*model.PageSizeKB)
}

// writeTraces renders the most frequent call traces.
func (w *TextWriter) writeTraces(sb *strings.Builder, report *model.Report) {
	traces := report.Traces
	n := w.limit(len(traces))

	fmt.Fprintf(sb, "Top %d most commonly seen call traces:\n", n)

	for i, tr := range traces[:n] {
		val, label := w.unit.Convert(tr.Pages)
		fmt.Fprintf(sb, "\nCall Trace #%d (seen %d times, %d pages, %.2f %s):\n",
			i+1, tr.Count, tr.Pages, val, label)
		for _, line := range tr.Lines {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
}

// writeSlabs renders slab allocator usage: the per-function totals table
// followed by the slab vs non-slab page split per order.
func (w *TextWriter) writeSlabs(sb *strings.Builder, report *model.Report) {
	rule := strings.Repeat("=", 50)
	w.writeTopTable(sb, rule, "Slab Functions", slabNames(report.Slabs))
	sb.WriteString("\n")

	_, label := w.unit.Convert(0)
	divider := strings.Repeat("-", 70)

	fmt.Fprintf(sb, "%-10s%-20s%-20s%-20s\n",
		"Order", "Slabs ("+label+")", "Non Slabs ("+label+")", "Total ("+label+")")
	sb.WriteString(divider)
	sb.WriteString("\n")

	var slabTotal, nonSlabTotal int64
	for _, row := range report.SlabOrders {
		fmt.Fprintf(sb, "%-10d%-20s%-20s%-20s\n",
			row.Order,
			w.memValueCell(row.SlabPages),
			w.memValueCell(row.NonSlabPages),
			w.memValueCell(row.TotalPages()),
		)
		slabTotal += row.SlabPages
		nonSlabTotal += row.NonSlabPages
	}

	sb.WriteString(divider)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "%-10s%-20s%-20s%-20s\n",
		"Total",
		w.memValueCell(slabTotal),
		w.memValueCell(nonSlabTotal),
		w.memValueCell(slabTotal+nonSlabTotal),
	)
}

// memValueCell renders a page count as a decimal memory value without the
// unit label, for columns that carry the unit in their header.
func (w *TextWriter) memValueCell(pages int64) string {
	val, _ := w.unit.Convert(pages)
	return fmt.Sprintf("%.2f", val)
}

// writeSummary renders the overall summary: totals, skip statistics, and
// the top modules and processes. With a module filter set, the ranked
// tables are replaced by the processes allocating through that module.
func (w *TextWriter) writeSummary(sb *strings.Builder, report *model.Report) {
	rule := strings.Repeat("=", 50)

	// Grouped digits for the headline totals; multi-gigabyte dumps produce
	// page counts that are unreadable without separators.
	p := message.NewPrinter(language.English)

	fmt.Fprintf(sb, "Input: %s\n", report.InputFile)
	val, label := w.unit.Convert(report.TotalPages)
	sb.WriteString(p.Sprintf("Allocations: %d    Pages: %d    Memory: %.2f %s\n",
		report.TotalAllocations, report.TotalPages, val, label))

	stats := report.Stats
	if stats.MissingOrder > 0 || stats.NoModule > 0 || stats.BadLines > 0 {
		fmt.Fprintf(sb, "Skipped: %d blocks without order, %d without module, %d bad lines\n",
			stats.MissingOrder, stats.NoModule, stats.BadLines)
	}
	sb.WriteString("\n")

	if w.filterModule != "" {
		rows := processesForModule(report.ProcessModules, w.filterModule)
		if len(rows) == 0 {
			fmt.Fprintf(sb, "No allocations found for module '%s'.\n", w.filterModule)
			return
		}
		w.writeTopTable(sb, rule, "Processes using module '"+w.filterModule+"'", rows)
		return
	}

	w.writeTopTable(sb, rule, "Modules", moduleNames(report.Modules))
	sb.WriteString("\n")
	w.writeTopTable(sb, rule, "Processes", processNames(report.Processes))
}

// namedRow is a (name, count, pages) row for ranked summary tables.
type namedRow struct {
	name  string
	count int64
	pages int64
}

// moduleNames converts module rows for the summary table.
func moduleNames(rows []model.ModuleRow) []namedRow {
	out := make([]namedRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, namedRow{name: r.Module, count: r.Count, pages: r.Pages})
	}
	return out
}

// processNames converts process rows for the summary table.
func processNames(rows []model.ProcessRow) []namedRow {
	out := make([]namedRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, namedRow{name: r.Process, count: r.Count, pages: r.Pages})
	}
	return out
}

// slabNames converts slab function rows for the ranked table.
func slabNames(rows []model.SlabRow) []namedRow {
	out := make([]namedRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, namedRow{name: r.Function, count: r.Count, pages: r.Pages})
	}
	return out
}

// processesForModule picks the cross rows of one module. The cross table
// is sorted pages-descending within a module, so the slice stays ranked.
func processesForModule(rows []model.ProcessModuleRow, module string) []namedRow {
	var out []namedRow
	for _, r := range rows {
		if r.Module == module {
			out = append(out, namedRow{name: r.Process, count: r.Count, pages: r.Pages})
		}
	}
	return out
}

// writeTopTable renders one ranked table of the summary section.
func (w *TextWriter) writeTopTable(sb *strings.Builder, rule, label string, rows []namedRow) {
	n := w.limit(len(rows))
	if w.top > 0 {
		fmt.Fprintf(sb, "Top %d %s:\n", n, label)
	} else {
		fmt.Fprintf(sb, "%s:\n", label)
	}
	sb.WriteString(rule)
	sb.WriteString("\n")

	var totalCount, totalPages int64
	for _, row := range rows[:n] {
		val, unitLabel := w.unit.Convert(row.pages)
		fmt.Fprintf(sb, "%-25s%15d%15.2f %s\n", row.name, row.count, val, unitLabel)
		totalCount += row.count
		totalPages += row.pages
	}

	sb.WriteString(strings.Repeat("-", 50))
	sb.WriteString("\n")
	val, unitLabel := w.unit.Convert(totalPages)
	fmt.Fprintf(sb, "%-25s%15d%15.2f %s\n", "Total", totalCount, val, unitLabel)
	sb.WriteString(rule)
	sb.WriteString("\n")
}
