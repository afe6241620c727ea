package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/spare00/sospy/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for pasting analysis results into issues and
// support cases.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides type-safe tables, lists, and code blocks.
type MarkdownWriter struct {
	baseWriter

	// section selects which aggregation to render.
	section Section
}

// NewMarkdownWriter creates a MarkdownWriter rendering the given section.
func NewMarkdownWriter(output io.Writer, section Section) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		section:    section,
	}
}

// Write renders the configured section of the report as Markdown.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("page_owner Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Input", "`" + report.InputFile + "`"},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Allocations", strconv.FormatInt(report.TotalAllocations, 10)},
			{"Pages", strconv.FormatInt(report.TotalPages, 10)},
		},
	})
	md.PlainText("")

	switch w.section {
	case SectionModules:
		w.writeModules(md, report)
	case SectionModuleOrders:
		w.writeModuleOrders(md, report)
	case SectionOrders:
		w.writeOrders(md, report)
	case SectionTraces:
		w.writeTraces(md, report)
	case SectionSlabs:
		w.writeSlabs(md, report)
	case SectionSummary:
		w.writeModules(md, report)
		w.writeProcesses(md, report)
	}

	return len(md.String()), md.Build()
}

// writeModules renders the by-module table.
func (w *MarkdownWriter) writeModules(md *markdown.Markdown, report *model.Report) {
	md.H2("Allocations by Module")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Modules))
	for _, row := range report.Modules {
		rows = append(rows, []string{
			row.Module,
			strconv.FormatInt(row.Count, 10),
			strconv.FormatInt(row.Pages, 10),
			strconv.FormatInt(row.Kbytes(), 10),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Module", "Count", "Pages", "Kbytes"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeModuleOrders renders the by-(module, order) table.
func (w *MarkdownWriter) writeModuleOrders(md *markdown.Markdown, report *model.Report) {
	md.H2("Allocations by Module and Order")
	md.PlainText("")

	rows := make([][]string, 0, len(report.ModuleOrders))
	for _, row := range report.ModuleOrders {
		rows = append(rows, []string{
			row.Module,
			strconv.Itoa(row.Order),
			strconv.FormatInt(row.Count, 10),
			strconv.FormatInt(row.Pages, 10),
			strconv.FormatInt(row.Kbytes(), 10),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Module", "Order", "Count", "Pages", "Kbytes"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeOrders renders the order-only totals table with a Total row.
func (w *MarkdownWriter) writeOrders(md *markdown.Markdown, report *model.Report) {
	md.H2("Pages by Order")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Orders)+1)
	for _, row := range report.Orders {
		rows = append(rows, []string{
			strconv.Itoa(row.Order),
			strconv.FormatInt(row.Pages, 10),
			strconv.FormatInt(row.Kbytes(), 10),
		})
	}
	rows = append(rows, []string{
		"**Total**",
		"**" + strconv.FormatInt(report.TotalOrderPages, 10) + "**",
		"**" + strconv.FormatInt(report.TotalOrderPages*model.PageSizeKB, 10) + "**",
	})
	md.Table(markdown.TableSet{
		Header: []string{"Order", "Pages", "Kbytes"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeTraces renders the most frequent call traces as code blocks.
func (w *MarkdownWriter) writeTraces(md *markdown.Markdown, report *model.Report) {
	md.H2("Most Frequent Call Traces")

	for i, tr := range report.Traces {
		md.PlainText("")
		md.H3("Trace #" + strconv.Itoa(i+1) +
			" (seen " + strconv.FormatInt(tr.Count, 10) + " times, " +
			strconv.FormatInt(tr.Pages, 10) + " pages)")

		var block string
		for _, line := range tr.Lines {
			block += line + "\n"
		}
		md.CodeBlocks(markdown.SyntaxHighlightNone, block)
	}
	md.PlainText("")
}

// writeSlabs renders the slab function table and the per-order split.
func (w *MarkdownWriter) writeSlabs(md *markdown.Markdown, report *model.Report) {
	md.H2("Slab Allocator Functions")
	md.PlainText("")

	funcRows := make([][]string, 0, len(report.Slabs))
	for _, row := range report.Slabs {
		funcRows = append(funcRows, []string{
			row.Function,
			strconv.FormatInt(row.Count, 10),
			strconv.FormatInt(row.Pages, 10),
			strconv.FormatInt(row.Kbytes(), 10),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Function", "Count", "Pages", "Kbytes"},
		Rows:   funcRows,
	})
	md.PlainText("")

	md.H2("Slab vs Non-Slab Pages by Order")
	md.PlainText("")

	orderRows := make([][]string, 0, len(report.SlabOrders))
	for _, row := range report.SlabOrders {
		orderRows = append(orderRows, []string{
			strconv.Itoa(row.Order),
			strconv.FormatInt(row.SlabPages, 10),
			strconv.FormatInt(row.NonSlabPages, 10),
			strconv.FormatInt(row.TotalPages(), 10),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Order", "Slab Pages", "Non-Slab Pages", "Total Pages"},
		Rows:   orderRows,
	})
	md.PlainText("")
}

// writeProcesses renders the per-process table of the summary.
func (w *MarkdownWriter) writeProcesses(md *markdown.Markdown, report *model.Report) {
	md.H2("Allocations by Process")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Processes))
	for _, row := range report.Processes {
		rows = append(rows, []string{
			row.Process,
			strconv.FormatInt(row.Count, 10),
			strconv.FormatInt(row.Pages, 10),
			strconv.FormatInt(row.Kbytes(), 10),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Process", "Count", "Pages", "Kbytes"},
		Rows:   rows,
	})
	md.PlainText("")
}
