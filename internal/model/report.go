package model

import "time"

// Report is the full analysis result for one page_owner dump.
// It contains every aggregation sospy computes; report writers pick the
// sections they need, and the history database stores the whole thing
// as JSON.
//
// Design decision: We use a single struct holding all aggregations rather
// than one result type per report variant. The input is parsed once per
// run anyway, and a single serializable result keeps database storage and
// the JSON writer trivial.
type Report struct {
	// InputFile is the path of the analyzed page_owner dump.
	InputFile string `json:"input_file"`

	// GeneratedAt is the timestamp when the analysis ran.
	GeneratedAt time.Time `json:"generated_at"`

	// Modules holds per-module totals, sorted by pages descending.
	Modules []ModuleRow `json:"modules"`

	// ModuleOrders holds per-(module, order) totals, sorted by module
	// ascending then order ascending.
	ModuleOrders []ModuleOrderRow `json:"module_orders"`

	// Orders holds per-order page totals from the loose line scan,
	// sorted by order ascending.
	Orders []OrderRow `json:"orders"`

	// TotalOrderPages is the grand total of pages across all orders seen
	// by the loose line scan.
	TotalOrderPages int64 `json:"total_order_pages"`

	// Processes holds per-process totals, sorted by pages descending.
	// Empty when the dump format carries no pid/process header fields.
	Processes []ProcessRow `json:"processes,omitempty"`

	// Slabs holds per-function totals for slab-related allocator
	// functions seen in call traces, sorted by pages descending.
	Slabs []SlabRow `json:"slabs,omitempty"`

	// SlabOrders splits each order's pages into slab and non-slab
	// allocations, sorted by order ascending.
	SlabOrders []SlabOrderRow `json:"slab_orders,omitempty"`

	// ProcessModules holds the (process, module) cross totals, sorted by
	// module ascending then pages descending.
	ProcessModules []ProcessModuleRow `json:"process_modules,omitempty"`

	// Traces holds the most frequent call traces, sorted by count
	// descending.
	Traces []TraceEntry `json:"traces,omitempty"`

	// TotalAllocations is the number of allocation events folded from
	// parsed blocks.
	TotalAllocations int64 `json:"total_allocations"`

	// TotalPages is the page total across all folded allocation events.
	TotalPages int64 `json:"total_pages"`

	// Stats reports blocks and lines skipped during parsing.
	Stats ParseStats `json:"stats"`
}

// NewReport creates an empty Report for the given input file.
func NewReport(inputFile string) *Report {
	return &Report{
		InputFile:   inputFile,
		GeneratedAt: time.Now(),
	}
}

// TotalKbytes returns the kilobyte total across all folded allocations.
func (r *Report) TotalKbytes() int64 {
	return r.TotalPages * PageSizeKB
}

// ModuleRow is one row of the by-module report.
type ModuleRow struct {
	// Module is the kernel module/driver name.
	Module string `json:"module"`

	// Count is the number of allocations attributed to the module.
	Count int64 `json:"count"`

	// Pages is the page total across those allocations.
	Pages int64 `json:"pages"`
}

// Kbytes returns the row's memory total in kilobytes.
// Derived, never stored: kilobytes are always pages * 4.
func (r ModuleRow) Kbytes() int64 { return r.Pages * PageSizeKB }

// ModuleOrderRow is one row of the by-module-and-order report.
type ModuleOrderRow struct {
	// Module is the kernel module/driver name.
	Module string `json:"module"`

	// Order is the allocation order shared by all counted allocations.
	Order int `json:"order"`

	// Count is the number of allocations for this (module, order) pair.
	Count int64 `json:"count"`

	// Pages is the page total, always Count * 2^Order.
	Pages int64 `json:"pages"`
}

// Kbytes returns the row's memory total in kilobytes.
func (r ModuleOrderRow) Kbytes() int64 { return r.Pages * PageSizeKB }

// OrderRow is one row of the order-only report.
type OrderRow struct {
	// Order is the allocation order.
	Order int `json:"order"`

	// Pages is the page total contributed by allocations of this order.
	Pages int64 `json:"pages"`
}

// Kbytes returns the row's memory total in kilobytes.
func (r OrderRow) Kbytes() int64 { return r.Pages * PageSizeKB }

// ProcessRow is one row of the per-process summary.
type ProcessRow struct {
	// Process is the process name from the allocation header.
	Process string `json:"process"`

	// Count is the number of allocations attributed to the process.
	Count int64 `json:"count"`

	// Pages is the page total across those allocations.
	Pages int64 `json:"pages"`
}

// Kbytes returns the row's memory total in kilobytes.
func (r ProcessRow) Kbytes() int64 { return r.Pages * PageSizeKB }

// SlabRow is one row of the slab allocator function report.
type SlabRow struct {
	// Function is the allocator function name, without offsets.
	Function string `json:"function"`

	// Count is the number of trace lines naming the function.
	Count int64 `json:"count"`

	// Pages is the page total of the blocks those lines appeared in.
	Pages int64 `json:"pages"`
}

// Kbytes returns the row's memory total in kilobytes.
func (r SlabRow) Kbytes() int64 { return r.Pages * PageSizeKB }

// SlabOrderRow is one row of the slab vs non-slab split by order.
type SlabOrderRow struct {
	// Order is the allocation order.
	Order int `json:"order"`

	// SlabPages is the page total of slab-classified blocks.
	SlabPages int64 `json:"slab_pages"`

	// NonSlabPages is the page total of the remaining blocks.
	NonSlabPages int64 `json:"non_slab_pages"`
}

// TotalPages returns the combined slab and non-slab page total.
func (r SlabOrderRow) TotalPages() int64 { return r.SlabPages + r.NonSlabPages }

// ProcessModuleRow is one cell of the process-by-module cross table.
type ProcessModuleRow struct {
	// Process is the process name from the allocation header.
	Process string `json:"process"`

	// Module is the kernel module attributed to the allocation.
	Module string `json:"module"`

	// Count is the number of allocations for this pair.
	Count int64 `json:"count"`

	// Pages is the page total across those allocations.
	Pages int64 `json:"pages"`
}

// Kbytes returns the row's memory total in kilobytes.
func (r ProcessModuleRow) Kbytes() int64 { return r.Pages * PageSizeKB }

// TraceEntry is one deduplicated call trace with its occurrence totals.
type TraceEntry struct {
	// Lines are the stack trace lines as they appeared in the first
	// occurrence of this trace.
	Lines []string `json:"lines"`

	// Count is how many blocks carried this exact trace.
	Count int64 `json:"count"`

	// Pages is the page total across those blocks.
	Pages int64 `json:"pages"`
}

// Kbytes returns the trace's memory total in kilobytes.
func (t TraceEntry) Kbytes() int64 { return t.Pages * PageSizeKB }
