package aggregate

import (
	"sort"

	"github.com/spare00/sospy/internal/model"
)

// Mode selects the grouping key for an Aggregator.
type Mode int

// Grouping modes. The fold logic is identical in both; only the key
// projection differs.
const (
	// ByModule groups allocations by module name alone.
	ByModule Mode = iota

	// ByModuleOrder groups allocations by (module, order) pair.
	ByModuleOrder
)

// key is the composite grouping key. In ByModule mode the order component
// is always zero.
type key struct {
	module string
	order  int
}

// entry holds the running totals for one key.
type entry struct {
	count int64
	pages int64
}

// Aggregator folds allocation events into per-key totals.
// It owns its table exclusively for one run: construct, fold the full
// event stream, then read the rows. Events with an empty module are
// discarded, per the parse contract.
type Aggregator struct {
	mode  Mode
	table map[key]*entry

	// keys preserves first-seen order so ties sort stably.
	keys []key

	totalCount int64
	totalPages int64
}

// New creates an Aggregator for the given grouping mode.
func New(mode Mode) *Aggregator {
	return &Aggregator{
		mode:  mode,
		table: make(map[key]*entry),
	}
}

// Fold adds one allocation event to the aggregate. Each event contributes
// exactly 1 to the key's count and 2^order to its pages.
func (a *Aggregator) Fold(ev model.Allocation) {
	if ev.Module == "" {
		return
	}

	k := key{module: ev.Module}
	if a.mode == ByModuleOrder {
		k.order = ev.Order
	}

	e, ok := a.table[k]
	if !ok {
		e = &entry{}
		a.table[k] = e
		a.keys = append(a.keys, k)
	}
	e.count++
	e.pages += ev.Pages

	a.totalCount++
	a.totalPages += ev.Pages
}

// TotalCount returns the number of events folded.
func (a *Aggregator) TotalCount() int64 { return a.totalCount }

// TotalPages returns the page total across all folded events.
func (a *Aggregator) TotalPages() int64 { return a.totalPages }

// ModuleRows returns the per-module rows sorted by pages descending.
// Ties keep first-seen order. Only meaningful in ByModule mode.
func (a *Aggregator) ModuleRows() []model.ModuleRow {
	rows := make([]model.ModuleRow, 0, len(a.keys))
	for _, k := range a.keys {
		e := a.table[k]
		rows = append(rows, model.ModuleRow{
			Module: k.module,
			Count:  e.count,
			Pages:  e.pages,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Pages > rows[j].Pages
	})
	return rows
}

// ModuleOrderRows returns the per-(module, order) rows sorted by module
// ascending, then order ascending. Only meaningful in ByModuleOrder mode.
func (a *Aggregator) ModuleOrderRows() []model.ModuleOrderRow {
	rows := make([]model.ModuleOrderRow, 0, len(a.keys))
	for _, k := range a.keys {
		e := a.table[k]
		rows = append(rows, model.ModuleOrderRow{
			Module: k.module,
			Order:  k.order,
			Count:  e.count,
			Pages:  e.pages,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Module != rows[j].Module {
			return rows[i].Module < rows[j].Module
		}
		return rows[i].Order < rows[j].Order
	})
	return rows
}

// OrderAggregator folds per-line (order, pages) contributions from the
// loose line scanner, independent of module attribution. Kept separate
// from Aggregator because its fold input differs: it consumes scanner
// hits, not allocation events.
type OrderAggregator struct {
	table      map[int]int64
	totalPages int64
}

// NewOrderAggregator creates an OrderAggregator.
func NewOrderAggregator() *OrderAggregator {
	return &OrderAggregator{table: make(map[int]int64)}
}

// Fold adds one line's contribution to the per-order totals.
func (a *OrderAggregator) Fold(order int, pages int64) {
	a.table[order] += pages
	a.totalPages += pages
}

// TotalPages returns the grand total of pages across all orders.
func (a *OrderAggregator) TotalPages() int64 { return a.totalPages }

// Rows returns one row per distinct order, sorted by order ascending.
func (a *OrderAggregator) Rows() []model.OrderRow {
	rows := make([]model.OrderRow, 0, len(a.table))
	for order, pages := range a.table {
		rows = append(rows, model.OrderRow{Order: order, Pages: pages})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Order < rows[j].Order
	})
	return rows
}

// ProcessAggregator folds allocation events into per-process totals.
// Events without process attribution fold into the "Unknown" bucket so
// dumps in the older header format still produce a meaningful summary.
type ProcessAggregator struct {
	table map[string]*entry
	keys  []string
}

// NewProcessAggregator creates a ProcessAggregator.
func NewProcessAggregator() *ProcessAggregator {
	return &ProcessAggregator{table: make(map[string]*entry)}
}

// Fold adds one allocation event to the per-process totals.
func (a *ProcessAggregator) Fold(ev model.Allocation) {
	name := ev.Process
	if name == "" {
		name = "Unknown"
	}

	e, ok := a.table[name]
	if !ok {
		e = &entry{}
		a.table[name] = e
		a.keys = append(a.keys, name)
	}
	e.count++
	e.pages += ev.Pages
}

// Rows returns the per-process rows sorted by pages descending, ties in
// first-seen order.
func (a *ProcessAggregator) Rows() []model.ProcessRow {
	rows := make([]model.ProcessRow, 0, len(a.keys))
	for _, name := range a.keys {
		e := a.table[name]
		rows = append(rows, model.ProcessRow{
			Process: name,
			Count:   e.count,
			Pages:   e.pages,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Pages > rows[j].Pages
	})
	return rows
}

// pmKey is the (process, module) grouping key of the cross table.
type pmKey struct {
	process string
	module  string
}

// ProcessModuleAggregator folds allocation events into (process, module)
// cross totals, answering which processes drive a given module's
// allocations. Events without a module are discarded; events without
// process attribution fold into the "Unknown" bucket.
type ProcessModuleAggregator struct {
	table map[pmKey]*entry
	keys  []pmKey
}

// NewProcessModuleAggregator creates a ProcessModuleAggregator.
func NewProcessModuleAggregator() *ProcessModuleAggregator {
	return &ProcessModuleAggregator{table: make(map[pmKey]*entry)}
}

// Fold adds one allocation event to the cross totals.
func (a *ProcessModuleAggregator) Fold(ev model.Allocation) {
	if ev.Module == "" {
		return
	}

	k := pmKey{process: ev.Process, module: ev.Module}
	if k.process == "" {
		k.process = "Unknown"
	}

	e, ok := a.table[k]
	if !ok {
		e = &entry{}
		a.table[k] = e
		a.keys = append(a.keys, k)
	}
	e.count++
	e.pages += ev.Pages
}

// Rows returns the cross rows sorted by module ascending, then pages
// descending within a module, so per-module slices come out pre-ranked.
func (a *ProcessModuleAggregator) Rows() []model.ProcessModuleRow {
	rows := make([]model.ProcessModuleRow, 0, len(a.keys))
	for _, k := range a.keys {
		e := a.table[k]
		rows = append(rows, model.ProcessModuleRow{
			Process: k.process,
			Module:  k.module,
			Count:   e.count,
			Pages:   e.pages,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Module != rows[j].Module {
			return rows[i].Module < rows[j].Module
		}
		return rows[i].Pages > rows[j].Pages
	})
	return rows
}
