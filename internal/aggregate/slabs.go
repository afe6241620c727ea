package aggregate

import (
	"regexp"
	"sort"
	"strings"

	"github.com/spare00/sospy/internal/model"
)

// slabFuncRe matches trace lines naming slab-related allocator functions
// (kmem_cache_alloc, __kmalloc, allocate_slab and friends).
var slabFuncRe = regexp.MustCompile(`(?i)kmalloc|slab|cache|kfree`)

// SlabAggregator classifies allocations as slab or non-slab by their call
// traces. It keeps two views of the same fold: per-function totals for
// every slab allocator line seen, and a slab vs non-slab page split per
// allocation order. A block counts as a slab allocation when any of its
// trace lines matches a slab allocator function.
type SlabAggregator struct {
	funcs    map[string]*entry
	funcKeys []string

	slabByOrder    map[int]int64
	nonSlabByOrder map[int]int64
}

// NewSlabAggregator creates a SlabAggregator.
func NewSlabAggregator() *SlabAggregator {
	return &SlabAggregator{
		funcs:          make(map[string]*entry),
		slabByOrder:    make(map[int]int64),
		nonSlabByOrder: make(map[int]int64),
	}
}

// Fold adds one allocation event to the slab totals. Every matching trace
// line contributes to its function's bucket; the block's pages go to the
// slab side of the order split if at least one line matched.
func (a *SlabAggregator) Fold(ev model.Allocation) {
	isSlab := false
	for _, line := range ev.Trace {
		// The header line carries mask flags and a process name, which can
		// collide with the function patterns; only stack lines count.
		if strings.HasPrefix(line, "Page allocated") {
			continue
		}
		if !slabFuncRe.MatchString(line) {
			continue
		}
		isSlab = true

		name := funcName(line)
		e, ok := a.funcs[name]
		if !ok {
			e = &entry{}
			a.funcs[name] = e
			a.funcKeys = append(a.funcKeys, name)
		}
		e.count++
		e.pages += ev.Pages
	}

	if isSlab {
		a.slabByOrder[ev.Order] += ev.Pages
	} else {
		a.nonSlabByOrder[ev.Order] += ev.Pages
	}
}

// Rows returns the per-function totals sorted by pages descending, ties in
// first-seen order.
func (a *SlabAggregator) Rows() []model.SlabRow {
	rows := make([]model.SlabRow, 0, len(a.funcKeys))
	for _, name := range a.funcKeys {
		e := a.funcs[name]
		rows = append(rows, model.SlabRow{
			Function: name,
			Count:    e.count,
			Pages:    e.pages,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Pages > rows[j].Pages
	})
	return rows
}

// OrderRows returns the slab vs non-slab page split, one row per order
// seen on either side, sorted by order ascending.
func (a *SlabAggregator) OrderRows() []model.SlabOrderRow {
	orders := make(map[int]struct{}, len(a.slabByOrder)+len(a.nonSlabByOrder))
	for order := range a.slabByOrder {
		orders[order] = struct{}{}
	}
	for order := range a.nonSlabByOrder {
		orders[order] = struct{}{}
	}

	rows := make([]model.SlabOrderRow, 0, len(orders))
	for order := range orders {
		rows = append(rows, model.SlabOrderRow{
			Order:        order,
			SlabPages:    a.slabByOrder[order],
			NonSlabPages: a.nonSlabByOrder[order],
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Order < rows[j].Order
	})
	return rows
}

// funcName extracts the function name from a trace line by cutting the
// +offset/length suffix.
func funcName(line string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(line), "+")
	return name
}
