package aggregate

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/spare00/sospy/internal/model"
)

// TraceAggregator deduplicates call traces and counts their occurrences.
// Traces are keyed by the SHA-256 of their joined lines; the lines of the
// first occurrence are kept for display.
type TraceAggregator struct {
	table map[string]*traceEntry
	keys  []string
}

// traceEntry holds the totals and display lines for one distinct trace.
type traceEntry struct {
	lines []string
	count int64
	pages int64
}

// NewTraceAggregator creates a TraceAggregator.
func NewTraceAggregator() *TraceAggregator {
	return &TraceAggregator{table: make(map[string]*traceEntry)}
}

// Fold adds one allocation event's trace to the aggregate.
// Events without trace lines are ignored.
func (a *TraceAggregator) Fold(ev model.Allocation) {
	if len(ev.Trace) == 0 {
		return
	}

	sum := sha256.Sum256([]byte(strings.Join(ev.Trace, "\n")))
	k := hex.EncodeToString(sum[:])

	e, ok := a.table[k]
	if !ok {
		e = &traceEntry{lines: append([]string(nil), ev.Trace...)}
		a.table[k] = e
		a.keys = append(a.keys, k)
	}
	e.count++
	e.pages += ev.Pages
}

// Top returns the n most frequent traces, sorted by count descending with
// ties in first-seen order. n <= 0 returns all traces.
func (a *TraceAggregator) Top(n int) []model.TraceEntry {
	entries := make([]model.TraceEntry, 0, len(a.keys))
	for _, k := range a.keys {
		e := a.table[k]
		entries = append(entries, model.TraceEntry{
			Lines: e.lines,
			Count: e.count,
			Pages: e.pages,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
