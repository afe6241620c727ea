// Package aggregate folds allocation events into grouped totals.
//
// The Aggregator is a pure fold: it owns its table for the duration of one
// run, records are only ever added to, and results are read once the full
// input has been consumed. Sorting is done in-process with explicit
// comparators so report ordering is deterministic and locale-independent.
//
// TraceAggregator and ProcessAggregator cover the call-trace and
// per-process summaries; they follow the same fold-then-read shape.
package aggregate
