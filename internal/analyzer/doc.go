// Package analyzer runs the full analysis of a page_owner dump.
//
// Analyzer wires the parser scanners to the aggregators and assembles one
// model.Report per input file. The block format and the loose line format
// use different extraction rules, so the input file is read twice: once
// for the block-based aggregations and once for the order-only totals.
//
// BatchProcessor analyzes multiple dumps concurrently with a bounded
// errgroup, for summarizing page_owner captures from several hosts in one
// invocation.
package analyzer
