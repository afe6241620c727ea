// Package model defines the core data structures used throughout sospy.
//
// This package contains the following main types:
//   - Allocation: A single parsed page allocation event from a page_owner dump
//   - Report: The full analysis result for one input file
//   - ParseStats: Counters for blocks the parser had to skip
//   - Unit: Memory unit conversion (kB/MB/GB) for report rendering
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (parser, aggregate, analyzer, report,
// database) need to use these types, so centralizing them prevents import
// cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
