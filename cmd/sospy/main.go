// Package main provides the entry point for the sospy CLI.
//
// sospy analyzes Linux kernel page_owner dumps (typically collected in
// sosreports) and summarizes page allocations by kernel module, allocation
// order, owning process, and call trace.
//
// Usage:
//
//	sospy modules <page_owner_file>
//	sospy orders <page_owner_file>
//	sospy summary <page_owner_file>...
//
// See --help for all available options.
package main

// main is the entry point for sospy.
func main() {
	Execute()
}
