package main

import (
	"github.com/spare00/sospy/internal/report"
	"github.com/spf13/cobra"
)

// NewSlabsCmd creates the slabs command.
func NewSlabsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slabs <page_owner_file>",
		Short: "Summarize slab allocator usage",
		Long: `Slabs classifies allocations as slab or non-slab by matching slab
allocator functions (kmem_cache_alloc, __kmalloc and friends) in their
call traces. It prints the heaviest slab functions and the slab vs
non-slab page split per allocation order.

A dump dominated by slab allocations points at kernel object churn
rather than driver buffers.

Examples:
  # Slab usage breakdown
  sospy slabs page_owner.txt

  # Five heaviest slab functions, totals in gigabytes
  sospy slabs --top 5 --unit G page_owner.txt`,
		Args: cobra.ExactArgs(1),
		RunE: runSlabsCmd,
	}

	cmd.Flags().IntP("top", "t", 0, "Limit output to the N heaviest slab functions (0 = all)")
	addReportFlags(cmd)

	return cmd
}

// runSlabsCmd executes the slabs command.
func runSlabsCmd(cmd *cobra.Command, args []string) error {
	return runReportCmd(cmd, args, report.SectionSlabs, 0)
}
