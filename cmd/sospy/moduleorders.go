package main

import (
	"github.com/spare00/sospy/internal/report"
	"github.com/spf13/cobra"
)

// NewModuleOrdersCmd creates the module-orders command.
func NewModuleOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module-orders <page_owner_file>",
		Short: "Summarize page allocations by module and allocation order",
		Long: `Module-orders aggregates every allocation block of a page_owner dump by
the (module, order) pair and prints one row per pair, sorted by module
name and then by order.

Columns: Count, Pages, Kbytes, Order, Module. Useful for spotting a
driver that leaks a specific allocation size.

Example:
  sospy module-orders page_owner.txt`,
		Args: cobra.ExactArgs(1),
		RunE: runModuleOrdersCmd,
	}

	addReportFlags(cmd)

	return cmd
}

// runModuleOrdersCmd executes the module-orders command.
func runModuleOrdersCmd(cmd *cobra.Command, args []string) error {
	return runReportCmd(cmd, args, report.SectionModuleOrders, 0)
}
