package main

import (
	"github.com/spare00/sospy/internal/report"
	"github.com/spf13/cobra"
)

// NewOrdersCmd creates the orders command.
func NewOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders <page_owner_file>",
		Short: "Summarize pages by allocation order",
		Long: `Orders sums the pages contributed by every allocation order in a
page_owner dump, ignoring module attribution entirely, and prints one
row per order plus a grand total.

This report uses a looser matching rule than the module reports: any
line beginning with "Page" whose fifth field is a numeric order counts.
It works on dumps too truncated for full block parsing.

Example:
  sospy orders page_owner.txt`,
		Args: cobra.ExactArgs(1),
		RunE: runOrdersCmd,
	}

	addReportFlags(cmd)

	return cmd
}

// runOrdersCmd executes the orders command.
func runOrdersCmd(cmd *cobra.Command, args []string) error {
	return runReportCmd(cmd, args, report.SectionOrders, 0)
}
