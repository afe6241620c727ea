package main

import (
	"github.com/spare00/sospy/internal/report"
	"github.com/spf13/cobra"
)

// NewModulesCmd creates the modules command.
func NewModulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules <page_owner_file>",
		Short: "Summarize page allocations by kernel module",
		Long: `Modules aggregates every allocation block of a page_owner dump by the
kernel module attributed in its call trace and prints one row per module,
heaviest first.

Columns: Count (allocations), Pages (4 KiB pages), Kbytes, Module.
Blocks without a bracketed module token in their trace are skipped.

Examples:
  # Full per-module breakdown
  sospy modules page_owner.txt

  # Ten heaviest modules, totals in gigabytes
  sospy modules --top 10 --unit G page_owner.txt

  # Machine-readable output
  sospy modules --json page_owner.txt`,
		Args: cobra.ExactArgs(1),
		RunE: runModulesCmd,
	}

	cmd.Flags().IntP("top", "t", 0, "Limit output to the N heaviest modules (0 = all)")
	addReportFlags(cmd)

	return cmd
}

// runModulesCmd executes the modules command.
func runModulesCmd(cmd *cobra.Command, args []string) error {
	return runReportCmd(cmd, args, report.SectionModules, 0)
}
