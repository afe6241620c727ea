package main

import (
	"github.com/spare00/sospy/internal/config"
	"github.com/spare00/sospy/internal/report"
	"github.com/spf13/cobra"
)

// NewTracesCmd creates the traces command.
func NewTracesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "traces <page_owner_file>",
		Short: "Show the most frequent allocation call traces",
		Long: `Traces deduplicates the call traces of a page_owner dump and prints the
most frequently seen ones with their occurrence count and page totals.

A handful of hot call paths usually accounts for most of the allocated
memory; this report finds them without reading the whole dump by hand.

Examples:
  # The three most common traces (default)
  sospy traces page_owner.txt

  # Top ten, with totals in gigabytes
  sospy traces --top 10 --unit G page_owner.txt

  # Only the traces of one process
  sospy traces --process systemd page_owner.txt`,
		Args: cobra.ExactArgs(1),
		RunE: runTracesCmd,
	}

	cmd.Flags().IntP("top", "t", config.DefaultTopTraces, "Number of traces to show")
	cmd.Flags().String("process", "", "Show only traces of allocations made by this process")
	addReportFlags(cmd)

	return cmd
}

// runTracesCmd executes the traces command.
func runTracesCmd(cmd *cobra.Command, args []string) error {
	return runReportCmd(cmd, args, report.SectionTraces, config.DefaultTopTraces)
}
