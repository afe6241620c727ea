package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sospy.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sospy",
		Short: "Analyze Linux kernel page_owner dumps",
		Long: `sospy analyzes Linux kernel page_owner dumps and summarizes page
allocations by kernel module, allocation order, owning process, slab
allocator usage, and call trace.

Collect a dump with:
  cat /sys/kernel/debug/page_owner > page_owner.txt

then point any report command at the file.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewModulesCmd())
	cmd.AddCommand(NewModuleOrdersCmd())
	cmd.AddCommand(NewOrdersCmd())
	cmd.AddCommand(NewTracesCmd())
	cmd.AddCommand(NewSlabsCmd())
	cmd.AddCommand(NewSummaryCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler)
}
