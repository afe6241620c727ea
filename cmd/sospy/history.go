package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spare00/sospy/internal/config"
	"github.com/spare00/sospy/internal/database"
	"github.com/spare00/sospy/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command inspects analyses recorded with --save.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List analyses saved in the history database",
		Long: `History lists page_owner analyses previously recorded with --save and
can re-render a stored report without re-reading the original dump.

Examples:
  # Latest saved analyses
  sospy history

  # Show a stored report as JSON (IDs come from the listing)
  sospy history --show 5`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of analyses to list (0 = all)")
	cmd.Flags().Int64("show", 0, "Print the stored report with this ID as JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	showID, err := cmd.Flags().GetInt64("show")
	if err != nil {
		return err
	}

	// Opening read-only: listing history must not create an empty database.
	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         false,
	})
	if err != nil {
		return fmt.Errorf("no saved analyses (run a report with --save first): %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if showID > 0 {
		return showAnalysis(ctx, db, showID)
	}
	return listAnalyses(ctx, db, limit)
}

// showAnalysis prints one stored report as pretty JSON.
func showAnalysis(ctx context.Context, db *database.HistoryDB, id int64) error {
	rep, err := db.GetAnalysis(ctx, id)
	if err != nil {
		return err
	}
	if rep == nil {
		return fmt.Errorf("no analysis with ID %d", id)
	}

	_, err = report.NewJSONWriter(os.Stdout, report.WithPrettyPrint()).Write(rep)
	return err
}

// listAnalyses prints the saved-analysis listing.
func listAnalyses(ctx context.Context, db *database.HistoryDB, limit int) error {
	records, err := db.ListAnalyses(ctx, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No saved analyses.")
		return nil
	}

	fmt.Printf("%6s  %-19s  %12s  %12s  %s\n", "ID", "Date", "Allocations", "Pages", "Input")
	for _, rec := range records {
		fmt.Printf("%6d  %-19s  %12d  %12d  %s\n",
			rec.ID,
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.TotalAllocations,
			rec.TotalPages,
			rec.InputFile,
		)
	}

	return nil
}
