package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"feedbacktriage/internal/export"
	"feedbacktriage/pkg/config"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored tickets and processing log to CSV",
	Long: `Export re-writes the output CSV files from the current database state,
picking up approval decisions made since the batch ran.

Requires a persistent database driver (postgres or sqlite).`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.Driver == "memory" {
		return fmt.Errorf("export requires a persistent database driver, got %q", cfg.Database.Driver)
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	tickets, err := store.ListTickets(ctx)
	if err != nil {
		return fmt.Errorf("listing tickets: %w", err)
	}
	if err := export.WriteTickets(cfg.Output.TicketsFile, tickets); err != nil {
		return err
	}
	entries, err := store.ListLog(ctx)
	if err != nil {
		return fmt.Errorf("listing processing log: %w", err)
	}
	if err := export.WriteLog(cfg.Output.LogFile, entries); err != nil {
		return err
	}

	fmt.Printf("Exported %d tickets and %d log entries\n", len(tickets), len(entries))
	return nil
}
