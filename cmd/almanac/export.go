package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/summon-almanac/internal/cli"
	"github.com/Veraticus/summon-almanac/internal/export"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the JSON exports from the database",
		Long: `Rewrite the event, banner, servant and per-region debug files from the
last stored harvest without touching the wiki.`,
		RunE: runExport,
	}

	cmd.Flags().StringSliceP("region", "r", []string{"JP", "NA"}, "Regions to export")
	cmd.Flags().StringP("out", "o", "", "Export directory (default: ./data)")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	regionFlags, _ := cmd.Flags().GetStringSlice("region")
	outFlag, _ := cmd.Flags().GetString("out")

	regions, err := parseRegions(regionFlags)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close storage", "error", closeErr)
		}
	}()

	servants, err := loadServants(ctx, store)
	if err != nil {
		return err
	}
	stores, err := loadStores(ctx, store, regions)
	if err != nil {
		return err
	}

	dir := exportDir(outFlag)
	writer, err := export.NewWriter(dir, slog.Default())
	if err != nil {
		return err
	}
	if err := writer.WriteAll(servants, stores...); err != nil {
		return fmt.Errorf("failed to write exports: %w", err)
	}

	slog.Info(cli.FormatSuccess("✓ Exports written"), "dir", dir)
	return nil
}
