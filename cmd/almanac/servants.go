package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/summon-almanac/internal/catalog"
	"github.com/Veraticus/summon-almanac/internal/cli"
	"github.com/Veraticus/summon-almanac/internal/config"
	"github.com/Veraticus/summon-almanac/internal/wiki"
)

func servantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "servants",
		Short: "Rebuild the servant roster from the wiki",
		Long: `Read every page in the wiki's servant roster category, parse each profile
and save the roster to the database and to the catalog file.

Harvesting resolves servant names against this roster, so run it before the
first harvest and whenever new servants are released.`,
		RunE: runServants,
	}
}

func runServants(cmd *cobra.Command, _ []string) error {
	_, source, wikiCfg, err := openWiki(slog.Default())
	if err != nil {
		return err
	}

	store, err := initStorage(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close storage", "error", closeErr)
		}
	}()

	slog.Info(cli.FormatTitle("Scraping servant roster"))

	scraper := catalog.NewScraper(wiki.NewCache(source), source, cli.NewProgressBar(os.Stderr), slog.Default(), wikiCfg.Concurrency)
	servants, err := scraper.Scrape(cmd.Context())
	if err != nil {
		return err
	}

	if err := store.SaveServants(cmd.Context(), servants); err != nil {
		return fmt.Errorf("failed to save servants: %w", err)
	}

	path := config.ExpandPath(catalogPath())
	if err := catalog.Save(path, servants); err != nil {
		return err
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("✓ Saved %d servants", len(servants))), "catalog", path)
	return nil
}
