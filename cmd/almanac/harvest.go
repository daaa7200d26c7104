package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/summon-almanac/internal/catalog"
	"github.com/Veraticus/summon-almanac/internal/cli"
	"github.com/Veraticus/summon-almanac/internal/export"
	"github.com/Veraticus/summon-almanac/internal/service"
	"github.com/Veraticus/summon-almanac/internal/wiki"
)

// cachedWiki serves pages through the in-memory cache and categories from
// the underlying wiki.
type cachedWiki struct {
	*wiki.Cache
	service.CategorySource
}

func harvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Harvest summoning banners from the wiki",
		Long: `Walk every configured event list, extract the summoning banners of each
event and its subpages, consolidate them per region and save the result.

Each region replaces what was stored for it before. Unless --no-export is
given, the JSON exports are rewritten afterwards.`,
		RunE: runHarvest,
	}

	cmd.Flags().StringSliceP("region", "r", []string{"JP", "NA"}, "Regions to harvest")
	cmd.Flags().Int("year", time.Now().Year(), "Present year; its event lists also read the current-event category")
	cmd.Flags().StringP("out", "o", "", "Export directory (default: ./data)")
	cmd.Flags().String("rules", "", "Rules file (default: built-in rules)")
	cmd.Flags().Bool("no-store", false, "Do not save the harvest to the database")
	cmd.Flags().Bool("no-export", false, "Do not write the JSON exports")

	_ = viper.BindPFlag("rules.path", cmd.Flags().Lookup("rules"))
	_ = viper.BindPFlag("harvest.no_store", cmd.Flags().Lookup("no-store"))
	_ = viper.BindPFlag("harvest.no_export", cmd.Flags().Lookup("no-export"))

	return cmd
}

func runHarvest(cmd *cobra.Command, _ []string) error {
	regionFlags, _ := cmd.Flags().GetStringSlice("region")
	year, _ := cmd.Flags().GetInt("year")
	outFlag, _ := cmd.Flags().GetString("out")

	regions, err := parseRegions(regionFlags)
	if err != nil {
		return err
	}

	set, digest, err := loadRules()
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

	servants, err := loadServants(cmd.Context(), store)
	if err != nil {
		return err
	}

	_, source, wikiCfg, err := openWiki(slog.Default())
	if err != nil {
		return err
	}

	interruptHandler := cli.NewInterruptHandler(nil)
	ctx := interruptHandler.HandleInterrupts(cmd.Context(), false)
	defer interruptHandler.Stop()

	slog.Info(cli.FormatTitle("Harvesting summoning banners"))
	slog.Info("Harvest settings", "regions", regions, "year", year, "servants", len(servants), "rules", digest)

	p := &pipeline{
		wiki:        cachedWiki{Cache: wiki.NewCache(source), CategorySource: source},
		progress:    cli.NewProgressBar(os.Stderr),
		catalog:     catalog.New(servants),
		rules:       set,
		logger:      slog.Default(),
		digest:      digest,
		presentYear: year,
		prefetch:    wikiCfg.Concurrency,
	}

	results, err := p.harvest(ctx, regions)
	if err != nil {
		if interruptHandler.WasInterrupted() {
			return nil
		}
		return err
	}
	if err := p.finalize(results); err != nil {
		return err
	}

	if !viper.GetBool("harvest.no_store") {
		runs, err := p.persist(ctx, store, results)
		if err != nil {
			return err
		}
		for _, run := range runs {
			fmt.Fprintln(os.Stdout, cli.FormatHarvestSummary(run))
		}
	}

	if viper.GetBool("harvest.no_export") {
		return nil
	}
	writer, err := export.NewWriter(exportDir(outFlag), slog.Default())
	if err != nil {
		return err
	}
	if err := writer.WriteAll(servants, stores(results)...); err != nil {
		return fmt.Errorf("failed to write exports: %w", err)
	}

	slog.Info(cli.FormatSuccess("✓ Harvest complete!"))
	return nil
}
