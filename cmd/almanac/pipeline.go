package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/summon-almanac/internal/catalog"
	"github.com/Veraticus/summon-almanac/internal/consolidate"
	"github.com/Veraticus/summon-almanac/internal/dates"
	"github.com/Veraticus/summon-almanac/internal/engine"
	"github.com/Veraticus/summon-almanac/internal/eventlist"
	"github.com/Veraticus/summon-almanac/internal/extract"
	"github.com/Veraticus/summon-almanac/internal/finalize"
	"github.com/Veraticus/summon-almanac/internal/model"
	"github.com/Veraticus/summon-almanac/internal/rules"
	"github.com/Veraticus/summon-almanac/internal/service"
)

// pipeline runs the harvest for one or more regions against a single wiki.
type pipeline struct {
	wiki        engine.WikiSource
	progress    service.Progress
	catalog     *catalog.Catalog
	rules       *rules.Set
	logger      *slog.Logger
	digest      string
	presentYear int
	prefetch    int
}

// regionHarvest is the consolidated result of one region.
type regionHarvest struct {
	startedAt  time.Time
	finishedAt time.Time
	store      *consolidate.Store
}

// harvest builds each region's store in turn. Every region gets a fresh
// engine so pages visited for one server are walked again for the next.
func (p *pipeline) harvest(ctx context.Context, regions []model.Region) ([]regionHarvest, error) {
	if p.logger == nil {
		p.logger = slog.Default()
	}
	extractor, err := extract.New(p.catalog, p.rules.Extract, p.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to compile extraction rules: %w", err)
	}
	resolver := dates.NewResolver(p.rules.Dates)
	lists := eventlist.NewParser(resolver, p.rules.EventLists, p.rules.Dates)

	results := make([]regionHarvest, 0, len(regions))
	for _, region := range regions {
		started := time.Now()

		eng, err := engine.New(p.wiki, extractor, resolver, p.rules, engine.Config{
			Progress:      p.progress,
			Logger:        p.logger.With("region", region),
			PrefetchLimit: p.prefetch,
		})
		if err != nil {
			return nil, err
		}
		harvester := engine.NewHarvester(p.wiki, eng, lists, resolver, p.rules, p.presentYear, p.logger)

		store, err := harvester.Harvest(ctx, region)
		if err != nil {
			return nil, fmt.Errorf("harvest %s: %w", region, err)
		}
		p.logger.Info("region harvested", "region", region, "events", store.Len(), "duration", time.Since(started).Round(time.Millisecond))

		results = append(results, regionHarvest{
			store:      store,
			startedAt:  started,
			finishedAt: time.Now(),
		})
	}
	return results, nil
}

// finalize applies the post-processing rules to every harvested region.
func (p *pipeline) finalize(results []regionHarvest) error {
	fin, err := finalize.New(p.rules, p.logger)
	if err != nil {
		return err
	}
	fin.Finalize(stores(results)...)
	return nil
}

// persist replaces each harvested region in storage and records the run.
func (p *pipeline) persist(ctx context.Context, store service.Storage, results []regionHarvest) ([]*model.HarvestRun, error) {
	runs := make([]*model.HarvestRun, 0, len(results))
	for _, res := range results {
		events := res.store.Events()
		region := res.store.Region()

		if err := store.ReplaceRegion(ctx, region, events); err != nil {
			return nil, fmt.Errorf("failed to save %s events: %w", region, err)
		}

		run := &model.HarvestRun{
			Region:      region,
			StartedAt:   res.startedAt,
			FinishedAt:  res.finishedAt,
			Events:      len(events),
			Banners:     countBanners(events),
			RulesDigest: p.digest,
		}
		if err := store.RecordRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to record %s run: %w", region, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// loadStores rebuilds consolidated stores from what was last persisted.
func loadStores(ctx context.Context, store service.Storage, regions []model.Region) ([]*consolidate.Store, error) {
	out := make([]*consolidate.Store, 0, len(regions))
	for _, region := range regions {
		events, err := store.GetEvents(ctx, region)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s events: %w", region, err)
		}
		s := consolidate.NewStore(region)
		for _, e := range events {
			s.Put(e)
		}
		out = append(out, s)
	}
	return out, nil
}

func stores(results []regionHarvest) []*consolidate.Store {
	out := make([]*consolidate.Store, len(results))
	for i, res := range results {
		out[i] = res.store
	}
	return out
}

func countBanners(events []*model.Event) int {
	n := 0
	for _, e := range events {
		n += len(e.Banners)
	}
	return n
}
