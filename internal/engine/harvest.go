package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Veraticus/summon-almanac/internal/consolidate"
	"github.com/Veraticus/summon-almanac/internal/dates"
	"github.com/Veraticus/summon-almanac/internal/eventlist"
	"github.com/Veraticus/summon-almanac/internal/markup"
	"github.com/Veraticus/summon-almanac/internal/model"
	"github.com/Veraticus/summon-almanac/internal/rules"
	"github.com/Veraticus/summon-almanac/internal/service"
)

// Harvester turns a region's yearly event lists into a consolidated store.
type Harvester struct {
	wiki        WikiSource
	engine      *Engine
	lists       *eventlist.Parser
	resolver    *dates.Resolver
	rules       *rules.Set
	logger      *slog.Logger
	presentYear int
}

// WikiSource is what a harvest needs from the wiki.
type WikiSource interface {
	service.PageSource
	service.CategorySource
}

// NewHarvester creates a harvester. Event lists for presentYear also pick up
// pages from the region's current-event category.
func NewHarvester(wiki WikiSource, engine *Engine, lists *eventlist.Parser, resolver *dates.Resolver, set *rules.Set, presentYear int, logger *slog.Logger) *Harvester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Harvester{
		wiki:        wiki,
		engine:      engine,
		lists:       lists,
		resolver:    resolver,
		rules:       set,
		logger:      logger,
		presentYear: presentYear,
	}
}

// Harvest processes every event list of region in order.
func (h *Harvester) Harvest(ctx context.Context, region model.Region) (*consolidate.Store, error) {
	store := consolidate.NewStore(region)
	regionRules := h.rules.Region(region)
	if len(regionRules.EventLists) == 0 {
		return nil, fmt.Errorf("no event lists configured for region %s", region)
	}

	for _, listTitle := range regionRules.EventLists {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		entries, year, err := h.entries(ctx, region, listTitle)
		if err != nil {
			return nil, err
		}
		h.logger.Info("parsing event list", "title", listTitle, "entries", len(entries))

		if err := h.engine.ProcessStream(ctx, store, year, entries); err != nil {
			return nil, fmt.Errorf("processing %s: %w", listTitle, err)
		}
	}
	return store, nil
}

func (h *Harvester) entries(ctx context.Context, region model.Region, listTitle string) ([]model.EventEntry, int, error) {
	year, err := eventlist.YearOf(listTitle)
	if err != nil {
		return nil, 0, err
	}
	page, err := h.wiki.Page(ctx, listTitle)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching event list %s: %w", listTitle, err)
	}
	entries, err := h.lists.Parse(listTitle, page.Text, year)
	if err != nil {
		return nil, 0, err
	}

	if year == h.presentYear {
		current, err := h.currentEvents(ctx, region, year, entries)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, current...)
	}

	entries, err = h.lists.InsertIncludes(entries, region, year)
	if err != nil {
		return nil, 0, err
	}
	return entries, year, nil
}

// currentEvents lists running events that have not reached the event list yet,
// ordered by their header dates.
func (h *Harvester) currentEvents(ctx context.Context, region model.Region, year int, listed []model.EventEntry) ([]model.EventEntry, error) {
	category := h.rules.Region(region).CurrentCategory
	if category == "" {
		return nil, nil
	}
	titles, err := h.wiki.CategoryMembers(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", category, err)
	}

	skip := make(map[string]bool, len(listed))
	for _, e := range listed {
		skip[e.Title] = true
	}

	var current []model.EventEntry
	for _, title := range titles {
		if skip[title] || h.engine.Visited(title) {
			continue
		}
		page, err := h.wiki.Page(ctx, title)
		if err != nil {
			h.logger.Warn("skipping current event", "title", title, "error", err)
			continue
		}
		header, ok := h.resolver.ReadHeader(markup.Parse(page.Text), year)
		if !ok {
			h.logger.Warn("current event has no readable header", "title", title)
			continue
		}
		current = append(current, model.EventEntry{Title: title, Dates: header.Dates, ImageFile: header.ImageFile})
	}

	sort.SliceStable(current, func(i, j int) bool {
		a, b := current[i].Dates, current[j].Dates
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.End.Before(b.End)
	})
	return current, nil
}
