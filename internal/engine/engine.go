// Package engine drives extraction over an ordered stream of events, walking
// each event's summoning subpages and consolidating the results into a
// per-region store as it goes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/Veraticus/summon-almanac/internal/common"
	"github.com/Veraticus/summon-almanac/internal/consolidate"
	"github.com/Veraticus/summon-almanac/internal/dates"
	"github.com/Veraticus/summon-almanac/internal/extract"
	"github.com/Veraticus/summon-almanac/internal/model"
	"github.com/Veraticus/summon-almanac/internal/rules"
	"github.com/Veraticus/summon-almanac/internal/service"
)

// Engine parses event pages into a consolidate.Store.
type Engine struct {
	pages       service.PageSource
	progress    service.Progress
	extractor   *extract.Extractor
	resolver    *dates.Resolver
	logger      *slog.Logger
	titleCut    *regexp2.Regexp
	titleSpace  *regexp2.Regexp
	visited     map[string]bool
	keepEmpty   map[string]bool
	suffix      string
	titles      rules.TitleRules
	walker      rules.WalkerRules
	prefetchMax int
}

// Config holds the engine's tunables.
type Config struct {
	Progress service.Progress
	Logger   *slog.Logger
	// PrefetchLimit bounds concurrent page fetches when the page source
	// supports prefetching. Zero disables prefetching.
	PrefetchLimit int
}

// New creates an engine from a rule set.
func New(pages service.PageSource, extractor *extract.Extractor, resolver *dates.Resolver, set *rules.Set, cfg Config) (*Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Progress == nil {
		cfg.Progress = service.NopProgress{}
	}

	cut, space, err := compileTitleRules(set.Titles.ProtectedPrefix)
	if err != nil {
		return nil, err
	}

	keep := make(map[string]bool, len(set.Walker.KeepEmpty))
	for _, t := range set.Walker.KeepEmpty {
		keep[t] = true
	}

	return &Engine{
		pages:       pages,
		progress:    cfg.Progress,
		extractor:   extractor,
		resolver:    resolver,
		logger:      cfg.Logger,
		titleCut:    cut,
		titleSpace:  space,
		visited:     make(map[string]bool),
		keepEmpty:   keep,
		suffix:      set.RegionSuffix,
		titles:      set.Titles,
		walker:      set.Walker,
		prefetchMax: cfg.PrefetchLimit,
	}, nil
}

func compileTitleRules(protected string) (*regexp2.Regexp, *regexp2.Regexp, error) {
	slash := "/"
	if protected != "" {
		slash = "(?<!" + regexp2.Escape(protected) + ")/"
	}
	cut, err := common.CompileLookaround(slash + ".*")
	if err != nil {
		return nil, nil, fmt.Errorf("title rules: %w", err)
	}
	space, err := common.CompileLookaround(slash)
	if err != nil {
		return nil, nil, fmt.Errorf("title rules: %w", err)
	}
	return cut, space, nil
}

// Visited reports whether a page was parsed during this engine's lifetime.
func (e *Engine) Visited(title string) bool {
	return e.visited[title]
}

// BannerTitle derives the banner name from a page title: info subpages lose
// everything after the slash, summoning subpages turn the slash into a space.
// Slashes that follow the protected prefix are part of a name and stay.
func (e *Engine) BannerTitle(title string) string {
	var re *regexp2.Regexp
	var with string
	switch {
	case containsAny(title, e.titles.SubpageRemove):
		re, with = e.titleCut, ""
	case containsAny(title, e.titles.SubpageReplace):
		re, with = e.titleSpace, " "
	default:
		return title
	}
	out, err := common.ReplaceLookaround(re, title, with)
	if err != nil {
		e.logger.Warn("banner title rewrite failed", "title", title, "error", err)
		return title
	}
	return out
}

// ProcessStream parses every entry in order into store. Each entry is
// consolidated against the events before it as soon as it is added.
func (e *Engine) ProcessStream(ctx context.Context, store *consolidate.Store, year int, entries []model.EventEntry) error {
	if p, ok := e.pages.(service.Prefetcher); ok && e.prefetchMax > 0 {
		titles := make([]string, 0, len(entries))
		for _, entry := range entries {
			titles = append(titles, entry.Title)
		}
		if err := p.Prefetch(ctx, titles, e.prefetchMax); err != nil {
			e.logger.Warn("prefetch failed, continuing with lazy fetches", "error", err)
		}
	}

	e.progress.Start(len(entries), fmt.Sprintf("%s %d", store.Region(), year))
	defer e.progress.Finish()

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		e.progress.Advance(entry.Title)
		e.processEntry(ctx, store, year, entry)
	}

	e.logger.Info("processed event stream",
		"region", store.Region(),
		"year", year,
		"entries", len(entries),
		"events", store.Len())
	return nil
}

func (e *Engine) processEntry(ctx context.Context, store *consolidate.Store, year int, entry model.EventEntry) {
	page := e.parsePage(ctx, store, year, pageRequest{
		title:    entry.Title,
		fallback: entry.Dates,
		image:    entry.ImageFile,
	})

	for _, sub := range e.walker.IncludeSubpages[entry.Title] {
		e.parsePage(ctx, store, year, pageRequest{title: sub, fallback: entry.Dates, parent: entry.Title})
		store.BackwardAbsorb()
	}

	if !e.keepEmpty[entry.Title] {
		e.walk(ctx, store, year, page, entry.Title, entry.Dates, map[string]bool{entry.Title: true})
	}

	store.ForwardAbsorb()
	store.MergePreRelease(e.suffix)
}

type pageRequest struct {
	fallback model.DateRange
	title    string
	parent   string
	image    string
}

// parsePage extracts one page's banners and files them under the right event.
// It returns the fetched page, which is empty when the fetch failed.
func (e *Engine) parsePage(ctx context.Context, store *consolidate.Store, year int, req pageRequest) *model.Page {
	e.visited[req.title] = true
	page := e.fetch(ctx, req.title)

	if e.extractor.Excluded(req.title, req.parent) {
		e.logger.Debug("page excluded", "title", req.title, "parent", req.parent)
		return page
	}

	region := store.Region()
	result := e.extractor.Extract(req.title, page.Text, region, year)
	bannerTitle := e.BannerTitle(req.title)
	dr, origin := e.resolver.Resolve(req.title, result.Doc, year, req.fallback)

	banners := make([]*model.Banner, 0, len(result.Rateups))
	for _, set := range result.Rateups {
		banners = append(banners, model.NewBanner(bannerTitle, dr, origin, set))
	}
	dates.ApplyTabs(banners, bannerTitle, e.resolver.Tabs(req.title, result.Doc.Text, year))

	if len(banners) == 0 {
		e.logger.Debug("no rateups found", "title", req.title)
	}

	if target, ok := store.ChapterReleaseTarget(req.title, e.suffix); ok {
		consolidate.AttachBanners(target, banners)
		return page
	}
	if req.parent != "" {
		if parent, ok := store.Get(req.parent); ok {
			consolidate.AttachBanners(parent, banners)
			return page
		}
		store.Put(model.NewEvent(req.parent, region, req.image, banners))
		return page
	}
	store.Put(model.NewEvent(req.title, region, req.image, banners))
	return page
}

// walk parses the summoning subpages a page transcludes, depth first.
func (e *Engine) walk(ctx context.Context, store *consolidate.Store, year int, page *model.Page, parent string, fallback model.DateRange, seen map[string]bool) {
	for _, ref := range page.Templates {
		if !containsAny(ref, e.walker.SummonSubpage) {
			continue
		}
		title, ok := subpageTitle(ref)
		if !ok || seen[title] {
			continue
		}
		seen[title] = true

		sub := e.parsePage(ctx, store, year, pageRequest{title: title, fallback: fallback, parent: parent})
		e.walk(ctx, store, year, sub, parent, fallback, seen)
		store.BackwardAbsorb()
	}
}

// subpageTitle turns a main-namespace transclusion such as ":Foo/Summoning
// Campaign" into a page title. Other template references are not pages.
func subpageTitle(ref string) (string, bool) {
	if !strings.HasPrefix(ref, ":") {
		return "", false
	}
	title := strings.TrimSpace(ref[1:])
	return title, title != ""
}

func (e *Engine) fetch(ctx context.Context, title string) *model.Page {
	page, err := e.pages.Page(ctx, title)
	if err == nil {
		return page
	}
	if errors.Is(err, common.ErrPageNotFound) {
		e.logger.Debug("page not found", "title", title)
	} else {
		e.logger.Warn("page fetch failed, treating as empty", "title", title, "error", err)
	}
	return &model.Page{Title: title}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
