// Package finalize cleans up consolidated event stores for output: region
// suffixes, empty events, static merges, banner names, dates and slugs.
package finalize

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/summon-almanac/internal/common"
	"github.com/Veraticus/summon-almanac/internal/consolidate"
	"github.com/Veraticus/summon-almanac/internal/model"
	"github.com/Veraticus/summon-almanac/internal/rules"
)

type dateFix struct {
	start time.Time
	end   time.Time
	event string
	name  string
}

// Finalizer applies the finalization rules. Running it twice over the same
// stores changes nothing.
type Finalizer struct {
	rules     *rules.Set
	logger    *slog.Logger
	dateFixes map[model.Region][]dateFix
	nameFixes []nameFix
}

// New compiles the name fixes and parses the date corrections.
func New(set *rules.Set, logger *slog.Logger) (*Finalizer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Finalizer{
		rules:     set,
		logger:    logger,
		dateFixes: make(map[model.Region][]dateFix),
	}

	for _, fix := range set.Finalize.NameFixes {
		re, err := common.CompileLookaround(fix.Pattern)
		if err != nil {
			return nil, fmt.Errorf("name fix: %w", err)
		}
		f.nameFixes = append(f.nameFixes, nameFix{re: re, replace: fix.Replace, skip: fix.Skip})
	}

	for region, r := range set.Regions {
		for _, fix := range r.DateFixes {
			df := dateFix{event: fix.Event, name: fix.Banner}
			var err error
			if df.start, err = parseFixDate(fix.Start); err != nil {
				return nil, fmt.Errorf("%s date fix %q/%q: %w", region, fix.Event, fix.Banner, err)
			}
			if df.end, err = parseFixDate(fix.End); err != nil {
				return nil, fmt.Errorf("%s date fix %q/%q: %w", region, fix.Event, fix.Banner, err)
			}
			f.dateFixes[region] = append(f.dateFixes[region], df)
		}
	}
	return f, nil
}

func parseFixDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}

// Finalize cleans every store, then assigns slugs that are unique across all
// of them. Event and banner slugs are separate namespaces.
func (f *Finalizer) Finalize(stores ...*consolidate.Store) {
	for _, s := range stores {
		f.finalizeRegion(s)
	}

	events, banners := newSlugger(), newSlugger()
	for _, s := range stores {
		for _, e := range s.Events() {
			e.Slug = events.assign(e.Name, e.Region)
			for _, b := range e.Banners {
				b.Slug = banners.assign(b.Name, e.Region)
			}
		}
	}
}

func (f *Finalizer) finalizeRegion(s *consolidate.Store) {
	region := s.Region()
	regionRules := f.rules.Region(region)

	if region == model.RegionNA && f.rules.RegionSuffix != "" {
		f.stripSuffix(s, f.rules.RegionSuffix)
	}

	destinations := make(map[string]bool, len(regionRules.MergeEvents))
	for _, m := range regionRules.MergeEvents {
		destinations[m.Destination] = true
	}
	pruned := pruneEmpty(s, destinations)

	for _, m := range regionRules.MergeEvents {
		src, ok := s.Get(m.Source)
		if !ok {
			continue
		}
		dst, ok := s.Get(m.Destination)
		if !ok {
			continue
		}
		dst.Banners = append(dst.Banners, src.Banners...)
		s.Delete(m.Source)
	}
	pruned += pruneEmpty(s, nil)

	for _, e := range s.Events() {
		e.SortBanners()
		f.normalizeEvent(e)
	}

	for _, rn := range regionRules.BannerRenames {
		e, ok := s.Get(rn.Event)
		if !ok || hasBanner(e, rn.Name) {
			continue
		}
		for _, b := range e.Banners {
			if b.Name == rn.Banner {
				b.Name = rn.Name
				b.MarkNameNormalized()
				break
			}
		}
	}

	for _, fix := range f.dateFixes[region] {
		e, ok := s.Get(fix.event)
		if !ok {
			continue
		}
		for _, b := range e.Banners {
			if b.Name != fix.name {
				continue
			}
			if !fix.start.IsZero() {
				b.StartDate = fix.start
			}
			if !fix.end.IsZero() {
				b.EndDate = fix.end
			}
			e.SortBanners()
			break
		}
	}

	for _, e := range s.Events() {
		e.UpdateDates()
	}

	f.logger.Info("finalized region",
		"region", region,
		"events", s.Len(),
		"pruned", pruned)
}

// stripSuffix removes the region suffix from event and banner names. An event
// whose stripped name is taken replaces the holder in its position.
func (f *Finalizer) stripSuffix(s *consolidate.Store, suffix string) {
	for _, name := range s.Names() {
		e, ok := s.Get(name)
		if !ok {
			continue
		}
		for _, b := range e.Banners {
			b.Name = strings.ReplaceAll(b.Name, suffix, "")
		}
		if stripped := strings.ReplaceAll(name, suffix, ""); stripped != name {
			s.Rename(name, stripped)
		}
	}
}

func pruneEmpty(s *consolidate.Store, keep map[string]bool) int {
	n := 0
	for _, e := range s.Events() {
		if len(e.Banners) == 0 && !keep[e.Name] {
			s.Delete(e.Name)
			n++
		}
	}
	return n
}

// hasBanner reports whether e already holds a banner called name. A rename
// whose result exists has been applied.
func hasBanner(e *model.Event, name string) bool {
	for _, b := range e.Banners {
		if b.Name == name {
			return true
		}
	}
	return false
}
