package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/summon-almanac/internal/common"
	"github.com/Veraticus/summon-almanac/internal/markup"
	"github.com/Veraticus/summon-almanac/internal/model"
	"github.com/Veraticus/summon-almanac/internal/service"
)

const (
	// RosterCategory lists every playable servant page.
	RosterCategory = "Servant ID Order"
	detailTemplate = "CharactersNew"
	arcadeMarker   = "(Arcade)"
)

type cleanup struct {
	re   *regexp.Regexp
	with string
}

// Wiki markup that shows up inside profile fields, flattened to plain text.
var cleanups = []cleanup{
	{regexp.MustCompile(`<br\s*/?>\n`), ", "},
	{regexp.MustCompile(`\n<!--.*?-->|<!--.*?-->|<sup>.*?\?.*?</sup>`), ""},
	{regexp.MustCompile(`\n|<br\s*/?>`), ", "},
	{regexp.MustCompile(`'''(.*?)'''`), "${1}"},
	{regexp.MustCompile(`\[\[:*w:c:[Tt]ypemoon:.*?\|(.*?)\]\]`), "${1}"},
	{regexp.MustCompile(`\[\[[^\]]*?\|(.*?)\]\]`), "${1}"},
	{regexp.MustCompile(`\[\[(.*?)\]\]`), "${1}"},
	{regexp.MustCompile(`\{\{[Rr]uby\|(.*?)\|.*?\}\}`), "${1}"},
	{regexp.MustCompile(`\{\{[Tt]ooltip(?:\|.*?)?\|(?:2=)?(.*?)\}\}`), "${1}"},
	{regexp.MustCompile(`\{\{[Nn]ihongo\|(.*?)(?:\|.*?\}\}|\}\})`), "${1}"},
	{regexp.MustCompile(`<span class="spoiler-msg">(.*?)</span>`), "[${1}]"},
}

// CleanField flattens the wiki markup in a profile field.
func CleanField(s string) string {
	s = strings.ReplaceAll(s, "{{Custom Kanji|jin}}", "神")
	for _, c := range cleanups {
		s = c.re.ReplaceAllString(s, c.with)
	}
	return strings.TrimSpace(s)
}

// Scraper rebuilds the roster from the wiki.
type Scraper struct {
	pages      service.PageSource
	categories service.CategorySource
	progress   service.Progress
	logger     *slog.Logger
	limit      int
}

// NewScraper creates a scraper. A page source that implements
// service.Prefetcher is warmed with up to limit concurrent fetches.
func NewScraper(pages service.PageSource, categories service.CategorySource, progress service.Progress, logger *slog.Logger, limit int) *Scraper {
	if progress == nil {
		progress = service.NopProgress{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{pages: pages, categories: categories, progress: progress, logger: logger, limit: limit}
}

// Scrape walks the roster category and parses each servant's profile template.
func (s *Scraper) Scrape(ctx context.Context) ([]model.Servant, error) {
	titles, err := s.categories.CategoryMembers(ctx, RosterCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}

	kept := titles[:0:0]
	for _, title := range titles {
		if !strings.Contains(title, arcadeMarker) {
			kept = append(kept, title)
		}
	}
	if p, ok := s.pages.(service.Prefetcher); ok {
		if err := p.Prefetch(ctx, kept, s.limit); err != nil {
			return nil, fmt.Errorf("failed to prefetch roster: %w", err)
		}
	}

	s.progress.Start(len(kept), "Scraping servants")
	defer s.progress.Finish()

	var servants []model.Servant
	for _, title := range kept {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.progress.Advance(title)

		page, err := s.pages.Page(ctx, title)
		if errors.Is(err, common.ErrPageNotFound) {
			s.logger.Warn("roster page missing", "title", title)
			continue
		}
		if err != nil {
			return nil, err
		}

		servant, err := ParseProfile(title, page.Text)
		if err != nil {
			s.logger.Warn("skipping servant", "title", title, "error", err)
			continue
		}
		servants = append(servants, servant)
	}
	return servants, nil
}

// ParseProfile reads the first profile template on a servant page.
func ParseProfile(title, text string) (model.Servant, error) {
	for _, t := range markup.Parse(text).Templates {
		if t.Name != detailTemplate {
			continue
		}

		rawID, _ := t.Get("id")
		id, err := strconv.Atoi(rawID)
		if err != nil || id < 0 {
			return model.Servant{}, fmt.Errorf("no ID found for %s", title)
		}
		rarity, _ := strconv.Atoi(strings.TrimSpace(t.GetOr("stars", "0")))

		field := func(name string) string {
			v, _ := t.Get(name)
			return CleanField(v)
		}
		return model.Servant{
			ID:          id,
			Name:        title,
			JPName:      field("jname"),
			Aliases:     field("aka"),
			VoiceActor:  field("voicea"),
			Illustrator: field("illus"),
			ClassType:   field("class"),
			Rarity:      rarity,
			Attribute:   field("attribute"),
			Gender:      field("gender"),
			Alignment:   field("alignment"),
			Traits:      field("traits"),
		}, nil
	}
	return model.Servant{}, fmt.Errorf("%w: %s has no %s template", common.ErrUnknownServant, title, detailTemplate)
}
