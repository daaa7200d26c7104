// Package eventlist reads the yearly event-list pages that drive a harvest.
// Lists before the template cutover are free-form: one date line per event,
// a banner image and a link. Later lists use one template per event.
package eventlist

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Veraticus/summon-almanac/internal/common"
	"github.com/Veraticus/summon-almanac/internal/dates"
	"github.com/Veraticus/summon-almanac/internal/markup"
	"github.com/Veraticus/summon-almanac/internal/model"
	"github.com/Veraticus/summon-almanac/internal/rules"
)

var imagePattern = regexp.MustCompile(`\[\[File:(.*?)\|`)

var skippedLinkPrefixes = []string{"File:", "Category:", "#"}

// Parser reads event lists.
type Parser struct {
	resolver *dates.Resolver
	rules    rules.EventListRules
	months   []string
}

// NewParser creates a parser. Month names come from the date rules.
func NewParser(resolver *dates.Resolver, listRules rules.EventListRules, dateRules rules.DateRules) *Parser {
	months := make([]string, 0, len(dateRules.Months))
	for name := range dateRules.Months {
		months = append(months, name)
	}
	slices.Sort(months)
	return &Parser{resolver: resolver, rules: listRules, months: months}
}

// YearOf reads the year out of a list title such as "Event List (US)/2019 Events".
func YearOf(listTitle string) (int, error) {
	_, rest, ok := strings.Cut(listTitle, "/")
	if !ok || len(rest) < 4 {
		return 0, fmt.Errorf("no year in event list title %q", listTitle)
	}
	year, err := strconv.Atoi(rest[:4])
	if err != nil {
		return 0, fmt.Errorf("no year in event list title %q: %w", listTitle, err)
	}
	return year, nil
}

// Parse reads a list page and returns its events oldest first.
func (p *Parser) Parse(listTitle, text string, year int) ([]model.EventEntry, error) {
	var (
		titles  []string
		ranges  []model.DateRange
		images  []string
		listErr error
	)
	if year < p.rules.TemplateListsFrom {
		titles, ranges, images, listErr = p.parseFreeForm(listTitle, text, year)
	} else {
		titles, ranges, images, listErr = p.parseTemplates(text, year)
	}
	if listErr != nil {
		return nil, fmt.Errorf("%s: %w", listTitle, listErr)
	}

	if len(titles) != len(ranges) {
		return nil, fmt.Errorf("%w: %s has %d events but %d dates", common.ErrEventCountMismatch, listTitle, len(titles), len(ranges))
	}
	if len(titles) != len(images) {
		return nil, fmt.Errorf("%w: %s has %d events but %d images", common.ErrEventCountMismatch, listTitle, len(titles), len(images))
	}

	entries := make([]model.EventEntry, len(titles))
	for i := range titles {
		entries[len(titles)-1-i] = model.EventEntry{Title: titles[i], Dates: ranges[i], ImageFile: images[i]}
	}
	return entries, nil
}

func (p *Parser) parseFreeForm(listTitle, text string, year int) ([]string, []model.DateRange, []string, error) {
	skipDates := p.rules.SkipDates[listTitle]

	var ranges []model.DateRange
	for _, line := range strings.Split(text, "\n") {
		if !p.mentionsMonth(line) ||
			strings.HasSuffix(line, "=") ||
			strings.Contains(line, "[[") ||
			slices.Contains(skipDates, line) {
			continue
		}
		if i := strings.LastIndex(line, "|"); i >= 0 {
			line = line[i+1:]
		}
		dr, err := p.resolver.ParseSpan(line, year)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("date line %q: %w", line, err)
		}
		ranges = append(ranges, dr)
	}

	var images []string
	for _, m := range imagePattern.FindAllStringSubmatch(text, -1) {
		images = append(images, m[1])
	}
	for _, skip := range p.rules.SkipImages[listTitle] {
		if i := slices.Index(images, skip); i >= 0 {
			images = slices.Delete(images, i, i+1)
		}
	}

	var titles []string
	for _, l := range markup.Parse(text).Links {
		if hasAnyPrefix(l.Title, skippedLinkPrefixes) {
			continue
		}
		titles = append(titles, l.Title)
	}
	return titles, ranges, images, nil
}

func (p *Parser) parseTemplates(text string, year int) ([]string, []model.DateRange, []string, error) {
	var (
		titles []string
		ranges []model.DateRange
		images []string
	)
	for _, t := range markup.Parse(text).Templates {
		title, ok := t.Get("event")
		if !ok {
			continue
		}
		start, _ := t.Get("start")
		dr, err := p.resolver.ParseRange(start, t.GetOr("end", start), year)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("event %q: %w", title, err)
		}
		image, _ := t.Get("image")

		titles = append(titles, title)
		ranges = append(ranges, dr)
		images = append(images, image)
	}
	return titles, ranges, images, nil
}

func (p *Parser) mentionsMonth(line string) bool {
	for _, m := range p.months {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

// InsertIncludes adds the configured pages that the region's list for year
// leaves out, each right after its anchor event. Included entries carry no dates.
func (p *Parser) InsertIncludes(entries []model.EventEntry, region model.Region, year int) ([]model.EventEntry, error) {
	for _, inc := range p.rules.IncludePages {
		if inc.Year != year || inc.Region != region {
			continue
		}
		i := slices.IndexFunc(entries, func(e model.EventEntry) bool { return e.Title == inc.InsertAfter })
		if i < 0 {
			return nil, fmt.Errorf("include %q: anchor %q not in the %s %d list", inc.Title, inc.InsertAfter, region, year)
		}
		entries = slices.Insert(entries, i+1, model.EventEntry{Title: inc.Title, ImageFile: inc.ImageFile})
	}
	return entries, nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
