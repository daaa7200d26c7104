package dates

import (
	"regexp"
	"strings"

	"github.com/Veraticus/summon-almanac/internal/markup"
	"github.com/Veraticus/summon-almanac/internal/model"
	"github.com/Veraticus/summon-almanac/internal/rules"
)

const (
	durationMarker  = "Duration"
	durationLead    = ": "
	boldQuote       = "'''"
	nestedTabMarker = "tabber"
)

// tabPattern finds "<label>=" lines followed by a rateup block and an optional
// duration line, as used by tabbed summoning campaign pages.
var tabPattern = regexp.MustCompile(`(.*Summo.*(?:\w|\)))=\n*((?:\[\[|\{\{|\{\|).*)\n\n*(?:.*Duration.*?(?: |'|:)([A-Z].*))?`)

// Resolver applies the date rules.
type Resolver struct {
	months        map[string]int
	headers       map[string]bool
	skipDuration  map[string]bool
	fakeBanners   map[string]bool
	tabSkip       []string
	durationLines int
}

// NewResolver builds a resolver from the date rules.
func NewResolver(r rules.DateRules) *Resolver {
	lines := r.DurationLines
	if lines <= 0 {
		lines = 4
	}
	return &Resolver{
		months:        r.Months,
		headers:       toSet(r.HeaderTemplates),
		skipDuration:  toSet(r.SkipDuration),
		fakeBanners:   toSet(r.FakeBanners),
		tabSkip:       r.TabSkipLabels,
		durationLines: lines,
	}
}

// Resolve picks a page's dates: its header template, then a legacy duration
// line near the top, then the fallback.
func (r *Resolver) Resolve(title string, doc *markup.Document, year int, fallback model.DateRange) (model.DateRange, model.DateOrigin) {
	if len(doc.Templates) > 0 && r.headers[doc.Templates[0].Name] {
		if dr, err := r.fromHeader(doc.Templates[0], year); err == nil {
			return dr, model.OriginHeaderNew
		}
	}
	if !r.skipDuration[title] {
		if dr, ok := r.fromDurationLine(doc.Text, year); ok {
			return dr, model.OriginHeaderOld
		}
	}
	return fallback, model.OriginInherited
}

// Header is what an event page's header template says about the event.
type Header struct {
	ImageFile string
	Dates     model.DateRange
}

// ReadHeader finds a header template among the first two templates of an
// event page. The second wins when both qualify.
func (r *Resolver) ReadHeader(doc *markup.Document, year int) (Header, bool) {
	idx := -1
	for i := 0; i < len(doc.Templates) && i < 2; i++ {
		if r.headers[doc.Templates[i].Name] {
			idx = i
		}
	}
	if idx < 0 {
		return Header{}, false
	}
	t := doc.Templates[idx]
	dr, err := r.fromHeader(t, year)
	if err != nil {
		return Header{}, false
	}
	image, _ := t.Get("image")
	return Header{ImageFile: image, Dates: dr}, true
}

func (r *Resolver) fromHeader(t markup.Template, year int) (model.DateRange, error) {
	start, _ := t.Get("start")
	return r.ParseRange(start, t.GetOr("end", start), year)
}

func (r *Resolver) fromDurationLine(text string, year int) (model.DateRange, bool) {
	lines := strings.SplitN(text, "\n", r.durationLines+1)
	if len(lines) > r.durationLines {
		lines = lines[:r.durationLines]
	}
	for _, line := range lines {
		if !strings.Contains(line, durationMarker) {
			continue
		}
		line = strings.ReplaceAll(line, boldQuote, "")
		_, span, ok := strings.Cut(line, durationLead)
		if !ok {
			return model.DateRange{}, false
		}
		dr, err := r.ParseSpan(span, year)
		return dr, err == nil
	}
	return model.DateRange{}, false
}

// Tab is one summoning tab on a tabbed campaign page.
type Tab struct {
	Label    string
	Dates    model.DateRange
	HasDates bool
}

// Tabs lists the summoning tabs of a page in order, leaving out lucky-bag and
// guaranteed tabs, tab containers, and every tab of craft-essence-only campaigns.
func (r *Resolver) Tabs(title, text string, year int) []Tab {
	if r.fakeBanners[title] {
		return nil
	}

	var tabs []Tab
	for _, m := range tabPattern.FindAllStringSubmatch(text, -1) {
		label, content, duration := m[1], m[2], m[3]
		if r.skipLabel(label) || strings.Contains(content, nestedTabMarker) {
			continue
		}

		tab := Tab{Label: strings.TrimSpace(label)}
		if duration != "" {
			if dr, err := r.ParseSpan(duration, year); err == nil {
				tab.Dates = dr
				tab.HasDates = true
			}
		}
		tabs = append(tabs, tab)
	}
	return tabs
}

func (r *Resolver) skipLabel(label string) bool {
	for _, skip := range r.tabSkip {
		if strings.Contains(label, skip) {
			return true
		}
	}
	return false
}

// ApplyTabs renames banner i after tab i and re-dates it when the tab has
// its own duration. Extra tabs are ignored.
func ApplyTabs(banners []*model.Banner, bannerTitle string, tabs []Tab) {
	for i, tab := range tabs {
		if i >= len(banners) {
			return
		}
		banners[i].Rename(bannerTitle + " " + tab.Label)
		if tab.HasDates {
			banners[i].SetDates(tab.Dates, model.OriginTab)
		}
	}
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, item := range items {
		m[item] = true
	}
	return m
}
