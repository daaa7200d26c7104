// Package extract turns the wikitext of a single banner page into the ordered
// rateup sets it announces. Newer pages list rateups in styled tables; older
// pages mention servants as links under keyword headings.
package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/Veraticus/summon-almanac/internal/common"
	"github.com/Veraticus/summon-almanac/internal/markup"
	"github.com/Veraticus/summon-almanac/internal/model"
	"github.com/Veraticus/summon-almanac/internal/rules"
)

// Catalog resolves servant names.
type Catalog interface {
	Ref(name string) (model.Rateup, bool)
}

type pageFix struct {
	re      *regexp2.Regexp
	replace string
}

// Extractor applies the extraction rules to pages.
type Extractor struct {
	catalog       Catalog
	logger        *slog.Logger
	rules         rules.ExtractRules
	pageFixes     map[string][]pageFix
	linkMatches   []*regexp.Regexp
	removeMatches []*regexp.Regexp
	priorityCut   []*regexp.Regexp
	excluded      map[string]bool
	skipTable     map[string]bool
	forceMerge    map[string]bool
	priority      map[string]bool
	tableClasses  map[string]bool
}

// Result is the outcome of extracting one page.
type Result struct {
	// Doc is the parsed, preprocessed text. Date resolution reads it too.
	Doc     *markup.Document
	Rateups []model.RateupSet
}

// New compiles the extraction rules.
func New(catalog Catalog, r rules.ExtractRules, logger *slog.Logger) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Extractor{
		catalog:      catalog,
		logger:       logger,
		rules:        r,
		pageFixes:    make(map[string][]pageFix),
		excluded:     toSet(r.ExcludePages),
		skipTable:    toSet(r.SkipTablePages),
		forceMerge:   toSet(r.ForceMerge),
		priority:     toSet(r.PriorityPages),
		tableClasses: toSet(r.TableClasses),
	}

	var err error
	if e.linkMatches, err = common.CompileAll(r.LinkMatches); err != nil {
		return nil, fmt.Errorf("link matches: %w", err)
	}
	if e.removeMatches, err = common.CompileAll(r.RemoveMatches); err != nil {
		return nil, fmt.Errorf("remove matches: %w", err)
	}
	if e.priorityCut, err = common.CompileAll(r.PriorityRemove); err != nil {
		return nil, fmt.Errorf("priority remove: %w", err)
	}
	for _, fix := range r.PageFixes {
		re, err := common.CompileLookaround(fix.Pattern)
		if err != nil {
			return nil, fmt.Errorf("page fix for %q: %w", fix.Page, err)
		}
		e.pageFixes[fix.Page] = append(e.pageFixes[fix.Page], pageFix{re: re, replace: fix.Replace})
	}
	return e, nil
}

// Excluded reports whether a page must be ignored entirely, either always or
// when reached from parent.
func (e *Extractor) Excluded(title, parent string) bool {
	if e.excluded[title] {
		return true
	}
	if p, ok := e.rules.ExcludeWithParent[title]; ok && parent != "" && p == parent {
		return true
	}
	for _, prefix := range e.rules.ExcludePrefixes {
		if strings.HasPrefix(title, prefix) {
			return true
		}
	}
	return false
}

// Preprocess strips comments, applies the page's fixups and cuts the text at
// the first priority marker.
func (e *Extractor) Preprocess(title, text string) string {
	text = markup.StripComments(text)

	for _, fix := range e.pageFixes[title] {
		fixed, err := common.ReplaceLookaround(fix.re, text, fix.replace)
		if err != nil {
			e.logger.Warn("page fix failed", "title", title, "error", err)
			continue
		}
		text = fixed
	}

	for _, re := range e.priorityCut {
		if loc := re.FindStringIndex(text); loc != nil {
			text = text[:loc[0]]
		}
	}
	return text
}

// Extract preprocesses and parses a page and returns its rateups in page order.
// Pages on the priority list and old pages fall back to link mode when no
// rateup table is found.
func (e *Extractor) Extract(title, text string, region model.Region, year int) Result {
	text = e.Preprocess(title, text)
	doc := markup.Parse(text)

	var sets []model.RateupSet
	if !e.skipTable[title] {
		sets = e.fromTables(title, doc)
	}
	if len(sets) == 0 && e.linkModeAllowed(region, year) {
		if e.priority[title] {
			if set := e.resolveLinks(doc.Links); len(set) > 0 {
				sets = append(sets, set)
			}
		} else {
			sets = e.fromLinkSections(text)
		}
	}

	return Result{Doc: doc, Rateups: dedupe(sets)}
}

func (e *Extractor) linkModeAllowed(region model.Region, year int) bool {
	until, ok := e.rules.LinkModeUntil[region]
	return !ok || year < until
}

func (e *Extractor) fromTables(title string, doc *markup.Document) []model.RateupSet {
	var sets []model.RateupSet
	noMerge, hasNoMerge := e.rules.NoMerge[title]
	parsed := 0

	for _, tag := range doc.Tags {
		if !e.isRateupTable(tag) {
			continue
		}

		var set model.RateupSet
		for _, t := range doc.TemplatesIn(tag.Start, tag.End) {
			if ref, ok := e.catalog.Ref(e.fixName(t.Name)); ok {
				set = set.Add(ref)
			}
		}
		if fix, ok := e.rules.RateupFixes[title]; ok {
			if ref, ok := e.catalog.Ref(fix); ok {
				set = set.Add(ref)
			}
		}
		if len(set) == 0 {
			continue
		}

		sets = append(sets, set)
		n := len(sets)
		if n > 1 && (e.forceMerge[title] ||
			(sets[n-2].Overlaps(sets[n-1]) && !slices.Contains(noMerge, parsed))) {
			sets[n-2] = sets[n-2].Union(sets[n-1])
			sets = sets[:n-1]

			n = len(sets)
			if n > 1 && sets[n-2].Overlaps(sets[n-1]) && !hasNoMerge {
				sets[n-2] = sets[n-2].Union(sets[n-1])
				sets = sets[:n-1]
			}
		}
		parsed++
	}
	return sets
}

func (e *Extractor) isRateupTable(tag markup.Tag) bool {
	class, ok := tag.Attr("class")
	if !ok || !e.tableClasses[class] {
		return false
	}
	for _, keyword := range e.rules.TableMatches {
		if strings.Contains(tag.Raw, keyword) {
			return true
		}
	}
	return false
}

type split struct {
	offset int
	keep   bool
}

// fromLinkSections cuts the page at keyword offsets, working from the bottom,
// and reads one rateup from each kept section.
func (e *Extractor) fromLinkSections(text string) []model.RateupSet {
	marks := make(map[int]bool)
	for _, re := range e.linkMatches {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			marks[loc[0]] = true
		}
	}
	for _, re := range e.removeMatches {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			marks[loc[0]] = false
		}
	}

	splits := make([]split, 0, len(marks))
	for offset, keep := range marks {
		splits = append(splits, split{offset: offset, keep: keep})
	}
	sort.Slice(splits, func(i, j int) bool { return splits[i].offset > splits[j].offset })

	var sets []model.RateupSet
	remaining := text
	for _, s := range splits {
		chunk := remaining[s.offset:]
		remaining = remaining[:s.offset]
		if !s.keep {
			continue
		}
		if set := e.resolveLinks(markup.Parse(chunk).Links); len(set) > 0 {
			sets = append([]model.RateupSet{set}, sets...)
		}
	}
	return sets
}

func (e *Extractor) resolveLinks(links []markup.Link) model.RateupSet {
	var set model.RateupSet
	for _, l := range links {
		if ref, ok := e.catalog.Ref(e.fixName(l.Title)); ok {
			set = set.Add(ref)
		}
	}
	return set
}

func (e *Extractor) fixName(name string) string {
	if fixed, ok := e.rules.NameFixes[name]; ok {
		return fixed
	}
	return name
}

func dedupe(sets []model.RateupSet) []model.RateupSet {
	seen := make(map[string]bool, len(sets))
	out := make([]model.RateupSet, 0, len(sets))
	for _, s := range sets {
		key := s.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, item := range items {
		m[item] = true
	}
	return m
}
