// Package rules holds the heuristic tables that steer extraction, consolidation
// and finalization. Tables are plain data decoded from YAML and handed to each
// component at construction time.
package rules

import "github.com/Veraticus/summon-almanac/internal/model"

// Set is the full collection of override tables.
type Set struct {
	Regions      map[model.Region]RegionRules `yaml:"regions"`
	RegionSuffix string                       `yaml:"region_suffix"`
	Extract      ExtractRules                 `yaml:"extract"`
	Titles       TitleRules                   `yaml:"titles"`
	Dates        DateRules                    `yaml:"dates"`
	Walker       WalkerRules                  `yaml:"walker"`
	EventLists   EventListRules               `yaml:"event_lists"`
	Finalize     FinalizeRules                `yaml:"finalize"`
}

// ExtractRules configures rateup extraction from a single page.
type ExtractRules struct {
	ExcludeWithParent map[string]string    `yaml:"exclude_with_parent"`
	NameFixes         map[string]string    `yaml:"name_fixes"`
	RateupFixes       map[string]string    `yaml:"rateup_fixes"`
	NoMerge           map[string][]int     `yaml:"no_merge"`
	LinkModeUntil     map[model.Region]int `yaml:"link_mode_until"`
	LinkMatches       []string             `yaml:"link_matches"`
	RemoveMatches     []string             `yaml:"remove_matches"`
	ExcludePages      []string             `yaml:"exclude_pages"`
	ExcludePrefixes   []string             `yaml:"exclude_prefixes"`
	PageFixes         []PageFix            `yaml:"page_fixes"`
	PriorityRemove    []string             `yaml:"priority_remove"`
	SkipTablePages    []string             `yaml:"skip_table_pages"`
	TableClasses      []string             `yaml:"table_classes"`
	TableMatches      []string             `yaml:"table_matches"`
	ForceMerge        []string             `yaml:"force_merge"`
	PriorityPages     []string             `yaml:"priority_pages"`
}

// PageFix is a regex substitution applied to one page's text before parsing.
// Patterns may use lookaround; replacements reference groups as ${1}.
type PageFix struct {
	Page    string `yaml:"page"`
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
}

// TitleRules derives banner titles from subpage titles.
type TitleRules struct {
	// SubpageRemove keywords cut the title at its first slash.
	SubpageRemove []string `yaml:"subpage_remove"`
	// SubpageReplace keywords turn every slash into a space.
	SubpageReplace []string `yaml:"subpage_replace"`
	// ProtectedPrefix marks slashes that belong to a name, as in "Fate/Zero".
	ProtectedPrefix string `yaml:"protected_prefix"`
}

// DateRules configures date resolution.
type DateRules struct {
	Months          map[string]int `yaml:"months"`
	HeaderTemplates []string       `yaml:"header_templates"`
	SkipDuration    []string       `yaml:"skip_duration"`
	FakeBanners     []string       `yaml:"fake_banners"`
	TabSkipLabels   []string       `yaml:"tab_skip_labels"`
	DurationLines   int            `yaml:"duration_lines"`
}

// WalkerRules configures subpage discovery.
type WalkerRules struct {
	IncludeSubpages map[string][]string `yaml:"include_subpages"`
	SummonSubpage   []string            `yaml:"summon_subpage"`
	KeepEmpty       []string            `yaml:"keep_empty"`
}

// EventListRules configures parsing of the yearly event-list pages.
type EventListRules struct {
	SkipDates         map[string][]string `yaml:"skip_dates"`
	SkipImages        map[string][]string `yaml:"skip_images"`
	IncludePages      []IncludePage       `yaml:"include_pages"`
	TemplateListsFrom int                 `yaml:"template_lists_from"`
}

// IncludePage adds an event that is missing from an event list.
type IncludePage struct {
	Title       string       `yaml:"title"`
	Region      model.Region `yaml:"region"`
	ImageFile   string       `yaml:"image"`
	InsertAfter string       `yaml:"insert_after"`
	Year        int          `yaml:"year"`
}

// RegionRules holds the tables that differ per region.
type RegionRules struct {
	CurrentCategory string         `yaml:"current_category"`
	EventLists      []string       `yaml:"event_lists"`
	MergeEvents     []EventMerge   `yaml:"merge_events"`
	BannerRenames   []BannerRename `yaml:"banner_renames"`
	DateFixes       []DateFix      `yaml:"date_fixes"`
}

// EventMerge moves every banner of Source into Destination.
type EventMerge struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
}

// BannerRename renames one banner of one event.
type BannerRename struct {
	Event  string `yaml:"event"`
	Banner string `yaml:"banner"`
	Name   string `yaml:"name"`
}

// DateFix overrides the dates of one banner. Either date may be empty.
// Dates use the 2006-01-02 layout.
type DateFix struct {
	Event  string `yaml:"event"`
	Banner string `yaml:"banner"`
	Start  string `yaml:"start"`
	End    string `yaml:"end"`
}

// FinalizeRules configures banner-name normalization.
type FinalizeRules struct {
	NameFixes []NameFix `yaml:"name_fixes"`
}

// NameFix is an ordered banner-name substitution. With Skip > 0 the first Skip
// matching banners of each event are left alone.
type NameFix struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
	Skip    int    `yaml:"skip"`
}

// Region returns the per-region tables, or an empty set for unknown regions.
func (s *Set) Region(r model.Region) RegionRules {
	if s.Regions == nil {
		return RegionRules{}
	}
	return s.Regions[r]
}
