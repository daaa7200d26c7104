package rules

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/dlclark/regexp2"
	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRules []byte

// DefaultYAML returns the embedded rule tables.
func DefaultYAML() []byte {
	return bytes.Clone(defaultRules)
}

// Default decodes the embedded rule tables.
func Default() (*Set, error) {
	return Parse(defaultRules)
}

// Parse decodes and validates a rule set.
func Parse(data []byte) (*Set, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("rules: payload is empty")
	}
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("rules: decode: %w", err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// Load reads a rule file, or the embedded defaults when path is empty.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules: %s: %w", path, err)
	}
	return set, nil
}

// Validate checks that every pattern compiles and every date parses.
func (s *Set) Validate() error {
	for _, group := range [][]string{s.Extract.LinkMatches, s.Extract.RemoveMatches, s.Extract.PriorityRemove} {
		for _, p := range group {
			if _, err := regexp.Compile(p); err != nil {
				return fmt.Errorf("rules: pattern %q: %w", p, err)
			}
		}
	}
	for _, fix := range s.Extract.PageFixes {
		if _, err := regexp2.Compile(fix.Pattern, regexp2.None); err != nil {
			return fmt.Errorf("rules: page fix for %q: %w", fix.Page, err)
		}
	}
	for _, fix := range s.Finalize.NameFixes {
		if _, err := regexp2.Compile(fix.Pattern, regexp2.None); err != nil {
			return fmt.Errorf("rules: name fix %q: %w", fix.Pattern, err)
		}
		if fix.Skip < 0 {
			return fmt.Errorf("rules: name fix %q: negative skip", fix.Pattern)
		}
	}
	for region, r := range s.Regions {
		for _, fix := range r.DateFixes {
			for _, d := range []string{fix.Start, fix.End} {
				if d == "" {
					continue
				}
				if _, err := time.Parse(time.DateOnly, d); err != nil {
					return fmt.Errorf("rules: %s date fix for %q/%q: %w", region, fix.Event, fix.Banner, err)
				}
			}
		}
	}
	if len(s.Dates.Months) == 0 {
		return fmt.Errorf("rules: month table is empty")
	}
	return nil
}
