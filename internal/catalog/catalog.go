// Package catalog holds the servant roster used to resolve rateup names to IDs.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Veraticus/summon-almanac/internal/model"
)

// Catalog is an immutable name index over the servant roster.
type Catalog struct {
	byName   map[string]model.Servant
	servants []model.Servant
}

// New indexes servants by name. When two entries share a name the later one wins.
func New(servants []model.Servant) *Catalog {
	c := &Catalog{
		byName:   make(map[string]model.Servant, len(servants)),
		servants: append([]model.Servant(nil), servants...),
	}
	for _, s := range servants {
		c.byName[s.Name] = s
	}
	return c
}

// Load reads a servant_details.json roster.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var servants []model.Servant
	if err := json.Unmarshal(data, &servants); err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", path, err)
	}
	return New(servants), nil
}

// Save writes servants as an indented JSON roster.
func Save(path string, servants []model.Servant) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}
	data, err := json.MarshalIndent(servants, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}

// Lookup finds a servant by exact name.
func (c *Catalog) Lookup(name string) (model.Servant, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// Ref resolves a name to a rateup entry.
func (c *Catalog) Ref(name string) (model.Rateup, bool) {
	s, ok := c.byName[name]
	if !ok {
		return model.Rateup{}, false
	}
	return s.Ref(), true
}

// Servants returns the roster ordered by ID.
func (c *Catalog) Servants() []model.Servant {
	out := append([]model.Servant(nil), c.servants...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports the number of distinct names.
func (c *Catalog) Len() int {
	return len(c.byName)
}
