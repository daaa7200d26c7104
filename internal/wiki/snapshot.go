package wiki

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/summon-almanac/internal/common"
	"github.com/Veraticus/summon-almanac/internal/markup"
	"github.com/Veraticus/summon-almanac/internal/model"
	"github.com/Veraticus/summon-almanac/internal/service"
)

const (
	pageExt     = ".wiki"
	metaExt     = ".json"
	categoryDir = "categories"
)

// Snapshot is a directory of saved pages. It serves pages offline and, with
// an upstream wiki, records every page it has to fetch.
//
// Layout: <dir>/<escaped title>.wiki holds the wikitext, an optional
// <escaped title>.json the revision metadata, and
// <dir>/categories/<escaped name>.txt one member title per line.
type Snapshot struct {
	upstream service.Wiki
	dir      string
}

var _ service.Wiki = (*Snapshot)(nil)

// NewSnapshot opens a snapshot directory. upstream may be nil for offline use.
func NewSnapshot(dir string, upstream service.Wiki) (*Snapshot, error) {
	if dir == "" {
		return nil, errors.New("snapshot directory is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, categoryDir), 0750); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &Snapshot{dir: dir, upstream: upstream}, nil
}

// Page returns the saved page, fetching and saving it on a miss.
func (s *Snapshot) Page(ctx context.Context, title string) (*model.Page, error) {
	base := filepath.Join(s.dir, url.PathEscape(title))
	text, err := os.ReadFile(base + pageExt) // #nosec G304
	if err == nil {
		page := &model.Page{Title: title}
		if meta, metaErr := os.ReadFile(base + metaExt); metaErr == nil { // #nosec G304
			if err := json.Unmarshal(meta, page); err != nil {
				return nil, fmt.Errorf("corrupt snapshot metadata for %q: %w", title, err)
			}
		}
		page.Text = string(text)
		page.Templates = markup.Parse(page.Text).TemplateNames()
		return page, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read snapshot of %q: %w", title, err)
	}
	if s.upstream == nil {
		return nil, fmt.Errorf("%w: %s", common.ErrPageNotFound, title)
	}

	page, err := s.upstream.Page(ctx, title)
	if err != nil {
		return nil, err
	}
	if err := s.SavePage(page); err != nil {
		return nil, err
	}
	return page, nil
}

// SavePage writes a page into the snapshot under its requested title.
func (s *Snapshot) SavePage(page *model.Page) error {
	base := filepath.Join(s.dir, url.PathEscape(page.Title))
	if err := os.WriteFile(base+pageExt, []byte(page.Text), 0600); err != nil {
		return fmt.Errorf("failed to save %q: %w", page.Title, err)
	}
	meta, err := json.Marshal(struct {
		*model.Page
		Text      string   `json:"text,omitempty"`
		Templates []string `json:"templates,omitempty"`
	}{Page: page})
	if err != nil {
		return fmt.Errorf("failed to encode metadata for %q: %w", page.Title, err)
	}
	return os.WriteFile(base+metaExt, meta, 0600)
}

// CategoryMembers returns the saved member list, fetching it on a miss.
func (s *Snapshot) CategoryMembers(ctx context.Context, category string) ([]string, error) {
	path := filepath.Join(s.dir, categoryDir, url.PathEscape(strings.TrimPrefix(category, "Category:"))+".txt")
	f, err := os.Open(path) // #nosec G304
	if err == nil {
		defer func() { _ = f.Close() }()
		var titles []string
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				titles = append(titles, line)
			}
		}
		return titles, scanner.Err()
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read category %q: %w", category, err)
	}
	if s.upstream == nil {
		return nil, nil
	}

	titles, err := s.upstream.CategoryMembers(ctx, category)
	if err != nil {
		return nil, err
	}
	data := strings.Join(titles, "\n")
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		return nil, fmt.Errorf("failed to save category %q: %w", category, err)
	}
	return titles, nil
}

// FileURL defers to the upstream wiki.
func (s *Snapshot) FileURL(ctx context.Context, name string) (string, error) {
	if s.upstream == nil {
		return "", fmt.Errorf("%w: %s (offline)", common.ErrPageNotFound, name)
	}
	return s.upstream.FileURL(ctx, name)
}
