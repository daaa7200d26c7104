package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Veraticus/summon-almanac/internal/common"
	"github.com/Veraticus/summon-almanac/internal/markup"
	"github.com/Veraticus/summon-almanac/internal/model"
)

// MemoryWiki is an in-memory wiki for tests. It is safe for concurrent use.
type MemoryWiki struct {
	pages      map[string]string
	categories map[string][]string
	files      map[string]string
	fetches    map[string]int
	failures   map[string]error
	mu         sync.Mutex
}

// NewMemoryWiki creates an empty wiki.
func NewMemoryWiki() *MemoryWiki {
	return &MemoryWiki{
		pages:      make(map[string]string),
		categories: make(map[string][]string),
		files:      make(map[string]string),
		fetches:    make(map[string]int),
		failures:   make(map[string]error),
	}
}

// AddPage stores a page's wikitext.
func (w *MemoryWiki) AddPage(title, text string) *MemoryWiki {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pages[title] = text
	return w
}

// AddCategory sets the members of a category.
func (w *MemoryWiki) AddCategory(category string, titles ...string) *MemoryWiki {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.categories[category] = titles
	return w
}

// AddFile registers a download URL for a file name.
func (w *MemoryWiki) AddFile(name, url string) *MemoryWiki {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[name] = url
	return w
}

// FailPage makes every fetch of title return err.
func (w *MemoryWiki) FailPage(title string, err error) *MemoryWiki {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failures[title] = err
	return w
}

// Page implements service.PageSource.
func (w *MemoryWiki) Page(ctx context.Context, title string) (*model.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fetches[title]++
	if err := w.failures[title]; err != nil {
		return nil, err
	}
	text, ok := w.pages[title]
	if !ok {
		return nil, fmt.Errorf("%s: %w", title, common.ErrPageNotFound)
	}
	return &model.Page{
		Title:     title,
		Text:      text,
		Templates: markup.Parse(text).TemplateNames(),
		Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

// CategoryMembers implements service.CategorySource.
func (w *MemoryWiki) CategoryMembers(ctx context.Context, category string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.categories[category]...), nil
}

// FileURL implements service.FileResolver.
func (w *MemoryWiki) FileURL(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	url, ok := w.files[name]
	if !ok {
		return "", fmt.Errorf("file %s: %w", name, common.ErrPageNotFound)
	}
	return url, nil
}

// Fetches reports how many times title was requested.
func (w *MemoryWiki) Fetches(title string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fetches[title]
}
