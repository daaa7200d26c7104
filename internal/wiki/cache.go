package wiki

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/summon-almanac/internal/common"
	"github.com/Veraticus/summon-almanac/internal/model"
	"github.com/Veraticus/summon-almanac/internal/service"
)

// Cache memoizes pages for the length of one harvest. Missing pages are
// remembered as missing.
type Cache struct {
	source  service.PageSource
	pages   map[string]*model.Page
	missing map[string]bool
	mu      sync.Mutex
}

var _ service.PageSource = (*Cache)(nil)

// NewCache wraps source.
func NewCache(source service.PageSource) *Cache {
	return &Cache{
		source:  source,
		pages:   make(map[string]*model.Page),
		missing: make(map[string]bool),
	}
}

// Page returns the cached page or fetches it.
func (c *Cache) Page(ctx context.Context, title string) (*model.Page, error) {
	c.mu.Lock()
	page, ok := c.pages[title]
	gone := c.missing[title]
	c.mu.Unlock()
	if ok {
		return page, nil
	}
	if gone {
		return nil, common.ErrPageNotFound
	}

	page, err := c.source.Page(ctx, title)
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case err == nil:
		c.pages[title] = page
	case errors.Is(err, common.ErrPageNotFound):
		c.missing[title] = true
	}
	return page, err
}

// Prefetch warms the cache with up to limit concurrent fetches. Missing
// pages are not an error; the first other failure cancels the rest.
func (c *Cache) Prefetch(ctx context.Context, titles []string, limit int) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	seen := make(map[string]bool, len(titles))
	for _, title := range titles {
		if seen[title] {
			continue
		}
		seen[title] = true

		g.Go(func() error {
			_, err := c.Page(ctx, title)
			if errors.Is(err, common.ErrPageNotFound) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

// Len reports how many pages are cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pages)
}
