// Package service defines the interfaces shared between the harvest pipeline
// and its backends.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/summon-almanac/internal/model"
)

// PageSource fetches wiki pages. Missing pages return common.ErrPageNotFound.
type PageSource interface {
	Page(ctx context.Context, title string) (*model.Page, error)
}

// CategorySource lists the pages in a wiki category.
type CategorySource interface {
	CategoryMembers(ctx context.Context, category string) ([]string, error)
}

// FileResolver maps a wiki file name onto a downloadable URL.
type FileResolver interface {
	FileURL(ctx context.Context, name string) (string, error)
}

// Wiki is everything the harvester needs from the remote wiki.
type Wiki interface {
	PageSource
	CategorySource
	FileResolver
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Servant operations
	SaveServants(ctx context.Context, servants []model.Servant) error
	GetServants(ctx context.Context) ([]model.Servant, error)
	GetServant(ctx context.Context, id int) (*model.Servant, error)

	// Harvest operations
	ReplaceRegion(ctx context.Context, region model.Region, events []*model.Event) error
	GetEvents(ctx context.Context, region model.Region) ([]*model.Event, error)
	GetAppearances(ctx context.Context, servantID int) ([]model.Appearance, error)
	RecordRun(ctx context.Context, run *model.HarvestRun) error
	GetLatestRun(ctx context.Context, region model.Region) (*model.HarvestRun, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// WithDefaults fills unset fields.
func (o RetryOptions) WithDefaults() RetryOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = 100 * time.Millisecond
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 30 * time.Second
	}
	if o.Multiplier <= 0 {
		o.Multiplier = 2.0
	}
	return o
}

// Progress receives per-item progress from long-running loops.
type Progress interface {
	Start(total int, description string)
	Advance(label string)
	Finish()
}

// Prefetcher is implemented by page sources that can warm themselves concurrently.
type Prefetcher interface {
	Prefetch(ctx context.Context, titles []string, limit int) error
}

// NopProgress discards progress updates.
type NopProgress struct{}

// Start implements Progress.
func (NopProgress) Start(int, string) {}

// Advance implements Progress.
func (NopProgress) Advance(string) {}

// Finish implements Progress.
func (NopProgress) Finish() {}
