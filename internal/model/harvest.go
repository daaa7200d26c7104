package model

import "time"

// HarvestRun records one completed harvest.
type HarvestRun struct {
	StartedAt   time.Time
	FinishedAt  time.Time
	Region      Region
	RulesDigest string
	ID          int64
	Events      int
	Banners     int
}

// Appearance is one banner a servant was featured on.
type Appearance struct {
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Region     Region    `json:"region"`
	EventName  string    `json:"event"`
	EventSlug  string    `json:"event_slug"`
	BannerName string    `json:"banner"`
	BannerSlug string    `json:"banner_slug"`
	CoFeatured int       `json:"co_featured"`
}
