package model

import "time"

// DateOrigin records which extraction path produced a banner's dates.
type DateOrigin string

// Date origins.
const (
	OriginHeaderNew DateOrigin = "header-new"
	OriginHeaderOld DateOrigin = "header-old"
	OriginTab       DateOrigin = "tab"
	OriginInherited DateOrigin = "inherited"
)

// Banner is a named, dated summoning campaign featuring a set of servants.
type Banner struct {
	StartDate  time.Time
	EndDate    time.Time
	Name       string
	Slug       string
	DateOrigin DateOrigin
	Rateups    RateupSet
	normalized bool
}

// NewBanner creates a banner with the given dates and rateups.
func NewBanner(name string, dates DateRange, origin DateOrigin, rateups RateupSet) *Banner {
	return &Banner{
		Name:       name,
		StartDate:  dates.Start,
		EndDate:    dates.End,
		DateOrigin: origin,
		Rateups:    rateups,
	}
}

// Dates returns the banner's start/end pair.
func (b *Banner) Dates() DateRange {
	return DateRange{Start: b.StartDate, End: b.EndDate}
}

// SetDates replaces the banner's dates and origin.
func (b *Banner) SetDates(dates DateRange, origin DateOrigin) {
	b.StartDate = dates.Start
	b.EndDate = dates.End
	b.DateOrigin = origin
}

// Rename sets a new name that has not been through name normalization yet.
func (b *Banner) Rename(name string) {
	b.Name = name
	b.normalized = false
}

// CopyMetadata overwrites name, dates and origin with other's. Rateups are untouched.
func (b *Banner) CopyMetadata(other *Banner) {
	b.Name = other.Name
	b.StartDate = other.StartDate
	b.EndDate = other.EndDate
	b.DateOrigin = other.DateOrigin
	b.normalized = other.normalized
}

// NameNormalized reports whether the current name already went through normalization.
func (b *Banner) NameNormalized() bool {
	return b.normalized
}

// MarkNameNormalized records that the current name is final.
func (b *Banner) MarkNameNormalized() {
	b.normalized = true
}
