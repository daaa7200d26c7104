package model

import "time"

// Page is one wiki page as fetched.
type Page struct {
	Timestamp  time.Time `json:"timestamp"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	Templates  []string  `json:"templates,omitempty"`
	RevisionID int64     `json:"revision_id,omitempty"`
}

// EventEntry is one line of a yearly event list: the event's page title and
// dates, plus the banner image if the list carries one.
type EventEntry struct {
	Dates     DateRange
	Title     string
	ImageFile string
}
