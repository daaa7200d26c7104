// Package consolidate holds the per-region event store and the windowed
// merge passes that fold duplicate campaigns into one event.
package consolidate

import (
	"slices"

	"github.com/Veraticus/summon-almanac/internal/model"
)

// Store is an insertion-ordered set of events keyed by name. Order is
// chronological and the merge passes depend on it.
type Store struct {
	events map[string]*model.Event
	order  []string
	region model.Region
}

// NewStore creates an empty store for region.
func NewStore(region model.Region) *Store {
	return &Store{region: region, events: make(map[string]*model.Event)}
}

// Region returns the store's region.
func (s *Store) Region() model.Region {
	return s.region
}

// Put inserts e at the end, or replaces the event of the same name where it stands.
func (s *Store) Put(e *model.Event) {
	if _, ok := s.events[e.Name]; !ok {
		s.order = append(s.order, e.Name)
	}
	s.events[e.Name] = e
}

// Get looks an event up by name.
func (s *Store) Get(name string) (*model.Event, bool) {
	e, ok := s.events[name]
	return e, ok
}

// Has reports whether an event of that name exists.
func (s *Store) Has(name string) bool {
	_, ok := s.events[name]
	return ok
}

// Delete removes an event. It reports whether the event existed.
func (s *Store) Delete(name string) bool {
	if _, ok := s.events[name]; !ok {
		return false
	}
	delete(s.events, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
	return true
}

// Rename changes an event's name. When the new name is taken, the taken slot
// keeps its position and receives the renamed event; the old slot disappears.
func (s *Store) Rename(oldName, newName string) {
	e, ok := s.events[oldName]
	if !ok || oldName == newName {
		return
	}
	e.Name = newName
	if _, taken := s.events[newName]; taken {
		s.Delete(oldName)
		s.events[newName] = e
		return
	}
	delete(s.events, oldName)
	s.events[newName] = e
	s.order[slices.Index(s.order, oldName)] = newName
}

// Len reports the number of events.
func (s *Store) Len() int {
	return len(s.order)
}

// FromEnd returns the k-th event from the end, with k=1 the most recent.
func (s *Store) FromEnd(k int) (*model.Event, bool) {
	if k < 1 || k > len(s.order) {
		return nil, false
	}
	return s.events[s.order[len(s.order)-k]], true
}

// Last returns the most recently inserted event.
func (s *Store) Last() (*model.Event, bool) {
	return s.FromEnd(1)
}

// Events returns the events in order.
func (s *Store) Events() []*model.Event {
	out := make([]*model.Event, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.events[name])
	}
	return out
}

// Names returns the event names in order.
func (s *Store) Names() []string {
	return slices.Clone(s.order)
}
