package model

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Rateup is a single featured servant on a banner.
type Rateup struct {
	Name string
	ID   int
}

// RateupSet is the set of servants featured on a banner. It is kept sorted by
// servant ID and never holds the same ID twice.
type RateupSet []Rateup

// NewRateupSet builds a set from the given refs. Later duplicates of an ID are dropped.
func NewRateupSet(refs ...Rateup) RateupSet {
	var set RateupSet
	for _, ref := range refs {
		set = set.Add(ref)
	}
	return set
}

// Add returns a copy of the set including ref.
func (s RateupSet) Add(ref Rateup) RateupSet {
	i := sort.Search(len(s), func(i int) bool { return s[i].ID >= ref.ID })
	if i < len(s) && s[i].ID == ref.ID {
		return s
	}
	out := make(RateupSet, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, ref)
	out = append(out, s[i:]...)
	return out
}

// Contains reports whether the set features the servant with the given ID.
func (s RateupSet) Contains(id int) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i].ID >= id })
	return i < len(s) && s[i].ID == id
}

// Equal reports whether both sets feature exactly the same servants.
func (s RateupSet) Equal(other RateupSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i].ID != other[i].ID {
			return false
		}
	}
	return true
}

// Overlaps reports whether the sets share at least one servant.
func (s RateupSet) Overlaps(other RateupSet) bool {
	i, j := 0, 0
	for i < len(s) && j < len(other) {
		switch {
		case s[i].ID == other[j].ID:
			return true
		case s[i].ID < other[j].ID:
			i++
		default:
			j++
		}
	}
	return false
}

// Union returns a new set with the servants of both sets.
func (s RateupSet) Union(other RateupSet) RateupSet {
	out := make(RateupSet, 0, len(s)+len(other))
	i, j := 0, 0
	for i < len(s) || j < len(other) {
		switch {
		case j >= len(other) || (i < len(s) && s[i].ID < other[j].ID):
			out = append(out, s[i])
			i++
		case i >= len(s) || other[j].ID < s[i].ID:
			out = append(out, other[j])
			j++
		default:
			out = append(out, s[i])
			i++
			j++
		}
	}
	return out
}

// IDs returns the servant IDs in ascending order.
func (s RateupSet) IDs() []int {
	ids := make([]int, len(s))
	for i, r := range s {
		ids[i] = r.ID
	}
	return ids
}

// Key is a stable string form of the set, suitable as a map key.
func (s RateupSet) Key() string {
	parts := make([]string, len(s))
	for i, r := range s {
		parts[i] = strconv.Itoa(r.ID)
	}
	return strings.Join(parts, ",")
}

// MarshalJSON writes the set as an object keyed by servant ID in numeric order.
func (s RateupSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(r.ID)))
		buf.WriteByte(':')
		name, err := json.Marshal(r.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object form written by MarshalJSON.
func (s *RateupSet) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var set RateupSet
	for key, name := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return err
		}
		set = set.Add(Rateup{ID: id, Name: name})
	}
	*s = set
	return nil
}
