package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateupSet_AddKeepsOrder(t *testing.T) {
	set := NewRateupSet(
		Rateup{ID: 12, Name: "Gilgamesh"},
		Rateup{ID: 2, Name: "Altria Pendragon"},
		Rateup{ID: 12, Name: "Gilgamesh (dupe)"},
		Rateup{ID: 7, Name: "Cu Chulainn"},
	)

	assert.Equal(t, []int{2, 7, 12}, set.IDs())
	assert.Equal(t, "Gilgamesh", set[2].Name)
	assert.Equal(t, "2,7,12", set.Key())
	assert.True(t, set.Contains(7))
	assert.False(t, set.Contains(8))
}

func TestRateupSet_SetOperations(t *testing.T) {
	xy := NewRateupSet(Rateup{ID: 1, Name: "X"}, Rateup{ID: 2, Name: "Y"})
	yz := NewRateupSet(Rateup{ID: 2, Name: "Y"}, Rateup{ID: 3, Name: "Z"})
	z := NewRateupSet(Rateup{ID: 3, Name: "Z"})

	tests := []struct {
		name     string
		a, b     RateupSet
		overlaps bool
		equal    bool
		union    []int
	}{
		{name: "shared member", a: xy, b: yz, overlaps: true, union: []int{1, 2, 3}},
		{name: "disjoint", a: xy, b: z, overlaps: false, union: []int{1, 2, 3}},
		{name: "identical", a: xy, b: NewRateupSet(Rateup{ID: 2, Name: "Y"}, Rateup{ID: 1, Name: "X"}), overlaps: true, equal: true, union: []int{1, 2}},
		{name: "empty", a: xy, b: nil, overlaps: false, union: []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlaps, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.overlaps, tt.b.Overlaps(tt.a))
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.union, tt.a.Union(tt.b).IDs())
		})
	}
}

func TestRateupSet_JSONUsesNumericOrder(t *testing.T) {
	set := NewRateupSet(
		Rateup{ID: 10, Name: "Ten"},
		Rateup{ID: 2, Name: "Two"},
		Rateup{ID: 100, Name: "Hundred"},
	)

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.Equal(t, `{"2":"Two","10":"Ten","100":"Hundred"}`, string(data))

	var decoded RateupSet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equal(set))
}
