package roster

import (
	"context"
	"sort"
	"testing"

	"github.com/Veraticus/summon-almanac/internal/catalog"
	"github.com/Veraticus/summon-almanac/internal/model"
	"github.com/Veraticus/summon-almanac/internal/service"
)

// Name is a servant name known to the fixture table.
type Name string

// Servants available to tests.
const (
	Mash          Name = "Mash Kyrielight"
	Artoria       Name = "Artoria Pendragon"
	Altera        Name = "Altera"
	Gilgamesh     Name = "Gilgamesh"
	Jeanne        Name = "Jeanne d'Arc"
	Tamamo        Name = "Tamamo-no-Mae"
	Mordred       Name = "Mordred"
	EdmondDantes  Name = "Edmond Dantès"
	JeanneAlter   Name = "Jeanne d'Arc (Alter)"
	Merlin        Name = "Merlin"
	Musashi       Name = "Miyamoto Musashi"
	MarieAntCast  Name = "Marie Antoinette (Caster)"
	Jaguar        Name = "Jaguar Man"
	EmiyaAlter    Name = "EMIYA (Alter)"
	Tenochtitlan  Name = "Tenochtitlan"
	HozoinInshun  Name = "Hōzōin Inshun"
	Koyanskaya    Name = "Koyanskaya of Light"
	MorganLeFay   Name = "Morgan"
	BaobhanSith   Name = "Baobhan Sìth"
	OberonVortig  Name = "Oberon"
	CastoriaAlter Name = "Altria Caster"
)

var table = map[Name]model.Servant{
	Mash:          {ID: 1, Name: string(Mash), Rarity: 4, ClassType: "Shielder"},
	Artoria:       {ID: 2, Name: string(Artoria), Rarity: 5, ClassType: "Saber"},
	Altera:        {ID: 8, Name: string(Altera), Rarity: 5, ClassType: "Saber"},
	Gilgamesh:     {ID: 12, Name: string(Gilgamesh), Rarity: 5, ClassType: "Archer"},
	Jeanne:        {ID: 59, Name: string(Jeanne), Rarity: 5, ClassType: "Ruler"},
	Tamamo:        {ID: 62, Name: string(Tamamo), Rarity: 5, ClassType: "Caster"},
	Mordred:       {ID: 76, Name: string(Mordred), Rarity: 5, ClassType: "Saber"},
	EdmondDantes:  {ID: 96, Name: string(EdmondDantes), Rarity: 5, ClassType: "Avenger"},
	JeanneAlter:   {ID: 106, Name: string(JeanneAlter), Rarity: 5, ClassType: "Avenger"},
	Merlin:        {ID: 150, Name: string(Merlin), Rarity: 5, ClassType: "Caster"},
	Musashi:       {ID: 153, Name: string(Musashi), Rarity: 5, ClassType: "Saber"},
	MarieAntCast:  {ID: 130, Name: string(MarieAntCast), Rarity: 4, ClassType: "Caster"},
	Jaguar:        {ID: 148, Name: string(Jaguar), Rarity: 3, ClassType: "Berserker"},
	EmiyaAlter:    {ID: 157, Name: string(EmiyaAlter), Rarity: 4, ClassType: "Archer"},
	Tenochtitlan:  {ID: 306, Name: string(Tenochtitlan), Rarity: 5, ClassType: "Pretender"},
	HozoinInshun:  {ID: 212, Name: string(HozoinInshun), Rarity: 3, ClassType: "Lancer"},
	Koyanskaya:    {ID: 314, Name: string(Koyanskaya), Rarity: 5, ClassType: "Assassin"},
	MorganLeFay:   {ID: 309, Name: string(MorganLeFay), Rarity: 5, ClassType: "Berserker"},
	BaobhanSith:   {ID: 311, Name: string(BaobhanSith), Rarity: 4, ClassType: "Archer"},
	OberonVortig:  {ID: 316, Name: string(OberonVortig), Rarity: 5, ClassType: "Pretender"},
	CastoriaAlter: {ID: 284, Name: string(CastoriaAlter), Rarity: 5, ClassType: "Caster"},
}

// Servant returns the fixture entry for name or fails the test.
func Servant(t *testing.T, name Name) model.Servant {
	t.Helper()
	s, ok := table[name]
	if !ok {
		t.Fatalf("servant %q is not in the fixture table", name)
	}
	return s
}

// Ref returns the rateup entry for name or fails the test.
func Ref(t *testing.T, name Name) model.Rateup {
	t.Helper()
	return Servant(t, name).Ref()
}

// Set builds a rateup set from fixture names.
func Set(t *testing.T, names ...Name) model.RateupSet {
	t.Helper()
	refs := make([]model.Rateup, len(names))
	for i, n := range names {
		refs[i] = Ref(t, n)
	}
	return model.NewRateupSet(refs...)
}

// Roster is a collection of fixture servants ordered by ID.
type Roster []model.Servant

// Find returns the servant with the given name, or nil if not found.
func (r Roster) Find(name Name) *model.Servant {
	for i := range r {
		if r[i].Name == string(name) {
			return &r[i]
		}
	}
	return nil
}

// MustFind returns the servant with the given name or fails the test.
func (r Roster) MustFind(t *testing.T, name Name) model.Servant {
	t.Helper()
	s := r.Find(name)
	if s == nil {
		t.Fatalf("servant %q not found in roster", name)
	}
	return *s
}

// Names returns every servant name.
func (r Roster) Names() []string {
	names := make([]string, len(r))
	for i, s := range r {
		names[i] = s.Name
	}
	return names
}

// Catalog wraps the roster in a name lookup.
func (r Roster) Catalog() *catalog.Catalog {
	return catalog.New(r)
}

// Builder assembles a roster for a single test.
type Builder interface {
	// WithServants adds servants by name.
	WithServants(names ...Name) Builder

	// WithFixture adds every servant of a fixture.
	WithFixture(fixture Fixture) Builder

	// Build returns the roster without touching storage.
	Build() Roster

	// Save builds the roster and stores it.
	Save(ctx context.Context, storage service.Storage) (Roster, error)
}

type builder struct {
	t     *testing.T
	names map[Name]struct{}
}

// NewBuilder creates a builder for the given test.
func NewBuilder(t *testing.T) Builder {
	t.Helper()
	return &builder{t: t, names: make(map[Name]struct{})}
}

func (b *builder) WithServants(names ...Name) Builder {
	for _, n := range names {
		b.names[n] = struct{}{}
	}
	return b
}

func (b *builder) WithFixture(fixture Fixture) Builder {
	return b.WithServants(fixture.Servants()...)
}

func (b *builder) Build() Roster {
	b.t.Helper()
	out := make(Roster, 0, len(b.names))
	for n := range b.names {
		out = append(out, Servant(b.t, n))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *builder) Save(ctx context.Context, storage service.Storage) (Roster, error) {
	r := b.Build()
	if len(r) == 0 {
		return r, nil
	}
	if err := storage.SaveServants(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}
