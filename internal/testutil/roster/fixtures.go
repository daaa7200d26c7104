package roster

// Fixture is a predefined set of servants for a family of tests.
type Fixture interface {
	Name() string
	Servants() []Name
}

type fixture struct {
	name     string
	servants []Name
}

func (f *fixture) Name() string     { return f.name }
func (f *fixture) Servants() []Name { return f.servants }

// Predefined fixtures.
var (
	// FixtureMinimal is enough for single-banner tests.
	FixtureMinimal = &fixture{
		name:     "Minimal",
		servants: []Name{Artoria, Gilgamesh, Merlin},
	}

	// FixtureStandard covers the servants used by extraction and
	// consolidation scenarios, including the ones targeted by name fixes.
	FixtureStandard = &fixture{
		name: "Standard",
		servants: []Name{
			Mash, Artoria, Altera, Gilgamesh, Jeanne, Tamamo, Mordred,
			EdmondDantes, JeanneAlter, Merlin, Musashi, MarieAntCast,
			Jaguar, EmiyaAlter, Tenochtitlan, HozoinInshun,
		},
	}

	// FixtureLostbelt adds the later servants used by chapter-release tests.
	FixtureLostbelt = &fixture{
		name:     "Lostbelt",
		servants: []Name{Koyanskaya, MorganLeFay, BaobhanSith, OberonVortig, CastoriaAlter},
	}
)
