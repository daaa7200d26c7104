// Package roster provides servant fixtures for tests. Fixtures are built from
// a fixed table of real servants so that IDs, names and classes stay
// consistent across packages.
//
// # Basic Usage
//
//	r := roster.NewBuilder(t).WithFixture(roster.FixtureStandard).Build()
//	cat := r.Catalog()
//
// # With Storage
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b roster.Builder) roster.Builder {
//		return b.WithServants(roster.Artoria, roster.Merlin)
//	})
package roster
