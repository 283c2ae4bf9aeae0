// Package fleets builds fleets for tests.
//
// Example usage:
//
//	fleet := fleets.NewBuilder(t).
//		WithFixture(fleets.FixtureHarbor).
//		WithExpense(fleets.BoatSkipper, model.Cents(5000, 0)).
//		Build()
package fleets

import (
	"testing"

	"github.com/Veraticus/fleet/internal/model"
)

// BoatName is the name of a predefined test boat.
type BoatName string

// Predefined boats.
const (
	BoatSkipper  BoatName = "Skipper"
	BoatMoonGlow BoatName = "Moon Glow"
	BoatSeaBreeze BoatName = "Sea Breeze"
)

// Builder assembles a fleet for a test. Any construction error fails the test.
type Builder struct {
	t      *testing.T
	bounds model.Bounds
	boats  []*model.Boat
}

// NewBuilder returns an empty builder using the default bounds.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t, bounds: model.DefaultBounds()}
}

// WithBounds changes the bounds used for boats added afterwards.
func (b *Builder) WithBounds(bounds model.Bounds) *Builder {
	b.bounds = bounds
	return b
}

// WithBoat adds a boat built from its attributes.
func (b *Builder) WithBoat(category model.Category, name string, year int, makeModel string, length int, price model.Money) *Builder {
	b.t.Helper()
	boat, err := model.NewBoat(category, name, year, makeModel, length, price, b.bounds)
	if err != nil {
		b.t.Fatalf("failed to build boat %q: %v", name, err)
	}
	b.boats = append(b.boats, boat)
	return b
}

// WithNamed adds one of the predefined boats.
func (b *Builder) WithNamed(names ...BoatName) *Builder {
	b.t.Helper()
	for _, name := range names {
		entry, ok := catalog[name]
		if !ok {
			b.t.Fatalf("unknown test boat %q", name)
		}
		b.WithBoat(entry.category, string(name), entry.year, entry.makeModel, entry.length, entry.price)
	}
	return b
}

// WithFixture adds every boat of a fixture.
func (b *Builder) WithFixture(fixture Fixture) *Builder {
	b.t.Helper()
	return b.WithNamed(fixture...)
}

// WithExpense charges amount against the first boat with the given name.
// The expense must be authorized.
func (b *Builder) WithExpense(name BoatName, amount model.Money) *Builder {
	b.t.Helper()
	for _, boat := range b.boats {
		if boat.Name == string(name) {
			if result := boat.TryAddExpense(amount); !result.Authorized() {
				b.t.Fatalf("expense %s on %q was %s", amount, name, result.Status)
			}
			return b
		}
	}
	b.t.Fatalf("no boat %q in builder", name)
	return b
}

// Build returns the fleet in the order boats were added.
func (b *Builder) Build() *model.Fleet {
	return model.NewFleet(b.boats...)
}
