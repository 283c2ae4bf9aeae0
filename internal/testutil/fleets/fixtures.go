package fleets

import (
	"strconv"

	"github.com/Veraticus/fleet/internal/model"
)

type catalogEntry struct {
	category  model.Category
	makeModel string
	year      int
	length    int
	price     model.Money
}

var catalog = map[BoatName]catalogEntry{
	BoatSkipper:  {category: model.CategoryPower, makeModel: "Mako", year: 2020, length: 20, price: model.Cents(12000, 0)},
	BoatMoonGlow: {category: model.CategorySailing, makeModel: "Catalina 27", year: 1985, length: 27, price: model.Cents(8500, 50)},
	BoatSeaBreeze: {category: model.CategorySailing, makeModel: "Hunter 33", year: 2004, length: 33, price: model.Cents(41000, 0)},
}

// Fixture is a named set of boats.
type Fixture []BoatName

// Fixtures.
var (
	// FixtureSkipper holds only the power boat used in the console scenarios.
	FixtureSkipper = Fixture{BoatSkipper}
	// FixtureHarbor mixes power and sail.
	FixtureHarbor = Fixture{BoatSkipper, BoatMoonGlow, BoatSeaBreeze}
)

// CSV returns the data file line for a predefined boat.
func CSV(name BoatName) string {
	entry := catalog[name]
	return string(entry.category) + "," + string(name) + "," +
		strconv.Itoa(entry.year) + "," + entry.makeModel + "," + strconv.Itoa(entry.length) + "," + entry.price.Decimal()
}

