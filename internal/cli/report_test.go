package cli

import (
	"testing"

	"github.com/Veraticus/fleet/internal/model"
	"github.com/Veraticus/fleet/internal/testutil/fleets"
	"github.com/stretchr/testify/assert"
)

func TestBudgetStyle(t *testing.T) {
	tests := []struct {
		name  string
		spent model.Money
		want  string
	}{
		{name: "plenty left", spent: model.Cents(5000, 0), want: "plain"},
		{name: "under ten percent left", spent: model.Cents(11000, 0), want: "warning"},
		{name: "fully spent", spent: model.Cents(12000, 0), want: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fleet := fleets.NewBuilder(t).
				WithFixture(fleets.FixtureSkipper).
				WithExpense(fleets.BoatSkipper, tt.spent).
				Build()

			got := BudgetStyle(fleet.Boats()[0])
			switch tt.want {
			case "warning":
				assert.Equal(t, WarningStyle.GetForeground(), got.GetForeground())
			case "error":
				assert.Equal(t, ErrorStyle.GetForeground(), got.GetForeground())
			default:
				assert.NotEqual(t, WarningStyle.GetForeground(), got.GetForeground())
				assert.NotEqual(t, ErrorStyle.GetForeground(), got.GetForeground())
			}
		})
	}
}

func TestFleetSummary(t *testing.T) {
	fleet := fleets.NewBuilder(t).
		WithFixture(fleets.FixtureSkipper).
		WithExpense(fleets.BoatSkipper, model.Cents(5000, 0)).
		Build()

	assert.Equal(t, "1 boat, $7000.00 left to spend", FleetSummary(fleet))
	assert.Equal(t, "0 boats, $0.00 left to spend", FleetSummary(model.NewFleet()))
}

func TestRenderFleetReport(t *testing.T) {
	fleet := fleets.NewBuilder(t).WithFixture(fleets.FixtureHarbor).Build()

	out := squash(RenderFleetReport(fleet))
	assert.Contains(t, out, "Fleet Report")
	assert.Contains(t, out, "Skipper")
	assert.Contains(t, out, "Sea Breeze")
	assert.Contains(t, out, "3 boats, $61500.50 left to spend")
}
