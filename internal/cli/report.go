package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/fleet/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// lowBudgetPercent marks a boat whose remaining budget is below this share
// of its purchase price.
const lowBudgetPercent = 10

// BudgetStyle picks the style for a boat's line by how much is left to spend.
func BudgetStyle(b *model.Boat) lipgloss.Style {
	remaining := b.RemainingBudget()
	switch {
	case b.PurchasePrice > 0 && remaining == 0:
		return ErrorStyle
	case remaining*100 < b.PurchasePrice*lowBudgetPercent:
		return WarningStyle
	default:
		return lipgloss.NewStyle()
	}
}

// FleetSummary describes the fleet in one line.
func FleetSummary(fleet *model.Fleet) string {
	boats := "boats"
	if fleet.Len() == 1 {
		boats = "boat"
	}
	return fmt.Sprintf("%d %s, %s left to spend", fleet.Len(), boats, fleet.TotalPaid()-fleet.TotalSpent())
}

// RenderFleetReport draws the fleet in a titled box. Boats close to their
// spending ceiling are highlighted; the summary line follows the box.
func RenderFleetReport(fleet *model.Fleet) string {
	lines := strings.Split(strings.TrimRight(fleet.Render(), "\n"), "\n")
	boats := fleet.Boats()
	for i, b := range boats {
		lines[i] = BudgetStyle(b).Render(lines[i])
	}
	if len(lines) > len(boats) {
		lines[len(lines)-1] = TableHeaderStyle.Render(lines[len(lines)-1])
	}

	box := RenderBox(BoatIcon+" Fleet Report", strings.Join(lines, "\n"))
	return box + "\n" + SubtleStyle.Render(FleetSummary(fleet))
}
