package sheets

import (
	"fmt"
	"time"

	"github.com/Veraticus/fleet/internal/model"
	"google.golang.org/api/sheets/v4"
)

// reportHeader names the columns of the boat table.
var reportHeader = []any{
	"Category",
	"Name",
	"Year",
	"Make & Model",
	"Length (ft)",
	"Purchase Price",
	"Expenses",
	"Remaining",
}

// Report layout.
const (
	headerRows     = 3 // title, blank, column header
	firstMoneyCol  = 5
	remainingCol   = 7
	lowBudgetRatio = 0.1
)

// prepareReportData lays the fleet out as rows: a title, the column
// header, one row per boat in fleet order and a totals row.
func prepareReportData(fleet *model.Fleet, generatedAt time.Time) [][]any {
	boats := fleet.Boats()
	values := make([][]any, 0, headerRows+len(boats)+1)

	values = append(values,
		[]any{"Fleet Report", generatedAt.Format("Jan 2, 2006 15:04")},
		[]any{},
		reportHeader,
	)

	for _, b := range boats {
		values = append(values, []any{
			string(b.Category),
			b.Name,
			b.Year,
			b.MakeModel,
			b.Length,
			b.PurchasePrice.Dollars(),
			b.Expenses.Dollars(),
			b.RemainingBudget().Dollars(),
		})
	}

	paid := fleet.TotalPaid()
	spent := fleet.TotalSpent()
	values = append(values, []any{
		"Total", "", "", "", "",
		paid.Dollars(),
		spent.Dollars(),
		(paid - spent).Dollars(),
	})

	return values
}

// formatRequests styles a report of totalRows rows on the given tab.
func formatRequests(tab int64, totalRows int) []*sheets.Request {
	rows := int64(totalRows)
	cols := int64(len(reportHeader))
	grid := func(startRow, endRow, startCol, endCol int64) *sheets.GridRange {
		return &sheets.GridRange{
			SheetId:          tab,
			StartRowIndex:    startRow,
			EndRowIndex:      endRow,
			StartColumnIndex: startCol,
			EndColumnIndex:   endCol,
		}
	}
	repeat := func(r *sheets.GridRange, format *sheets.CellFormat, fields string) *sheets.Request {
		return &sheets.Request{RepeatCell: &sheets.RepeatCellRequest{
			Range:  r,
			Cell:   &sheets.CellData{UserEnteredFormat: format},
			Fields: fields,
		}}
	}
	bold := &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true}}

	requests := []*sheets.Request{
		repeat(grid(0, 1, 0, 2), &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true, FontSize: 16}}, "userEnteredFormat.textFormat"),
		repeat(grid(headerRows-1, headerRows, 0, cols), bold, "userEnteredFormat.textFormat"),
		repeat(grid(rows-1, rows, 0, cols), bold, "userEnteredFormat.textFormat"),
		repeat(grid(headerRows, rows, firstMoneyCol, cols), &sheets.CellFormat{
			NumberFormat: &sheets.NumberFormat{Type: "CURRENCY", Pattern: "$#,##0.00"},
		}, "userEnteredFormat.numberFormat"),
	}

	// Boats with under a tenth of their price left to spend.
	if boatRows := rows - headerRows - 1; boatRows > 0 {
		requests = append(requests, &sheets.Request{AddConditionalFormatRule: &sheets.AddConditionalFormatRuleRequest{
			Index: 0,
			Rule: &sheets.ConditionalFormatRule{
				Ranges: []*sheets.GridRange{grid(headerRows, rows-1, remainingCol, remainingCol+1)},
				BooleanRule: &sheets.BooleanRule{
					Condition: &sheets.BooleanCondition{
						Type: "CUSTOM_FORMULA",
						Values: []*sheets.ConditionValue{{
							UserEnteredValue: lowBudgetFormula(headerRows + 1),
						}},
					},
					Format: &sheets.CellFormat{
						BackgroundColor: &sheets.Color{Red: 1, Green: 0.9, Blue: 0.43},
					},
				},
			},
		}})
	}

	requests = append(requests,
		&sheets.Request{AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
			Dimensions: &sheets.DimensionRange{SheetId: tab, Dimension: "COLUMNS", StartIndex: 0, EndIndex: cols},
		}},
		&sheets.Request{UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId:        tab,
				GridProperties: &sheets.GridProperties{FrozenRowCount: headerRows},
			},
			Fields: "gridProperties.frozenRowCount",
		}},
	)
	return requests
}

// lowBudgetFormula compares the Remaining column against the price column
// for the first boat row; Sheets shifts it for the rows below.
func lowBudgetFormula(firstRow int) string {
	return fmt.Sprintf("=$H%d<$F%d*%g", firstRow, firstRow, lowBudgetRatio)
}
