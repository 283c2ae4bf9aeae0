// Package export writes the fleet to spreadsheet files.
package export

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/fleet/internal/common"
	"github.com/Veraticus/fleet/internal/model"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the fleet table.
const SheetName = "Fleet"

// Headers are the column titles of the fleet table.
var Headers = []string{
	"Category",
	"Name",
	"Year",
	"Make & Model",
	"Length (ft)",
	"Purchase Price",
	"Expenses",
	"Remaining",
}

// WriteXLSX writes the fleet as a workbook: a header row, one row per boat
// in fleet order and a totals row. Money columns hold dollar amounts with a
// currency number format.
func WriteXLSX(w io.Writer, fleet *model.Fleet) error {
	f, err := buildWorkbook(fleet)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrExportFailed, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Debug("failed to close workbook", "error", closeErr)
		}
	}()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: %w", common.ErrExportFailed, err)
	}
	return nil
}

// SaveXLSX writes the workbook to path.
func SaveXLSX(path string, fleet *model.Fleet) error {
	f, err := buildWorkbook(fleet)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrExportFailed, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Debug("failed to close workbook", "error", closeErr)
		}
	}()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: %w", common.ErrExportFailed, err)
	}
	slog.Info("Exported fleet workbook", "path", path, "boats", fleet.Len())
	return nil
}

func buildWorkbook(fleet *model.Fleet) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, err
	}

	for i, h := range Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, b := range fleet.Boats() {
		values := []any{
			string(b.Category),
			b.Name,
			b.Year,
			b.MakeModel,
			b.Length,
			b.PurchasePrice.Dollars(),
			b.Expenses.Dollars(),
			b.RemainingBudget().Dollars(),
		}
		if err := setRow(f, row, values); err != nil {
			return nil, err
		}
		row++
	}

	paid := fleet.TotalPaid()
	spent := fleet.TotalSpent()
	if err := setRow(f, row, []any{"Total", "", "", "", "", paid.Dollars(), spent.Dollars(), (paid - spent).Dollars()}); err != nil {
		return nil, err
	}

	if err := applyStyles(f, row); err != nil {
		return nil, err
	}
	return f, nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(SheetName, cell, &values)
}

func applyStyles(f *excelize.File, lastRow int) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	currencyFormat := "$#,##0.00"
	currency, err := f.NewStyle(&excelize.Style{CustomNumFmt: &currencyFormat})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(SheetName, "A1", "H1", bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, fmt.Sprintf("A%d", lastRow), fmt.Sprintf("E%d", lastRow), bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "F2", fmt.Sprintf("H%d", lastRow), currency); err != nil {
		return err
	}

	widths := map[string]float64{"A": 10, "B": 22, "C": 6, "D": 18, "E": 11, "F": 16, "G": 14, "H": 14}
	for col, width := range widths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return err
		}
	}
	return nil
}
