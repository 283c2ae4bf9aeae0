package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/Veraticus/fleet/internal/model"
	"github.com/Veraticus/fleet/internal/testutil/fleets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testFleet(t *testing.T) *model.Fleet {
	t.Helper()
	return fleets.NewBuilder(t).
		WithNamed(fleets.BoatSkipper, fleets.BoatMoonGlow).
		WithExpense(fleets.BoatSkipper, model.Cents(5000, 0)).
		Build()
}

func readRows(t *testing.T, f *excelize.File) [][]string {
	t.Helper()
	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return rows
}

func TestSaveXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.xlsx")
	require.NoError(t, SaveXLSX(path, testFleet(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows := readRows(t, f)
	require.Len(t, rows, 4)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, []string{"POWER", "Skipper", "2020", "Mako", "20", "12000", "5000", "7000"}, rows[1])
	assert.Equal(t, []string{"SAILING", "Moon Glow", "1985", "Catalina 27", "27", "8500.5", "0", "8500.5"}, rows[2])

	total := rows[3]
	assert.Equal(t, "Total", total[0])
	assert.Equal(t, []string{"20500.5", "5000", "15500.5"}, total[5:])
}

func TestWriteXLSX_EmptyFleet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, model.NewFleet()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows := readRows(t, f)
	require.Len(t, rows, 2)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, "Total", rows[1][0])
}

func TestSaveXLSX_BadPath(t *testing.T) {
	err := SaveXLSX(filepath.Join(t.TempDir(), "missing", "dir", "fleet.xlsx"), model.NewFleet())
	assert.Error(t, err)
}
