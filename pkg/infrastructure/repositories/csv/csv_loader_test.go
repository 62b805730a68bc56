package csv

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vsinha/shortfall/pkg/domain/entities"
	"github.com/vsinha/shortfall/pkg/infrastructure/config"
)

func newTestLoader() *Loader {
	return NewLoader(config.Default().Columns)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadStock_OriginalHeaders(t *testing.T) {
	path := writeFile(t, "stock.csv", "Mne_Dash8,m_e,description,QOH,required_part_quantity,bin\n"+
		"27-05,PN1,Seal,10,15,A1\n"+
		" 32-10 ,PN2,Bolt,3.9,abc,\n"+
		",,,,,\n"+
		"nan,PN3,Loose,-4,2,B2\n")

	table, err := newTestLoader().LoadStock(path)
	require.NoError(t, err)
	require.Len(t, table.Records, 3)

	first := table.Records[0]
	assert.Equal(t, entities.TaskCode("27-05"), first.TaskCode)
	assert.Equal(t, entities.PartNumber("PN1"), first.PartNumber)
	assert.Equal(t, "Seal", first.Description)
	assert.Equal(t, entities.Quantity(10), first.QuantityOnHand)
	assert.Equal(t, entities.Quantity(15), first.RequiredQuantity)
	assert.Equal(t, "A1", first.BinLocation)

	second := table.Records[1]
	assert.Equal(t, entities.TaskCode(" 32-10 "), second.TaskCode, "task codes are kept raw for the normalizer")
	assert.Equal(t, entities.Quantity(3), second.QuantityOnHand, "fractions truncate")
	assert.Equal(t, entities.Quantity(0), second.RequiredQuantity, "unparsable becomes 0")

	assert.Equal(t, entities.Quantity(0), table.Records[2].QuantityOnHand, "negatives clamp to 0")
	assert.Equal(t, 1, table.DefaultedCells)

	assert.True(t, table.Columns.Has(ColTaskCode, ColPartNumber, ColQuantityOnHand, ColRequiredQuantity, ColBinLocation))
	assert.False(t, table.Columns.Has(ColInTransitQuantity))
	assert.ErrorIs(t, table.Columns.Require(ColInTransitQuantity, ColOpenOrderQuantity), ErrInsufficientColumns)
	assert.NoError(t, table.Columns.Require(ColTaskCode))
}

func TestLoadStock_SemicolonAccentedHeadersAndBOM(t *testing.T) {
	body := "\xEF\xBB\xBFMNE_NUMBER;Part Number;Descripción;Stock;Required;En Tránsito;Ubicación\n" +
		"27-05;PN1;Junta;1;4;3;C3\n" +
		"27-05;PN2;Perno;2;2;0;C4\n"
	table, err := newTestLoader().ParseStock([]byte(body))
	require.NoError(t, err)
	require.Len(t, table.Records, 2)

	rec := table.Records[0]
	assert.Equal(t, entities.TaskCode("27-05"), rec.TaskCode)
	assert.Equal(t, "Junta", rec.Description)
	assert.Equal(t, entities.Quantity(3), rec.InTransitQuantity)
	assert.Equal(t, "C3", rec.BinLocation)
}

func TestParseStock_NoRecognizedColumns(t *testing.T) {
	_, err := newTestLoader().ParseStock([]byte("foo,bar\n1,2\n"))
	assert.True(t, errors.Is(err, ErrNoRecognizedColumns))
}

func TestParseStock_HeaderOnly(t *testing.T) {
	table, err := newTestLoader().ParseStock([]byte("Mne_Dash8,m_e\n"))
	require.NoError(t, err)
	assert.Empty(t, table.Records)
}

func TestLoadStock_MissingFile(t *testing.T) {
	_, err := newTestLoader().LoadStock(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestLoadTasks(t *testing.T) {
	path := writeFile(t, "tasks.csv", "mne_number,mne_description,package_description,scheduled_date\n"+
		"27-05,Replace seal,A-check,2024-01-10\n"+
		"32-10,Inspect gear,A-check,01/11/2024\n"+
		"40-00,Lube,C-check,not a date\n"+
		"50-00,Clean,C-check,\n")

	table, err := newTestLoader().LoadTasks(path)
	require.NoError(t, err)
	require.Len(t, table.Records, 4)

	assert.Equal(t, entities.Date{Year: 2024, Month: time.January, Day: 10}, table.Records[0].ScheduledDate)
	assert.Equal(t, "Replace seal", table.Records[0].TaskDescription)
	assert.Equal(t, "A-check", table.Records[0].PackageDescription)
	assert.Equal(t, entities.Date{Year: 2024, Month: time.January, Day: 11}, table.Records[1].ScheduledDate)
	assert.True(t, table.Records[2].ScheduledDate.IsZero())
	assert.True(t, table.Records[3].ScheduledDate.IsZero())
	assert.Equal(t, 2, table.UndatedRows)
	assert.True(t, table.Columns.Has(ColTaskCode, ColScheduledDate))
}

func TestLoadStock_Workbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Mne_Dash8", "m_e", "QOH", "required_part_quantity"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"27-05", "PN1", 10, 15}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"27-05", "PN2", 2.5, 1}))

	path := filepath.Join(t.TempDir(), "stock.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := newTestLoader().LoadStock(path)
	require.NoError(t, err)
	require.Len(t, table.Records, 2)
	assert.Equal(t, entities.Quantity(10), table.Records[0].QuantityOnHand)
	assert.Equal(t, entities.Quantity(15), table.Records[0].RequiredQuantity)
	assert.Equal(t, entities.Quantity(2), table.Records[1].QuantityOnHand)
}

func TestLoadTasks_WorkbookSerialDates(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"mne_number", "scheduled_date"}))
	// 45301 is 2024-01-10 in the 1900 date system
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"27-05", 45301}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"32-10", "2024-01-11"}))

	path := filepath.Join(t.TempDir(), "tasks.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := NewLoader(config.Default().Columns, WithSheet(sheet)).LoadTasks(path)
	require.NoError(t, err)
	require.Len(t, table.Records, 2)
	assert.Equal(t, entities.Date{Year: 2024, Month: time.January, Day: 10}, table.Records[0].ScheduledDate)
	assert.Equal(t, entities.Date{Year: 2024, Month: time.January, Day: 11}, table.Records[1].ScheduledDate)
}

func TestParseStock_UnsupportedBinary(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 0x49, 0x48, 0x44, 0x52}
	_, err := newTestLoader().ParseStock(png)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		input    string
		expected entities.Quantity
		ok       bool
	}{
		{"", 0, true},
		{"  ", 0, true},
		{"7", 7, true},
		{" 7 ", 7, true},
		{"7.9", 7, true},
		{"3.0", 3, true},
		{"-2", 0, true},
		{"1e3", 1000, true},
		{"NaN", 0, false},
		{"abc", 0, false},
		{"1,250", 0, false},
		{"9223372036854775807", math.MaxInt64, true},
		{"9223372036854775807.5", math.MaxInt64, true},
		{"9223372036854775808", 0, false},
		{"99999999999999999999", 0, false},
		{"18446744073709551617", 0, false},
		{"1e30", 0, false},
		{"-18446744073709551615", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q, ok := parseQuantity(tt.input)
			assert.Equal(t, tt.expected, q)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestFoldHeader(t *testing.T) {
	assert.Equal(t, "descripcion", foldHeader("Descripción"))
	assert.Equal(t, "mnedash8", foldHeader(" Mne_Dash8 "))
	assert.Equal(t, "requiredpartquantity", foldHeader("required part quantity"))
	assert.Equal(t, "", foldHeader("__"))
}
