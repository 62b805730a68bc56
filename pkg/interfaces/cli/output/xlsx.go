package output

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/shortfall/pkg/application/dto"
	"github.com/vsinha/shortfall/pkg/domain/entities"
)

// Sheet names of the spreadsheet export
const (
	SheetAll        = "All"
	SheetNeedsOrder = "NEEDS_ORDER"
	SheetDates      = "Dates"
)

// generateXLSXOutput writes a workbook with every row on one sheet and the
// rows that need an order on another
func generateXLSXOutput(report dto.Report, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for xlsx format")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetAll); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetNeedsOrder); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return err
	}

	if err := writeSheet(f, SheetAll, report.Rows(), styles, config); err != nil {
		return err
	}
	if err := writeSheet(f, SheetNeedsOrder, report.NeedsOrderRows(), styles, config); err != nil {
		return err
	}

	filename := filepath.Join(config.OutputDir, report.ReportTitle()+".xlsx")
	return saveWorkbook(f, filename, config)
}

type sheetStyles struct {
	header     int
	needsOrder int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9D9D9"}, Pattern: 1},
	})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("failed to create header style: %w", err)
	}

	needsOrder, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#9C0006"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
	})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("failed to create highlight style: %w", err)
	}

	return sheetStyles{header: header, needsOrder: needsOrder}, nil
}

// writeSheet writes the header and rows. NEEDS_ORDER rows are highlighted
// only while the sheet stays within the style row limit.
func writeSheet(f *excelize.File, sheet string, rows []dto.ReportRow, styles sheetStyles, config Config) error {
	header := make([]interface{}, len(dto.ReportColumns))
	for i, col := range dto.ReportColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	styled := config.styled(len(rows))
	if styled {
		if err := f.SetRowStyle(sheet, 1, 1, styles.header); err != nil {
			return fmt.Errorf("failed to style %s header: %w", sheet, err)
		}
	}

	for i, row := range rows {
		rowNum := i + 2
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		cells := row.Cells()
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, rowNum, err)
		}
		if styled && row.Status == entities.StatusNeedsOrder {
			if err := f.SetRowStyle(sheet, rowNum, rowNum, styles.needsOrder); err != nil {
				return fmt.Errorf("failed to style %s row %d: %w", sheet, rowNum, err)
			}
		}
	}
	return nil
}

func generateDatesXLSX(dates []entities.Date, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for xlsx format")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetDates); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetCellValue(SheetDates, "A1", "scheduled_date"); err != nil {
		return err
	}
	for i, d := range dates {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetDates, cell, d.String()); err != nil {
			return fmt.Errorf("failed to write date row %d: %w", i+2, err)
		}
	}

	return saveWorkbook(f, filepath.Join(config.OutputDir, "dates.xlsx"), config)
}

func saveWorkbook(f *excelize.File, filename string, config Config) error {
	if err := ensureDir(config.OutputDir); err != nil {
		return err
	}
	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to write workbook %s: %w", filename, err)
	}
	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 Workbook saved to: %s\n", filename)
	}
	return nil
}
