package csv

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/h2non/filetype"
	"github.com/jfyne/csvd"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/vsinha/shortfall/pkg/domain/entities"
)

// rawTable is a header plus untyped rows, whatever the source format
type rawTable struct {
	header       []string
	rows         [][]string
	fromWorkbook bool
}

// readTable detects the input format and returns its cells
func (l *Loader) readTable(data []byte) (*rawTable, error) {
	kind, _ := filetype.Match(data)
	switch {
	case kind.Extension == "xlsx" || kind.Extension == "zip":
		return l.readWorkbook(data)
	case kind != filetype.Unknown:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind.MIME.Value)
	default:
		return readDelimited(trimBOM(data))
	}
}

// readDelimited reads CSV text, sniffing the delimiter from the first lines
func readDelimited(data []byte) (*rawTable, error) {
	reader := csvd.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("CSV must have a header row")
	}

	return &rawTable{header: records[0], rows: records[1:]}, nil
}

// readWorkbook reads the configured sheet, or the first one, of an XLSX workbook
func (l *Loader) readWorkbook(data []byte) (*rawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := l.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("sheet %s must have a header row", sheet)
	}

	return &rawTable{header: rows[0], rows: rows[1:], fromWorkbook: true}, nil
}

// parseDate parses a schedule cell. Workbook cells may hold a raw serial day number.
func (t *rawTable) parseDate(cell string) (entities.Date, error) {
	cell = strings.TrimSpace(cell)
	if t.fromWorkbook {
		if serial, err := strconv.ParseFloat(cell, 64); err == nil && serial > 0 {
			tm, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				return entities.Date{}, fmt.Errorf("invalid serial date %s: %w", cell, err)
			}
			return entities.NewDate(tm), nil
		}
	}
	return entities.ParseDate(cell)
}

var maxQuantity = decimal.NewFromInt(math.MaxInt64)

// parseQuantity coerces a cell to a non-negative whole quantity. Fractions are
// truncated and negatives clamp to zero. Empty cells are 0 without complaint;
// ok is false for non-empty cells that are not numbers or do not fit a Quantity.
func parseQuantity(cell string) (entities.Quantity, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, true
	}

	d, err := decimal.NewFromString(cell)
	if err != nil {
		return 0, false
	}
	if d = d.Truncate(0); d.GreaterThan(maxQuantity) {
		return 0, false
	}
	if d.IsNegative() {
		return 0, true
	}
	return entities.Quantity(d.IntPart()), true
}

// foldHeader lowercases a header, strips accents and drops everything but letters and digits
func foldHeader(h string) string {
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripAccents, h)
	if err != nil {
		folded = h
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
