package csv

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/vsinha/shortfall/pkg/domain/entities"
	"github.com/vsinha/shortfall/pkg/infrastructure/config"
)

// Logical stock columns
const (
	ColTaskCode          = "task_code"
	ColPartNumber        = "part_number"
	ColDescription       = "description"
	ColQuantityOnHand    = "quantity_on_hand"
	ColRequiredQuantity  = "required_quantity"
	ColOpenOrderQuantity = "open_order_quantity"
	ColInTransitQuantity = "in_transit_quantity"
	ColRequisitionNote   = "requisition_note"
	ColBinLocation       = "bin_location"
)

// Logical task columns
const (
	ColTaskDescription    = "task_description"
	ColPackageDescription = "package_description"
	ColScheduledDate      = "scheduled_date"
)

var (
	// ErrUnsupportedFormat is returned for binary inputs that are neither a workbook nor text
	ErrUnsupportedFormat = errors.New("unsupported input format")
	// ErrNoRecognizedColumns is returned when no header matches any known alias
	ErrNoRecognizedColumns = errors.New("no recognized columns")
	// ErrInsufficientColumns is returned by features that need a column the table lacks
	ErrInsufficientColumns = errors.New("insufficient columns")
)

// Columns records which logical columns a loaded table actually carries
type Columns map[string]bool

// Has reports whether every named column is present
func (c Columns) Has(names ...string) bool {
	for _, name := range names {
		if !c[name] {
			return false
		}
	}
	return true
}

// Require returns ErrInsufficientColumns naming the absent columns
func (c Columns) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if !c[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInsufficientColumns, strings.Join(missing, ", "))
	}
	return nil
}

// StockTable is a parsed stock ledger
type StockTable struct {
	Records []*entities.StockRecord
	Columns Columns
	// DefaultedCells counts non-empty numeric cells that could not be parsed and became 0
	DefaultedCells int
}

// TaskTable is a parsed task schedule
type TaskTable struct {
	Records []*entities.TaskRecord
	Columns Columns
	// UndatedRows counts tasks whose date was missing or unparsable
	UndatedRows int
}

// Loader parses the stock ledger and task schedule from CSV or XLSX files
type Loader struct {
	columns config.ColumnsConfig
	sheet   string
	logger  *zap.Logger
}

// Option configures a Loader
type Option func(*Loader)

// WithLogger routes data-quality diagnostics to logger
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithSheet selects the worksheet read from workbook inputs
func WithSheet(sheet string) Option {
	return func(l *Loader) {
		l.sheet = sheet
	}
}

// NewLoader creates a loader that recognizes the header aliases in columns
func NewLoader(columns config.ColumnsConfig, opts ...Option) *Loader {
	l := &Loader{
		columns: columns,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadStock loads the stock ledger from a file
func (l *Loader) LoadStock(filename string) (*StockTable, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open stock file %s: %w", filename, err)
	}
	table, err := l.ParseStock(data)
	if err != nil {
		return nil, fmt.Errorf("stock file %s: %w", filename, err)
	}
	return table, nil
}

// LoadTasks loads the task schedule from a file
func (l *Loader) LoadTasks(filename string) (*TaskTable, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks file %s: %w", filename, err)
	}
	table, err := l.ParseTasks(data)
	if err != nil {
		return nil, fmt.Errorf("tasks file %s: %w", filename, err)
	}
	return table, nil
}

// ParseStock parses a stock ledger held in memory
func (l *Loader) ParseStock(data []byte) (*StockTable, error) {
	raw, err := l.readTable(data)
	if err != nil {
		return nil, err
	}

	aliases := map[string][]string{
		ColTaskCode:          l.columns.Stock.TaskCode,
		ColPartNumber:        l.columns.Stock.PartNumber,
		ColDescription:       l.columns.Stock.Description,
		ColQuantityOnHand:    l.columns.Stock.QuantityOnHand,
		ColRequiredQuantity:  l.columns.Stock.RequiredQuantity,
		ColOpenOrderQuantity: l.columns.Stock.OpenOrderQuantity,
		ColInTransitQuantity: l.columns.Stock.InTransitQuantity,
		ColRequisitionNote:   l.columns.Stock.RequisitionNote,
		ColBinLocation:       l.columns.Stock.BinLocation,
	}
	index, err := l.mapHeader(raw.header, aliases, "stock")
	if err != nil {
		return nil, err
	}

	table := &StockTable{
		Records: make([]*entities.StockRecord, 0, len(raw.rows)),
		Columns: index.columns(),
	}

	for i, row := range raw.rows {
		if isBlankRow(row) {
			continue
		}
		quantity := func(col string) entities.Quantity {
			cell := index.cell(row, col)
			q, ok := parseQuantity(cell)
			if !ok {
				table.DefaultedCells++
				l.logger.Debug("defaulted numeric cell",
					zap.Int("row", i+2),
					zap.String("column", col),
					zap.String("value", cell))
			}
			return q
		}

		table.Records = append(table.Records, &entities.StockRecord{
			TaskCode:          entities.TaskCode(index.cell(row, ColTaskCode)),
			PartNumber:        entities.PartNumber(strings.TrimSpace(index.cell(row, ColPartNumber))),
			Description:       strings.TrimSpace(index.cell(row, ColDescription)),
			QuantityOnHand:    quantity(ColQuantityOnHand),
			RequiredQuantity:  quantity(ColRequiredQuantity),
			OpenOrderQuantity: quantity(ColOpenOrderQuantity),
			InTransitQuantity: quantity(ColInTransitQuantity),
			RequisitionNote:   strings.TrimSpace(index.cell(row, ColRequisitionNote)),
			BinLocation:       strings.TrimSpace(index.cell(row, ColBinLocation)),
		})
	}

	if table.DefaultedCells > 0 {
		l.logger.Warn("unparsable quantities defaulted to 0", zap.Int("cells", table.DefaultedCells))
	}
	return table, nil
}

// ParseTasks parses a task schedule held in memory
func (l *Loader) ParseTasks(data []byte) (*TaskTable, error) {
	raw, err := l.readTable(data)
	if err != nil {
		return nil, err
	}

	aliases := map[string][]string{
		ColTaskCode:           l.columns.Tasks.TaskCode,
		ColTaskDescription:    l.columns.Tasks.TaskDescription,
		ColPackageDescription: l.columns.Tasks.PackageDescription,
		ColScheduledDate:      l.columns.Tasks.ScheduledDate,
	}
	index, err := l.mapHeader(raw.header, aliases, "tasks")
	if err != nil {
		return nil, err
	}

	table := &TaskTable{
		Records: make([]*entities.TaskRecord, 0, len(raw.rows)),
		Columns: index.columns(),
	}

	for i, row := range raw.rows {
		if isBlankRow(row) {
			continue
		}

		cell := index.cell(row, ColScheduledDate)
		date, err := raw.parseDate(cell)
		if err != nil {
			table.UndatedRows++
			l.logger.Debug("missing schedule date",
				zap.Int("row", i+2),
				zap.String("value", cell),
				zap.Error(err))
		}

		table.Records = append(table.Records, &entities.TaskRecord{
			TaskCode:           entities.TaskCode(index.cell(row, ColTaskCode)),
			TaskDescription:    strings.TrimSpace(index.cell(row, ColTaskDescription)),
			PackageDescription: strings.TrimSpace(index.cell(row, ColPackageDescription)),
			ScheduledDate:      date,
		})
	}

	if table.UndatedRows > 0 {
		l.logger.Warn("tasks without a usable date never match a selected date", zap.Int("rows", table.UndatedRows))
	}
	return table, nil
}

// columnIndex maps logical column names to positions in a row
type columnIndex map[string]int

func (ci columnIndex) cell(row []string, col string) string {
	pos, ok := ci[col]
	if !ok || pos >= len(row) {
		return ""
	}
	return row[pos]
}

func (ci columnIndex) columns() Columns {
	cols := make(Columns, len(ci))
	for name := range ci {
		cols[name] = true
	}
	return cols
}

// mapHeader resolves each logical column to the first header matching one of its aliases
func (l *Loader) mapHeader(header []string, aliases map[string][]string, table string) (columnIndex, error) {
	folded := make([]string, len(header))
	for i, h := range header {
		folded[i] = foldHeader(h)
	}

	index := make(columnIndex)
	var missing []string
	for col, names := range aliases {
		pos := -1
		for _, alias := range names {
			want := foldHeader(alias)
			for i, h := range folded {
				if h != "" && h == want {
					pos = i
					break
				}
			}
			if pos >= 0 {
				break
			}
		}
		if pos < 0 {
			missing = append(missing, col)
			continue
		}
		index[col] = pos
	}

	sort.Strings(missing)

	if len(index) == 0 {
		return nil, fmt.Errorf("%s header %v: %w", table, header, ErrNoRecognizedColumns)
	}
	if len(missing) > 0 {
		l.logger.Warn("columns absent, dependent fields default",
			zap.String("table", table),
			zap.Strings("missing", missing))
	}
	return index, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// utf8BOM is prepended by spreadsheet tools exporting UTF-8 CSV
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func trimBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}
