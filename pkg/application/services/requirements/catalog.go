package requirements

import (
	"sort"
	"strings"

	"github.com/vsinha/shortfall/pkg/application/dto"
	"github.com/vsinha/shortfall/pkg/domain/entities"
)

// FilterCatalog returns one row per stock record matching every non-empty
// pattern in filter. Patterns are case-insensitive substrings of the raw fields.
func FilterCatalog(stock []entities.StockRecord, filter dto.CatalogFilter) []dto.CatalogRow {
	taskPattern := pattern(filter.TaskCode)
	descPattern := pattern(filter.Description)
	partPattern := pattern(filter.PartNumber)

	rows := make([]dto.CatalogRow, 0)
	for _, record := range stock {
		if !matches(string(record.TaskCode), taskPattern) ||
			!matches(record.Description, descPattern) ||
			!matches(string(record.PartNumber), partPattern) {
			continue
		}

		shortage := record.Shortage()
		rows = append(rows, dto.CatalogRow{
			StockRecord:    record,
			Shortage:       shortage,
			Status:         entities.StatusFor(shortage),
			LogisticsAlert: entities.AlertFor(shortage, record.InTransitQuantity),
		})
	}
	return rows
}

// TaskCodes lists the distinct raw task codes containing pattern, sorted.
// Blank codes are skipped.
func TaskCodes(stock []entities.StockRecord, taskPattern string) []entities.TaskCode {
	p := pattern(taskPattern)
	set := make(map[entities.TaskCode]bool)
	for _, record := range stock {
		if strings.TrimSpace(string(record.TaskCode)) == "" {
			continue
		}
		if matches(string(record.TaskCode), p) {
			set[record.TaskCode] = true
		}
	}

	codes := make([]entities.TaskCode, 0, len(set))
	for code := range set {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

func pattern(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

func matches(field, lowered string) bool {
	if lowered == "" {
		return true
	}
	return strings.Contains(strings.ToLower(field), lowered)
}
