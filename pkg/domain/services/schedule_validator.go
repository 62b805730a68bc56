package services

import (
	"fmt"
	"sort"

	"github.com/vsinha/shortfall/pkg/domain/entities"
)

// StockRowKey identifies exact duplicate ledger rows. Two rows with the same
// key are one physical row exported twice.
type StockRowKey struct {
	TaskKey           string
	PartNumber        entities.PartNumber
	Description       string
	RequiredQuantity  entities.Quantity
	QuantityOnHand    entities.Quantity
	OpenOrderQuantity entities.Quantity
	RequisitionNote   string
	BinLocation       string
}

// RowKey builds the duplicate-detection key of a stock row
func (n *KeyNormalizer) RowKey(r entities.StockRecord) StockRowKey {
	return StockRowKey{
		TaskKey:           n.NormalizeCode(r.TaskCode),
		PartNumber:        r.PartNumber,
		Description:       r.Description,
		RequiredQuantity:  r.RequiredQuantity,
		QuantityOnHand:    r.QuantityOnHand,
		OpenOrderQuantity: r.OpenOrderQuantity,
		RequisitionNote:   r.RequisitionNote,
		BinLocation:       r.BinLocation,
	}
}

// ScheduleValidator cross-checks the schedule against the stock ledger
type ScheduleValidator struct {
	normalizer *KeyNormalizer
}

// NewScheduleValidator creates a validator that joins with the given normalizer
func NewScheduleValidator(normalizer *KeyNormalizer) *ScheduleValidator {
	return &ScheduleValidator{normalizer: normalizer}
}

// ValidationResult contains data-quality findings. None of them stop a report.
type ValidationResult struct {
	UnmatchedTaskKeys []string
	BlankStockKeys    int
	BlankTaskKeys     int
	UndatedTasks      int
	DuplicateRows     int
	Warnings          []string
}

// HasWarnings reports whether anything was found
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Validate inspects both tables. Scheduled keys without any stock row are the
// "tasks scheduled but no matching stock" case.
func (v *ScheduleValidator) Validate(stock []entities.StockRecord, tasks []entities.TaskRecord) *ValidationResult {
	result := &ValidationResult{
		UnmatchedTaskKeys: make([]string, 0),
		Warnings:          make([]string, 0),
	}

	stockKeys := make(map[string]bool, len(stock))
	seenRows := make(map[StockRowKey]bool, len(stock))
	for _, record := range stock {
		key := v.normalizer.NormalizeCode(record.TaskCode)
		if key == "" {
			result.BlankStockKeys++
			continue
		}
		stockKeys[key] = true

		rowKey := v.normalizer.RowKey(record)
		if seenRows[rowKey] {
			result.DuplicateRows++
		} else {
			seenRows[rowKey] = true
		}
	}

	unmatched := make(map[string]bool)
	for _, task := range tasks {
		if task.ScheduledDate.IsZero() {
			result.UndatedTasks++
		}
		key := v.normalizer.NormalizeCode(task.TaskCode)
		if key == "" {
			result.BlankTaskKeys++
			continue
		}
		if !stockKeys[key] {
			unmatched[key] = true
		}
	}
	for key := range unmatched {
		result.UnmatchedTaskKeys = append(result.UnmatchedTaskKeys, key)
	}
	sort.Strings(result.UnmatchedTaskKeys)

	if result.BlankStockKeys > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d stock rows have no task code and are never matched", result.BlankStockKeys))
	}
	if result.BlankTaskKeys > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d scheduled tasks have no task code", result.BlankTaskKeys))
	}
	if result.UndatedTasks > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d scheduled tasks have no valid date", result.UndatedTasks))
	}
	if result.DuplicateRows > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Found %d duplicate stock rows", result.DuplicateRows))
	}
	if len(result.UnmatchedTaskKeys) > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d scheduled task codes have no stock rows: %v", len(result.UnmatchedTaskKeys), result.UnmatchedTaskKeys))
	}

	return result
}
