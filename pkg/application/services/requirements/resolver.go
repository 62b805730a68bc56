package requirements

import (
	"sort"

	"github.com/vsinha/shortfall/pkg/domain/entities"
	"github.com/vsinha/shortfall/pkg/domain/services"
)

// Resolution is the detailed outcome of joining a day's tasks against the ledger
type Resolution struct {
	// TaskKeys are the distinct non-empty normalized keys of the day's tasks, sorted
	TaskKeys []string
	// Candidates are the matching stock rows after exact-duplicate elimination, in ledger order
	Candidates []entities.StockRecord
	// DuplicatesRemoved counts rows dropped as exact duplicates
	DuplicatesRemoved int
	// UnmatchedTaskKeys are task keys that no stock row carries
	UnmatchedTaskKeys []string
}

// Resolver joins tasks scheduled for a date against the stock ledger
type Resolver struct {
	normalizer *services.KeyNormalizer
}

// NewResolver creates a resolver that joins on keys produced by normalizer
func NewResolver(normalizer *services.KeyNormalizer) *Resolver {
	return &Resolver{normalizer: normalizer}
}

// Resolve returns the stock rows whose normalized task code belongs to one of
// tasksForDate. No tasks means no rows, never the whole ledger.
func (r *Resolver) Resolve(stock []entities.StockRecord, tasksForDate []entities.TaskRecord) []entities.StockRecord {
	return r.ResolveDetailed(stock, tasksForDate).Candidates
}

// ResolveDetailed is Resolve plus the bookkeeping the report shows
func (r *Resolver) ResolveDetailed(stock []entities.StockRecord, tasksForDate []entities.TaskRecord) Resolution {
	resolution := Resolution{
		TaskKeys:          r.TaskKeys(tasksForDate),
		Candidates:        []entities.StockRecord{},
		UnmatchedTaskKeys: []string{},
	}
	if len(resolution.TaskKeys) == 0 {
		return resolution
	}

	wanted := make(map[string]bool, len(resolution.TaskKeys))
	for _, key := range resolution.TaskKeys {
		wanted[key] = false
	}

	seen := make(map[services.StockRowKey]bool)
	for _, record := range stock {
		key := r.normalizer.NormalizeCode(record.TaskCode)
		if key == "" {
			continue
		}
		if _, ok := wanted[key]; !ok {
			continue
		}
		wanted[key] = true

		rowKey := r.normalizer.RowKey(record)
		if seen[rowKey] {
			resolution.DuplicatesRemoved++
			continue
		}
		seen[rowKey] = true
		resolution.Candidates = append(resolution.Candidates, record)
	}

	for _, key := range resolution.TaskKeys {
		if !wanted[key] {
			resolution.UnmatchedTaskKeys = append(resolution.UnmatchedTaskKeys, key)
		}
	}

	return resolution
}

// TaskKeys returns the distinct non-empty normalized task keys, sorted
func (r *Resolver) TaskKeys(tasks []entities.TaskRecord) []string {
	set := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		if key := r.normalizer.NormalizeCode(task.TaskCode); key != "" {
			set[key] = true
		}
	}

	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
