package requirements

import (
	"sort"
	"strings"

	"github.com/vsinha/shortfall/pkg/domain/entities"
	"github.com/vsinha/shortfall/pkg/domain/services"
)

type groupKey struct {
	taskKey    string
	partNumber entities.PartNumber
}

// Aggregator consolidates candidate rows into one requirement per (task key, part)
type Aggregator struct {
	normalizer *services.KeyNormalizer
}

// NewAggregator creates an aggregator that groups on keys produced by normalizer
func NewAggregator(normalizer *services.KeyNormalizer) *Aggregator {
	return &Aggregator{normalizer: normalizer}
}

// Aggregate groups candidates by (normalized task key, part number) in
// first-seen order. On hand, open orders and in transit are summed; the
// required quantity is the maximum so a requirement repeated across rows is
// not counted twice.
func (a *Aggregator) Aggregate(candidates []entities.StockRecord) []entities.MaterialRequirement {
	groups := make(map[groupKey]int)
	result := make([]entities.MaterialRequirement, 0)
	bins := make([]map[string]bool, 0)
	requisitions := make([]map[string]bool, 0)

	for _, record := range candidates {
		taskKey := a.normalizer.NormalizeCode(record.TaskCode)
		if taskKey == "" {
			continue
		}

		key := groupKey{taskKey: taskKey, partNumber: record.PartNumber}
		idx, exists := groups[key]
		if !exists {
			idx = len(result)
			groups[key] = idx
			result = append(result, entities.MaterialRequirement{
				TaskKey:     taskKey,
				TaskCode:    record.TaskCode,
				PartNumber:  record.PartNumber,
				Description: record.Description,
			})
			bins = append(bins, make(map[string]bool))
			requisitions = append(requisitions, make(map[string]bool))
		}

		req := &result[idx]
		req.SourceRows++
		req.QuantityOnHand = req.QuantityOnHand.Plus(record.QuantityOnHand.NonNegative())
		req.OpenOrderQuantity = req.OpenOrderQuantity.Plus(record.OpenOrderQuantity.NonNegative())
		req.InTransitQuantity = req.InTransitQuantity.Plus(record.InTransitQuantity.NonNegative())
		if required := record.RequiredQuantity.NonNegative(); required > req.RequiredQuantity {
			req.RequiredQuantity = required
		}
		if bin := strings.TrimSpace(record.BinLocation); bin != "" {
			bins[idx][bin] = true
		}
		if note := strings.TrimSpace(record.RequisitionNote); note != "" {
			requisitions[idx][note] = true
		}
	}

	for i := range result {
		req := &result[i]
		req.BinLocations = sortedKeys(bins[i])
		req.Requisitions = sortedKeys(requisitions[i])
		req.Shortage = entities.ComputeShortage(req.RequiredQuantity, req.QuantityOnHand)
		req.Status = entities.StatusFor(req.Shortage)
		req.LogisticsAlert = entities.AlertFor(req.Shortage, req.InTransitQuantity)
	}

	return result
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
