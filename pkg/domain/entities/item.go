package entities

import "math"

// PartNumber represents a stock-keeping unit identifier as it appears in the ledger
type PartNumber string

// TaskCode represents the raw task-linkage code shared by the schedule and the ledger
type TaskCode string

// Quantity represents a non-negative integer count of discrete units
type Quantity int64

// NonNegative clamps negative quantities to zero
func (q Quantity) NonNegative() Quantity {
	if q < 0 {
		return 0
	}
	return q
}

// Plus adds two non-negative quantities, saturating at the largest Quantity
func (q Quantity) Plus(other Quantity) Quantity {
	if other > 0 && q > math.MaxInt64-other {
		return math.MaxInt64
	}
	return q + other
}
