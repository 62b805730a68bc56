package entities

import (
	"fmt"
	"strings"
)

// Status flags whether a requirement can be served from stock
type Status int

const (
	StatusOK Status = iota
	StatusNeedsOrder
)

// String method for Status enum
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNeedsOrder:
		return "NEEDS_ORDER"
	default:
		return "Unknown"
	}
}

// MarshalText renders the status by name
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LogisticsAlert combines shortage with in-transit coverage
type LogisticsAlert int

const (
	AlertOK LogisticsAlert = iota
	AlertInTransitCovers
	AlertInTransitInsufficient
	AlertNeedsOrder
)

// String method for LogisticsAlert enum
func (a LogisticsAlert) String() string {
	switch a {
	case AlertOK:
		return "OK"
	case AlertInTransitCovers:
		return "IN_TRANSIT_COVERS"
	case AlertInTransitInsufficient:
		return "IN_TRANSIT_INSUFFICIENT"
	case AlertNeedsOrder:
		return "NEEDS_ORDER"
	default:
		return "Unknown"
	}
}

// MarshalText renders the alert by name
func (a LogisticsAlert) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// ComputeShortage returns required minus on hand, never negative
func ComputeShortage(required, onHand Quantity) Quantity {
	return (required - onHand).NonNegative()
}

// StatusFor derives the order status from a shortage
func StatusFor(shortage Quantity) Status {
	if shortage > 0 {
		return StatusNeedsOrder
	}
	return StatusOK
}

// AlertFor derives the logistics alert from a shortage and the units in transit
func AlertFor(shortage, inTransit Quantity) LogisticsAlert {
	switch {
	case shortage <= 0:
		return AlertOK
	case inTransit >= shortage:
		return AlertInTransitCovers
	case inTransit > 0:
		return AlertInTransitInsufficient
	default:
		return AlertNeedsOrder
	}
}

// MaterialRequirement is one consolidated (task key, part number) line for a selected date
type MaterialRequirement struct {
	TaskKey           string         `json:"task_key"`
	TaskCode          TaskCode       `json:"task_code"`
	PartNumber        PartNumber     `json:"part_number"`
	Description       string         `json:"description"`
	QuantityOnHand    Quantity       `json:"quantity_on_hand"`
	RequiredQuantity  Quantity       `json:"required_quantity"`
	OpenOrderQuantity Quantity       `json:"open_order_quantity"`
	InTransitQuantity Quantity       `json:"in_transit_quantity"`
	Requisitions      []string       `json:"requisitions,omitempty"`
	BinLocations      []string       `json:"bin_locations,omitempty"`
	Shortage          Quantity       `json:"shortage"`
	Status            Status         `json:"status"`
	LogisticsAlert    LogisticsAlert `json:"logistics_alert"`
	SourceRows        int            `json:"source_rows"`
}

// Bins renders the consolidated bin locations as sorted, deduplicated text
func (m MaterialRequirement) Bins() string {
	return strings.Join(m.BinLocations, ", ")
}

// Requisition renders the consolidated requisition notes
func (m MaterialRequirement) Requisition() string {
	return strings.Join(m.Requisitions, ", ")
}

// ProjectedStock is on hand plus open orders plus in transit
func (m MaterialRequirement) ProjectedStock() Quantity {
	return m.QuantityOnHand.Plus(m.OpenOrderQuantity).Plus(m.InTransitQuantity)
}

func (m MaterialRequirement) String() string {
	return fmt.Sprintf("%s/%s short=%d %s", m.TaskKey, m.PartNumber, m.Shortage, m.Status)
}
