package entities

import "fmt"

// StockRecord represents one row of the stock ledger
type StockRecord struct {
	TaskCode          TaskCode   `json:"task_code"`
	PartNumber        PartNumber `json:"part_number"`
	Description       string     `json:"description"`
	QuantityOnHand    Quantity   `json:"quantity_on_hand"`
	RequiredQuantity  Quantity   `json:"required_quantity"`
	OpenOrderQuantity Quantity   `json:"open_order_quantity"`
	InTransitQuantity Quantity   `json:"in_transit_quantity"`
	RequisitionNote   string     `json:"requisition_note,omitempty"`
	BinLocation       string     `json:"bin_location,omitempty"`
}

// NewStockRecord creates a validated StockRecord
func NewStockRecord(taskCode TaskCode, partNumber PartNumber, description string, onHand, required Quantity) (*StockRecord, error) {
	if onHand < 0 {
		return nil, fmt.Errorf("quantity on hand cannot be negative, got %d", onHand)
	}
	if required < 0 {
		return nil, fmt.Errorf("required quantity cannot be negative, got %d", required)
	}

	return &StockRecord{
		TaskCode:         taskCode,
		PartNumber:       partNumber,
		Description:      description,
		QuantityOnHand:   onHand,
		RequiredQuantity: required,
	}, nil
}

// Shortage returns the per-row shortage, floored at zero
func (r StockRecord) Shortage() Quantity {
	return ComputeShortage(r.RequiredQuantity, r.QuantityOnHand)
}

// ProjectedStock is what the row will hold once open orders and in-transit units arrive
func (r StockRecord) ProjectedStock() Quantity {
	return r.QuantityOnHand.Plus(r.OpenOrderQuantity).Plus(r.InTransitQuantity)
}
