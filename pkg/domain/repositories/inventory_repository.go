package repositories

import "github.com/vsinha/shortfall/pkg/domain/entities"

// StockRepository provides access to the loaded stock ledger
type StockRepository interface {
	GetAllStock() ([]entities.StockRecord, error)
	// ReplaceStock swaps the whole ledger. Readers see either the old or the new table.
	ReplaceStock(records []*entities.StockRecord) error
	Len() int
}
