package memory

import (
	"fmt"
	"sync"

	"github.com/vsinha/shortfall/pkg/domain/entities"
	"github.com/vsinha/shortfall/pkg/domain/repositories"
)

// StockRepository provides in-memory storage for the stock ledger
type StockRepository struct {
	mutex sync.RWMutex
	stock []entities.StockRecord
}

// NewStockRepository creates a new, empty in-memory stock repository
func NewStockRepository() *StockRepository {
	return &StockRepository{
		stock: []entities.StockRecord{},
	}
}

// Verify interface compliance
var _ repositories.StockRepository = (*StockRepository)(nil)

// ReplaceStock discards the current ledger and installs records
func (r *StockRepository) ReplaceStock(records []*entities.StockRecord) error {
	table := make([]entities.StockRecord, 0, len(records))
	for i, record := range records {
		if record == nil {
			return fmt.Errorf("stock record %d is nil", i)
		}
		table = append(table, *record)
	}

	r.mutex.Lock()
	r.stock = table
	r.mutex.Unlock()
	return nil
}

// GetAllStock returns a copy of the ledger in load order
func (r *StockRepository) GetAllStock() ([]entities.StockRecord, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]entities.StockRecord, len(r.stock))
	copy(out, r.stock)
	return out, nil
}

// Len returns the number of loaded rows
func (r *StockRepository) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.stock)
}
