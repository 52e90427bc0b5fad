package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wareflow/backend/pkg/constants"
)

// StockRepository answers stock-level questions for the requisition stock
// check. Availability is a point-in-time read; the workflow engine treats a
// missing row the same as zero on hand.
type StockRepository struct {
	db *sql.DB
}

// NewStockRepository creates a new StockRepository
func NewStockRepository(db *sql.DB) *StockRepository {
	return &StockRepository{db: db}
}

// GetStockLevel returns the available quantity of an item in a warehouse
func (r *StockRepository) GetStockLevel(ctx context.Context, itemID, warehouseID string) (int, error) {
	query := fmt.Sprintf("SELECT qty_available FROM %s WHERE item_id = ? AND warehouse_id = ?",
		constants.TableWarehouseStock)

	var available int
	err := executor(ctx, r.db).QueryRowContext(ctx, query, itemID, warehouseID).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read stock level for %s@%s: %w", itemID, warehouseID, err)
	}
	return available, nil
}

// AdjustStock applies a delta to the on-hand quantity, creating the row if
// it does not exist yet
func (r *StockRepository) AdjustStock(ctx context.Context, itemID, warehouseID string, delta int) error {
	query := fmt.Sprintf("INSERT INTO %s (item_id, warehouse_id, qty_available) VALUES (?, ?, ?) "+
		"ON DUPLICATE KEY UPDATE qty_available = qty_available + ?", constants.TableWarehouseStock)

	_, err := executor(ctx, r.db).ExecContext(ctx, query, itemID, warehouseID, delta, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust stock for %s@%s: %w", itemID, warehouseID, err)
	}
	return nil
}
