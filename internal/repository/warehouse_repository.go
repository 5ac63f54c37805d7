package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/agricoop/api/internal/database"
	"github.com/stwalsh4118/agricoop/api/internal/models"
)

// WarehouseRepository covers warehouses and their stock ledger.
type WarehouseRepository interface {
	// List returns every warehouse ordered by name.
	List(ctx context.Context) ([]models.Warehouse, error)

	// Get returns nil, nil when id does not exist.
	Get(ctx context.Context, id int64) (*models.Warehouse, error)

	// Create inserts a warehouse. Returns ErrDuplicate when the name is taken.
	Create(ctx context.Context, w models.Warehouse) (*models.Warehouse, error)

	// StockEntries returns the ledger of one warehouse ordered by crop name.
	StockEntries(ctx context.Context, warehouseID int64) ([]models.StockEntry, error)

	// AllStockEntries returns every ledger row keyed by warehouse id.
	AllStockEntries(ctx context.Context) (map[int64][]models.StockEntry, error)

	// UpsertStock sets the quantity for (warehouseID, cropTypeID), creating
	// the row if needed. updated_at is refreshed on both paths.
	UpsertStock(ctx context.Context, warehouseID, cropTypeID int64, quantity decimal.Decimal) (*models.StockEntry, error)
}

type warehouseRepository struct {
	db *database.Database
}

// NewWarehouseRepository creates a new instance of WarehouseRepository.
func NewWarehouseRepository(db *database.Database) WarehouseRepository {
	return &warehouseRepository{db: db}
}

const warehouseSelect = `
	SELECT w.id, w.name, w.district_id, d.name, w.capacity, w.alert_threshold, w.manager_id
	FROM warehouses w
	JOIN districts d ON d.id = w.district_id
`

func scanWarehouse(row pgx.Row) (models.Warehouse, error) {
	var w models.Warehouse
	err := row.Scan(&w.ID, &w.Name, &w.DistrictID, &w.DistrictName, &w.Capacity, &w.AlertThreshold, &w.ManagerID)
	return w, err
}

func (r *warehouseRepository) List(ctx context.Context) ([]models.Warehouse, error) {
	rows, err := r.db.Pool.Query(ctx, warehouseSelect+` ORDER BY w.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query warehouses: %w", err)
	}
	defer rows.Close()

	warehouses := []models.Warehouse{}
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan warehouse row: %w", err)
		}
		warehouses = append(warehouses, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating warehouse rows: %w", err)
	}
	return warehouses, nil
}

func (r *warehouseRepository) Get(ctx context.Context, id int64) (*models.Warehouse, error) {
	w, err := scanWarehouse(r.db.Pool.QueryRow(ctx, warehouseSelect+` WHERE w.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query warehouse %d: %w", id, err)
	}
	return &w, nil
}

func (r *warehouseRepository) Create(ctx context.Context, w models.Warehouse) (*models.Warehouse, error) {
	query := `
		INSERT INTO warehouses (name, district_id, capacity, alert_threshold, manager_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.Pool.QueryRow(ctx, query,
		w.Name, w.DistrictID, w.Capacity, w.AlertThreshold, w.ManagerID,
	).Scan(&w.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert warehouse %q: %w", w.Name, translate(err))
	}
	return &w, nil
}

const stockSelect = `
	SELECT s.id, s.warehouse_id, s.crop_type_id, ct.name, s.quantity, s.updated_at
	FROM stock_entries s
	JOIN crop_types ct ON ct.id = s.crop_type_id
`

func (r *warehouseRepository) StockEntries(ctx context.Context, warehouseID int64) ([]models.StockEntry, error) {
	entries, err := r.queryStock(ctx, stockSelect+` WHERE s.warehouse_id = $1 ORDER BY ct.name`, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock for warehouse %d: %w", warehouseID, err)
	}
	return entries, nil
}

func (r *warehouseRepository) AllStockEntries(ctx context.Context) (map[int64][]models.StockEntry, error) {
	entries, err := r.queryStock(ctx, stockSelect+` ORDER BY s.warehouse_id, ct.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock entries: %w", err)
	}

	byWarehouse := make(map[int64][]models.StockEntry)
	for _, e := range entries {
		byWarehouse[e.WarehouseID] = append(byWarehouse[e.WarehouseID], e)
	}
	return byWarehouse, nil
}

func (r *warehouseRepository) queryStock(ctx context.Context, query string, args ...any) ([]models.StockEntry, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.StockEntry{}
	for rows.Next() {
		var e models.StockEntry
		if err := rows.Scan(&e.ID, &e.WarehouseID, &e.CropTypeID, &e.CropName, &e.Quantity, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *warehouseRepository) UpsertStock(ctx context.Context, warehouseID, cropTypeID int64, quantity decimal.Decimal) (*models.StockEntry, error) {
	// Single statement on the (warehouse_id, crop_type_id) key, so concurrent
	// writers never produce two rows.
	query := `
		WITH upserted AS (
			INSERT INTO stock_entries (warehouse_id, crop_type_id, quantity, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (warehouse_id, crop_type_id)
			DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
			RETURNING id, warehouse_id, crop_type_id, quantity, updated_at
		)
		SELECT u.id, u.warehouse_id, u.crop_type_id, ct.name, u.quantity, u.updated_at
		FROM upserted u
		JOIN crop_types ct ON ct.id = u.crop_type_id
	`
	var e models.StockEntry
	err := r.db.Pool.QueryRow(ctx, query, warehouseID, cropTypeID, quantity).Scan(
		&e.ID, &e.WarehouseID, &e.CropTypeID, &e.CropName, &e.Quantity, &e.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert stock (warehouse=%d, crop_type=%d): %w",
			warehouseID, cropTypeID, translate(err))
	}
	return &e, nil
}
