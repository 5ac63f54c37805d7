package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/agricoop/api/internal/logger"
	"github.com/stwalsh4118/agricoop/api/internal/metrics"
	"github.com/stwalsh4118/agricoop/api/internal/models"
	"github.com/stwalsh4118/agricoop/api/internal/repository"
)

// CreateWarehouseInput describes a new warehouse. Capacity and
// AlertThreshold are kilograms. Every warehouse sits in one district.
type CreateWarehouseInput struct {
	Name           string
	DistrictID     int64
	Capacity       decimal.Decimal
	AlertThreshold decimal.Decimal
	ManagerID      *int64
}

// InventoryService maintains the per-warehouse stock ledger and derives the
// warehouse figures from it.
type InventoryService interface {
	// ListWarehouses returns every warehouse with its stock figures.
	ListWarehouses(ctx context.Context, actor Actor) ([]models.WarehouseStatus, error)

	// WarehouseStatus returns one warehouse with its ledger and figures.
	// Returns ErrNotFound if the warehouse does not exist.
	WarehouseStatus(ctx context.Context, actor Actor, warehouseID int64) (*models.WarehouseStatus, error)

	// CreateWarehouse registers a warehouse. A duplicate name is ErrConflict.
	CreateWarehouse(ctx context.Context, actor Actor, input CreateWarehouseInput) (*models.Warehouse, error)

	// UpsertStock sets the quantity held for (warehouse, crop type), creating
	// the ledger entry when absent. The quantity replaces the previous value.
	UpsertStock(ctx context.Context, actor Actor, warehouseID, cropTypeID int64, quantity decimal.Decimal) (*models.StockEntry, error)
}

type inventoryService struct {
	warehouses repository.WarehouseRepository
	reference  repository.ReferenceRepository
	metrics    *metrics.Metrics
	log        *logger.Logger
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(
	warehouses repository.WarehouseRepository,
	reference repository.ReferenceRepository,
	m *metrics.Metrics,
	log *logger.Logger,
) InventoryService {
	return &inventoryService{
		warehouses: warehouses,
		reference:  reference,
		metrics:    m,
		log:        log.WithComponent("inventory"),
	}
}

func (s *inventoryService) ListWarehouses(ctx context.Context, actor Actor) ([]models.WarehouseStatus, error) {
	if err := Authorize(actor, CapViewStock); err != nil {
		return nil, err
	}
	return s.statuses(ctx)
}

func (s *inventoryService) statuses(ctx context.Context) ([]models.WarehouseStatus, error) {
	warehouses, err := s.warehouses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}
	entries, err := s.warehouses.AllStockEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stock entries: %w", err)
	}

	statuses := make([]models.WarehouseStatus, 0, len(warehouses))
	low := 0
	for _, w := range warehouses {
		status := models.NewWarehouseStatus(w, entries[w.ID])
		if status.LowStock {
			low++
		}
		statuses = append(statuses, status)
	}
	s.metrics.SetLowStock(low)
	return statuses, nil
}

func (s *inventoryService) WarehouseStatus(ctx context.Context, actor Actor, warehouseID int64) (*models.WarehouseStatus, error) {
	if err := Authorize(actor, CapViewStock); err != nil {
		return nil, err
	}

	w, err := s.warehouses.Get(ctx, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get warehouse: %w", err)
	}
	if w == nil {
		return nil, fmt.Errorf("%w: warehouse %d", ErrNotFound, warehouseID)
	}

	entries, err := s.warehouses.StockEntries(ctx, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stock entries: %w", err)
	}
	status := models.NewWarehouseStatus(*w, entries)
	return &status, nil
}

func (s *inventoryService) CreateWarehouse(ctx context.Context, actor Actor, input CreateWarehouseInput) (*models.Warehouse, error) {
	if err := Authorize(actor, CapManageWarehouses); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: warehouse name is required", ErrValidation)
	}
	if input.Capacity.IsNegative() {
		return nil, fmt.Errorf("%w: capacity must be >= 0, got %s", ErrValidation, input.Capacity)
	}
	if input.AlertThreshold.IsNegative() {
		return nil, fmt.Errorf("%w: alert threshold must be >= 0, got %s", ErrValidation, input.AlertThreshold)
	}
	if input.DistrictID <= 0 {
		return nil, fmt.Errorf("%w: district is required", ErrValidation)
	}
	district, err := s.reference.District(ctx, input.DistrictID)
	if err != nil {
		return nil, fmt.Errorf("failed to get district: %w", err)
	}
	if district == nil {
		return nil, fmt.Errorf("%w: district %d", ErrNotFound, input.DistrictID)
	}

	created, err := s.warehouses.Create(ctx, models.Warehouse{
		Name:           name,
		DistrictID:     input.DistrictID,
		Capacity:       input.Capacity,
		AlertThreshold: input.AlertThreshold,
		ManagerID:      input.ManagerID,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			s.log.Warn("Warehouse name already exists", map[string]interface{}{"name": name})
			return nil, fmt.Errorf("%w: warehouse %q already exists", ErrConflict, name)
		case errors.Is(err, repository.ErrMissingReference):
			return nil, fmt.Errorf("%w: manager or district does not exist", ErrNotFound)
		}
		s.log.Error("Failed to create warehouse", err, map[string]interface{}{"name": name})
		return nil, fmt.Errorf("failed to create warehouse: %w", err)
	}

	s.log.Info("Warehouse created", map[string]interface{}{
		"warehouse_id": created.ID,
		"name":         created.Name,
		"actor":        actor.Username,
	})
	return created, nil
}

func (s *inventoryService) UpsertStock(ctx context.Context, actor Actor, warehouseID, cropTypeID int64, quantity decimal.Decimal) (*models.StockEntry, error) {
	if err := Authorize(actor, CapChangeStock); err != nil {
		return nil, err
	}
	if quantity.IsNegative() {
		s.log.Warn("Rejected negative stock quantity", map[string]interface{}{
			"warehouse_id": warehouseID,
			"crop_type_id": cropTypeID,
			"quantity":     quantity.String(),
		})
		return nil, fmt.Errorf("%w: quantity must be >= 0, got %s", ErrValidation, quantity)
	}

	w, err := s.warehouses.Get(ctx, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get warehouse: %w", err)
	}
	if w == nil {
		return nil, fmt.Errorf("%w: warehouse %d", ErrNotFound, warehouseID)
	}
	crop, err := s.reference.CropType(ctx, cropTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get crop type: %w", err)
	}
	if crop == nil {
		return nil, fmt.Errorf("%w: crop type %d", ErrNotFound, cropTypeID)
	}

	entry, err := s.warehouses.UpsertStock(ctx, warehouseID, cropTypeID, quantity)
	outcome := "ok"
	if errors.Is(err, repository.ErrDuplicate) {
		// The upsert raced a concurrent first insert; the row exists now.
		s.log.Warn("Stock upsert conflicted, retrying once", map[string]interface{}{
			"warehouse_id": warehouseID,
			"crop_type_id": cropTypeID,
		})
		outcome = "retried"
		entry, err = s.warehouses.UpsertStock(ctx, warehouseID, cropTypeID, quantity)
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.StockUpserted("error")
			return nil, fmt.Errorf("%w: stock entry for warehouse %d and crop type %d", ErrConflict, warehouseID, cropTypeID)
		}
	}
	if err != nil {
		s.metrics.StockUpserted("error")
		if errors.Is(err, repository.ErrConstraint) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, fmt.Errorf("%w: warehouse or crop type was removed", ErrNotFound)
		}
		s.log.Error("Failed to upsert stock", err, map[string]interface{}{
			"warehouse_id": warehouseID,
			"crop_type_id": cropTypeID,
		})
		return nil, fmt.Errorf("failed to upsert stock: %w", err)
	}

	s.metrics.StockUpserted(outcome)
	s.log.Info("Stock updated", map[string]interface{}{
		"warehouse_id": warehouseID,
		"crop":         crop.Name,
		"quantity":     entry.Quantity.String(),
		"actor":        actor.Username,
	})
	return entry, nil
}
