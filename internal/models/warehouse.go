package models

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Warehouse stores harvested crops. Capacity and AlertThreshold are in kilograms.
type Warehouse struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	DistrictID     int64           `json:"districtId"`
	DistrictName   string          `json:"districtName"`
	Capacity       decimal.Decimal `json:"capacity"`
	AlertThreshold decimal.Decimal `json:"alertThreshold"`
	ManagerID      *int64          `json:"managerId,omitempty"`
}

// StockEntry is the quantity of one crop type held in one warehouse.
// (WarehouseID, CropTypeID) is unique.
type StockEntry struct {
	ID          int64           `json:"id"`
	WarehouseID int64           `json:"warehouseId"`
	CropTypeID  int64           `json:"cropTypeId"`
	CropName    string          `json:"cropName,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// WarehouseStatus is a warehouse together with its derived stock figures.
// None of the derived fields are persisted.
type WarehouseStatus struct {
	Warehouse
	Entries      []StockEntry    `json:"entries"`
	CurrentStock decimal.Decimal `json:"currentStock"`
	FillRate     decimal.Decimal `json:"fillRate"`
	LowStock     bool            `json:"lowStock"`
}

// CurrentStock sums the quantities of entries. An empty ledger is zero.
func CurrentStock(entries []StockEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Quantity)
	}
	return total
}

// FillRate returns current as a percentage of capacity, or zero when
// capacity is not positive.
func FillRate(current, capacity decimal.Decimal) decimal.Decimal {
	if !capacity.IsPositive() {
		return decimal.Zero
	}
	return current.Div(capacity).Mul(hundred)
}

// IsLowStock reports whether current is strictly below threshold.
func IsLowStock(current, threshold decimal.Decimal) bool {
	return current.LessThan(threshold)
}

// NewWarehouseStatus derives the stock figures for w from its entries.
func NewWarehouseStatus(w Warehouse, entries []StockEntry) WarehouseStatus {
	if entries == nil {
		entries = []StockEntry{}
	}
	current := CurrentStock(entries)
	return WarehouseStatus{
		Warehouse:    w,
		Entries:      entries,
		CurrentStock: current,
		FillRate:     FillRate(current, w.Capacity).Round(1),
		LowStock:     IsLowStock(current, w.AlertThreshold),
	}
}
