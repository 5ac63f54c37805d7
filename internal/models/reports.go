package models

import "github.com/shopspring/decimal"

// ProducerDashboard summarizes the requesting producer's own activity.
type ProducerDashboard struct {
	Producer       Producer        `json:"producer"`
	ParcelCount    int             `json:"parcelCount"`
	HarvestCount   int             `json:"harvestCount"`
	ByCrop         []CropTotal     `json:"byCrop"`
	RecentHarvests []HarvestRow    `json:"recentHarvests"`
	TotalQuantity  decimal.Decimal `json:"totalQuantity"`
}

// ManagerDashboard is the cooperative-wide view.
type ManagerDashboard struct {
	ActiveProducers    int               `json:"activeProducers"`
	HarvestCount       int               `json:"harvestCount"`
	WarehouseCount     int               `json:"warehouseCount"`
	LowStockWarehouses []WarehouseStatus `json:"lowStockWarehouses"`
	AlertCount         int               `json:"alertCount"`
	StockByCrop        []CropTotal       `json:"stockByCrop"`
	RecentHarvests     []HarvestRow      `json:"recentHarvests"`
	TopZones           []ZoneTotal       `json:"topZones"`
}

// PublicStats is shown to anonymous visitors.
type PublicStats struct {
	ActiveProducers  int             `json:"activeProducers"`
	Communes         int             `json:"communes"`
	TotalHarvestedKg decimal.Decimal `json:"totalHarvestedKg"`
}
