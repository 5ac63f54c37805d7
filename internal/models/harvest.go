package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HarvestRecord is an append-only harvest event. Quantity is in kilograms.
// RecordedAt is assigned by the database at insert time.
type HarvestRecord struct {
	ID          int64           `json:"id"`
	ParcelID    int64           `json:"parcelId"`
	CropTypeID  int64           `json:"cropTypeId"`
	Quantity    decimal.Decimal `json:"quantity"`
	HarvestDate time.Time       `json:"harvestDate"`
	RecordedAt  time.Time       `json:"recordedAt"`
}

// HarvestRow is a harvest joined with the names needed for listings and exports.
type HarvestRow struct {
	HarvestRecord
	ParcelName   string `json:"parcelName"`
	CropName     string `json:"cropName"`
	ProducerID   int64  `json:"producerId"`
	ProducerName string `json:"producerName"`
	DistrictID   int64  `json:"districtId"`
	DistrictName string `json:"districtName"`
	CommuneName  string `json:"communeName"`
}

// HarvestFilter restricts a harvest listing. Nil fields impose no restriction;
// set fields are combined with AND.
type HarvestFilter struct {
	CropTypeName *string
	DistrictID   *int64
}

// CropTotal is a quantity summed per crop type.
type CropTotal struct {
	CropName string          `json:"cropName"`
	Total    decimal.Decimal `json:"total"`
}

// ZoneTotal is a harvested quantity summed per (district, commune).
type ZoneTotal struct {
	DistrictName string          `json:"districtName"`
	CommuneName  string          `json:"communeName"`
	Total        decimal.Decimal `json:"total"`
}
