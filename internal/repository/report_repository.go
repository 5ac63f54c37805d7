package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/agricoop/api/internal/database"
	"github.com/stwalsh4118/agricoop/api/internal/models"
)

// ProducerTotals are the scalar figures of a producer dashboard.
type ProducerTotals struct {
	Parcels       int
	Harvests      int
	TotalQuantity decimal.Decimal
}

// CooperativeTotals are the scalar figures shown to managers and visitors.
type CooperativeTotals struct {
	ActiveProducers int
	Harvests        int
	Warehouses      int
	Communes        int
	TotalHarvested  decimal.Decimal
}

// ReportRepository runs the read-only aggregate queries behind dashboards.
// Every query returns zeros or empty slices over empty tables.
type ReportRepository interface {
	ProducerTotals(ctx context.Context, producerID int64) (ProducerTotals, error)

	// ProducerCropTotals sums the producer's harvests per crop, largest
	// total first with ties ordered by crop name.
	ProducerCropTotals(ctx context.Context, producerID int64) ([]models.CropTotal, error)

	CooperativeTotals(ctx context.Context) (CooperativeTotals, error)

	// StockByCrop sums stock across warehouses per crop, largest first.
	StockByCrop(ctx context.Context) ([]models.CropTotal, error)

	// TopZones sums harvested quantity per (district, commune), largest
	// first, returning at most limit rows.
	TopZones(ctx context.Context, limit int) ([]models.ZoneTotal, error)
}

type reportRepository struct {
	db *database.Database
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *database.Database) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) ProducerTotals(ctx context.Context, producerID int64) (ProducerTotals, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM parcels WHERE producer_id = $1),
			COUNT(h.id),
			COALESCE(SUM(h.quantity), 0)
		FROM harvests h
		JOIN parcels pa ON pa.id = h.parcel_id
		WHERE pa.producer_id = $1
	`
	var t ProducerTotals
	if err := r.db.Pool.QueryRow(ctx, query, producerID).Scan(&t.Parcels, &t.Harvests, &t.TotalQuantity); err != nil {
		return ProducerTotals{}, fmt.Errorf("failed to query totals for producer %d: %w", producerID, err)
	}
	return t, nil
}

func (r *reportRepository) ProducerCropTotals(ctx context.Context, producerID int64) ([]models.CropTotal, error) {
	query := `
		SELECT ct.name, SUM(h.quantity) AS total
		FROM harvests h
		JOIN parcels pa ON pa.id = h.parcel_id
		JOIN crop_types ct ON ct.id = h.crop_type_id
		WHERE pa.producer_id = $1
		GROUP BY ct.name
		ORDER BY total DESC, ct.name
	`
	totals, err := r.cropTotals(ctx, query, producerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query crop totals for producer %d: %w", producerID, err)
	}
	return totals, nil
}

func (r *reportRepository) CooperativeTotals(ctx context.Context) (CooperativeTotals, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM producers WHERE active),
			(SELECT COUNT(*) FROM harvests),
			(SELECT COUNT(*) FROM warehouses),
			(SELECT COUNT(*) FROM communes),
			(SELECT COALESCE(SUM(quantity), 0) FROM harvests)
	`
	var t CooperativeTotals
	err := r.db.Pool.QueryRow(ctx, query).Scan(
		&t.ActiveProducers, &t.Harvests, &t.Warehouses, &t.Communes, &t.TotalHarvested,
	)
	if err != nil {
		return CooperativeTotals{}, fmt.Errorf("failed to query cooperative totals: %w", err)
	}
	return t, nil
}

func (r *reportRepository) StockByCrop(ctx context.Context) ([]models.CropTotal, error) {
	query := `
		SELECT ct.name, SUM(s.quantity) AS total
		FROM stock_entries s
		JOIN crop_types ct ON ct.id = s.crop_type_id
		GROUP BY ct.name
		ORDER BY total DESC, ct.name
	`
	totals, err := r.cropTotals(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock by crop: %w", err)
	}
	return totals, nil
}

func (r *reportRepository) cropTotals(ctx context.Context, query string, args ...any) ([]models.CropTotal, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []models.CropTotal{}
	for rows.Next() {
		var t models.CropTotal
		if err := rows.Scan(&t.CropName, &t.Total); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *reportRepository) TopZones(ctx context.Context, limit int) ([]models.ZoneTotal, error) {
	query := `
		SELECT d.name, c.name, SUM(h.quantity) AS total
		FROM harvests h
		JOIN parcels pa ON pa.id = h.parcel_id
		JOIN districts d ON d.id = pa.district_id
		JOIN communes c ON c.id = d.commune_id
		GROUP BY d.id, d.name, c.name
		ORDER BY total DESC, d.name
		LIMIT $1
	`
	rows, err := r.db.Pool.Query(ctx, query, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query top zones: %w", err)
	}
	defer rows.Close()

	zones := []models.ZoneTotal{}
	for rows.Next() {
		var z models.ZoneTotal
		if err := rows.Scan(&z.DistrictName, &z.CommuneName, &z.Total); err != nil {
			return nil, fmt.Errorf("failed to scan zone row: %w", err)
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating zone rows: %w", err)
	}
	return zones, nil
}
