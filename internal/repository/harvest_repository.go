package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/agricoop/api/internal/database"
	"github.com/stwalsh4118/agricoop/api/internal/models"
)

// HarvestRepository is the append-only harvest ledger.
type HarvestRepository interface {
	// CreateForProducer inserts rec only if rec.ParcelID belongs to producerID
	// at write time. Returns nil, nil when the parcel is not the producer's.
	CreateForProducer(ctx context.Context, producerID int64, rec models.HarvestRecord) (*models.HarvestRecord, error)

	// ListByProducer returns the producer's harvests, newest harvest date
	// first. limit <= 0 returns all of them.
	ListByProducer(ctx context.Context, producerID int64, limit int) ([]models.HarvestRow, error)

	// List returns harvests across all producers matching filter, newest
	// harvest date first. limit <= 0 returns all of them.
	List(ctx context.Context, filter models.HarvestFilter, limit int) ([]models.HarvestRow, error)
}

type harvestRepository struct {
	db *database.Database
}

// NewHarvestRepository creates a new instance of HarvestRepository.
func NewHarvestRepository(db *database.Database) HarvestRepository {
	return &harvestRepository{db: db}
}

func (r *harvestRepository) CreateForProducer(ctx context.Context, producerID int64, rec models.HarvestRecord) (*models.HarvestRecord, error) {
	// The ownership predicate and the insert are one statement.
	query := `
		INSERT INTO harvests (parcel_id, crop_type_id, quantity, harvest_date)
		SELECT pa.id, $3::bigint, $4::numeric, $5::date
		FROM parcels pa
		WHERE pa.id = $1 AND pa.producer_id = $2
		RETURNING id, recorded_at
	`
	err := r.db.Pool.QueryRow(ctx, query,
		rec.ParcelID, producerID, rec.CropTypeID, rec.Quantity, rec.HarvestDate,
	).Scan(&rec.ID, &rec.RecordedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to insert harvest for parcel %d: %w", rec.ParcelID, translate(err))
	}
	return &rec, nil
}

const harvestSelect = `
	SELECT
		h.id,
		h.parcel_id,
		h.crop_type_id,
		h.quantity,
		h.harvest_date,
		h.recorded_at,
		pa.name,
		ct.name,
		p.id,
		TRIM(u.first_name || ' ' || u.last_name),
		pa.district_id,
		d.name,
		c.name
	FROM harvests h
	JOIN parcels pa ON pa.id = h.parcel_id
	JOIN crop_types ct ON ct.id = h.crop_type_id
	JOIN producers p ON p.id = pa.producer_id
	JOIN users u ON u.id = p.user_id
	JOIN districts d ON d.id = pa.district_id
	JOIN communes c ON c.id = d.commune_id
`

const harvestOrder = ` ORDER BY h.harvest_date DESC, h.id DESC`

func (r *harvestRepository) ListByProducer(ctx context.Context, producerID int64, limit int) ([]models.HarvestRow, error) {
	query := harvestSelect + ` WHERE pa.producer_id = $1` + harvestOrder + ` LIMIT $2`
	return r.query(ctx, query, producerID, limitArg(limit))
}

func (r *harvestRepository) List(ctx context.Context, filter models.HarvestFilter, limit int) ([]models.HarvestRow, error) {
	where, args := harvestFilterClause(filter)
	args = append(args, limitArg(limit))
	query := harvestSelect + where + harvestOrder + fmt.Sprintf(` LIMIT $%d`, len(args))
	return r.query(ctx, query, args...)
}

// harvestFilterClause builds the WHERE clause for filter. Each set field adds
// one AND-ed predicate.
func harvestFilterClause(filter models.HarvestFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.CropTypeName != nil {
		args = append(args, *filter.CropTypeName)
		conds = append(conds, fmt.Sprintf("ct.name = $%d", len(args)))
	}
	if filter.DistrictID != nil {
		args = append(args, *filter.DistrictID)
		conds = append(conds, fmt.Sprintf("pa.district_id = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *harvestRepository) query(ctx context.Context, query string, args ...any) ([]models.HarvestRow, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query harvests: %w", err)
	}
	defer rows.Close()

	harvests := []models.HarvestRow{}
	for rows.Next() {
		var h models.HarvestRow
		err := rows.Scan(
			&h.ID,
			&h.ParcelID,
			&h.CropTypeID,
			&h.Quantity,
			&h.HarvestDate,
			&h.RecordedAt,
			&h.ParcelName,
			&h.CropName,
			&h.ProducerID,
			&h.ProducerName,
			&h.DistrictID,
			&h.DistrictName,
			&h.CommuneName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan harvest row: %w", err)
		}
		harvests = append(harvests, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating harvest rows: %w", err)
	}
	return harvests, nil
}
