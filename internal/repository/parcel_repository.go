package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/agricoop/api/internal/database"
	"github.com/stwalsh4118/agricoop/api/internal/models"
)

// ParcelRepository defines the interface for parcel data access operations.
type ParcelRepository interface {
	// ListByProducer returns the parcels owned by a producer ordered by name.
	// Returns an empty slice if the producer has none (not an error).
	ListByProducer(ctx context.Context, producerID int64) ([]models.Parcel, error)

	// FindForProducer looks up a parcel inside the producer's own parcel set.
	// Returns nil, nil if the parcel does not exist or belongs to someone else.
	FindForProducer(ctx context.Context, parcelID, producerID int64) (*models.Parcel, error)

	// Create inserts a parcel and returns it with its assigned id.
	// Returns ErrDuplicate if the producer already has a parcel with that name.
	Create(ctx context.Context, parcel models.Parcel) (*models.Parcel, error)
}

// parcelRepository is the concrete implementation of ParcelRepository.
type parcelRepository struct {
	db *database.Database
}

// NewParcelRepository creates a new instance of ParcelRepository.
func NewParcelRepository(db *database.Database) ParcelRepository {
	return &parcelRepository{db: db}
}

const parcelSelect = `
	SELECT
		pa.id,
		pa.producer_id,
		TRIM(u.first_name || ' ' || u.last_name),
		pa.district_id,
		d.name,
		pa.name,
		pa.area,
		pa.latitude::float8,
		pa.longitude::float8,
		pa.created_at
	FROM parcels pa
	JOIN producers p ON p.id = pa.producer_id
	JOIN users u ON u.id = p.user_id
	JOIN districts d ON d.id = pa.district_id
`

func scanParcel(row pgx.Row) (*models.Parcel, error) {
	var parcel models.Parcel
	var lat, lng *float64

	err := row.Scan(
		&parcel.ID,
		&parcel.ProducerID,
		&parcel.ProducerName,
		&parcel.DistrictID,
		&parcel.DistrictName,
		&parcel.Name,
		&parcel.Area,
		&lat,
		&lng,
		&parcel.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	// The schema keeps latitude and longitude both-or-neither.
	if lat != nil && lng != nil {
		parcel.Location = &models.GeoPoint{Lat: *lat, Lng: *lng}
	}
	return &parcel, nil
}

func (r *parcelRepository) ListByProducer(ctx context.Context, producerID int64) ([]models.Parcel, error) {
	rows, err := r.db.Pool.Query(ctx, parcelSelect+` WHERE pa.producer_id = $1 ORDER BY pa.name, pa.id`, producerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query parcels for producer %d: %w", producerID, err)
	}
	defer rows.Close()

	parcels := []models.Parcel{}
	for rows.Next() {
		parcel, err := scanParcel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan parcel row: %w", err)
		}
		parcels = append(parcels, *parcel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parcel rows: %w", err)
	}
	return parcels, nil
}

func (r *parcelRepository) FindForProducer(ctx context.Context, parcelID, producerID int64) (*models.Parcel, error) {
	parcel, err := scanParcel(r.db.Pool.QueryRow(ctx,
		parcelSelect+` WHERE pa.id = $1 AND pa.producer_id = $2`, parcelID, producerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query parcel %d for producer %d: %w", parcelID, producerID, err)
	}
	return parcel, nil
}

func (r *parcelRepository) Create(ctx context.Context, parcel models.Parcel) (*models.Parcel, error) {
	var lat, lng *float64
	if parcel.Location != nil {
		lat, lng = &parcel.Location.Lat, &parcel.Location.Lng
	}

	query := `
		INSERT INTO parcels (producer_id, district_id, name, area, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.Pool.QueryRow(ctx, query,
		parcel.ProducerID, parcel.DistrictID, parcel.Name, parcel.Area, lat, lng,
	).Scan(&parcel.ID, &parcel.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert parcel %q: %w", parcel.Name, translate(err))
	}
	return &parcel, nil
}
