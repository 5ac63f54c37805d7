package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/agricoop/api/internal/database"
	"github.com/stwalsh4118/agricoop/api/internal/models"
)

// ReferenceRepository reads the seeded reference data: crop types and the
// commune/district hierarchy.
type ReferenceRepository interface {
	// CropTypes lists every crop type ordered by name.
	CropTypes(ctx context.Context) ([]models.CropType, error)

	// CropType returns nil, nil when id does not exist.
	CropType(ctx context.Context, id int64) (*models.CropType, error)

	// Communes lists communes with their district counts.
	Communes(ctx context.Context) ([]models.Commune, error)

	// Districts lists districts with commune name and producer/parcel counts.
	Districts(ctx context.Context) ([]models.District, error)

	// District returns nil, nil when id does not exist.
	District(ctx context.Context, id int64) (*models.District, error)
}

type referenceRepository struct {
	db *database.Database
}

// NewReferenceRepository creates a new instance of ReferenceRepository.
func NewReferenceRepository(db *database.Database) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) CropTypes(ctx context.Context) ([]models.CropType, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT id, name, description FROM crop_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query crop types: %w", err)
	}
	defer rows.Close()

	crops := []models.CropType{}
	for rows.Next() {
		var c models.CropType
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan crop type row: %w", err)
		}
		c.Label = models.CropLabel(c.Name)
		crops = append(crops, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating crop type rows: %w", err)
	}
	return crops, nil
}

func (r *referenceRepository) CropType(ctx context.Context, id int64) (*models.CropType, error) {
	var c models.CropType
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, name, description FROM crop_types WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query crop type %d: %w", id, err)
	}
	c.Label = models.CropLabel(c.Name)
	return &c, nil
}

func (r *referenceRepository) Communes(ctx context.Context) ([]models.Commune, error) {
	query := `
		SELECT c.id, c.name, c.code, COUNT(d.id)
		FROM communes c
		LEFT JOIN districts d ON d.commune_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query communes: %w", err)
	}
	defer rows.Close()

	communes := []models.Commune{}
	for rows.Next() {
		var c models.Commune
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.DistrictCount); err != nil {
			return nil, fmt.Errorf("failed to scan commune row: %w", err)
		}
		communes = append(communes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commune rows: %w", err)
	}
	return communes, nil
}

const districtColumns = `
	d.id, d.name, d.code, d.commune_id, c.name,
	(SELECT COUNT(*) FROM producers p WHERE p.district_id = d.id),
	(SELECT COUNT(*) FROM parcels pa WHERE pa.district_id = d.id)
`

func scanDistrict(row pgx.Row) (models.District, error) {
	var d models.District
	err := row.Scan(&d.ID, &d.Name, &d.Code, &d.CommuneID, &d.CommuneName, &d.ProducerCount, &d.ParcelCount)
	return d, err
}

func (r *referenceRepository) Districts(ctx context.Context) ([]models.District, error) {
	query := `SELECT ` + districtColumns + `
		FROM districts d
		JOIN communes c ON c.id = d.commune_id
		ORDER BY c.name, d.name
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query districts: %w", err)
	}
	defer rows.Close()

	districts := []models.District{}
	for rows.Next() {
		d, err := scanDistrict(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan district row: %w", err)
		}
		districts = append(districts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating district rows: %w", err)
	}
	return districts, nil
}

func (r *referenceRepository) District(ctx context.Context, id int64) (*models.District, error) {
	query := `SELECT ` + districtColumns + `
		FROM districts d
		JOIN communes c ON c.id = d.commune_id
		WHERE d.id = $1
	`
	d, err := scanDistrict(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query district %d: %w", id, err)
	}
	return &d, nil
}
