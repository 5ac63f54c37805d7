package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/agricoop/api/internal/models"
)

// SeedStore implements the insert-if-absent primitives used by the seeder.
// Every Ensure method returns the id of the matching row and whether it was
// created by this call.
type SeedStore struct {
	q Querier
}

// NewSeedStore binds the store to a pool or a transaction.
func NewSeedStore(q Querier) *SeedStore {
	return &SeedStore{q: q}
}

// ensure runs an "insert ... on conflict do nothing returning id" statement
// and falls back to lookup when the row already existed.
func (s *SeedStore) ensure(ctx context.Context, insert, lookup string, insertArgs, lookupArgs []any) (int64, bool, error) {
	query := `WITH ins AS (` + insert + ` RETURNING id)
		SELECT id, TRUE FROM ins
		UNION ALL
		SELECT id, FALSE FROM (` + lookup + `) existing
		LIMIT 1`

	// Lookup placeholders follow the insert placeholders.
	args := append(append([]any{}, insertArgs...), lookupArgs...)

	var id int64
	var created bool
	if err := s.q.QueryRow(ctx, query, args...).Scan(&id, &created); err != nil {
		return 0, false, translate(err)
	}
	return id, created, nil
}

// EnsureCommune matches communes by code.
func (s *SeedStore) EnsureCommune(ctx context.Context, name, code string) (int64, bool, error) {
	id, created, err := s.ensure(ctx,
		`INSERT INTO communes (name, code) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING`,
		`SELECT id FROM communes WHERE code = $3`,
		[]any{name, code}, []any{code},
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to ensure commune %q: %w", code, err)
	}
	return id, created, nil
}

// EnsureDistrict matches districts by (name, commune).
func (s *SeedStore) EnsureDistrict(ctx context.Context, name, code string, communeID int64) (int64, bool, error) {
	id, created, err := s.ensure(ctx,
		`INSERT INTO districts (name, code, commune_id) VALUES ($1, $2, $3)
		 ON CONFLICT (name, commune_id) DO NOTHING`,
		`SELECT id FROM districts WHERE name = $4 AND commune_id = $5`,
		[]any{name, code, communeID}, []any{name, communeID},
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to ensure district %q: %w", name, err)
	}
	return id, created, nil
}

// EnsureCropType matches crop types by name.
func (s *SeedStore) EnsureCropType(ctx context.Context, name, description string) (int64, bool, error) {
	id, created, err := s.ensure(ctx,
		`INSERT INTO crop_types (name, description) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		`SELECT id FROM crop_types WHERE name = $3`,
		[]any{name, description}, []any{name},
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to ensure crop type %q: %w", name, err)
	}
	return id, created, nil
}

// EnsureUser matches users by username. An existing account keeps its
// password and profile.
func (s *SeedStore) EnsureUser(ctx context.Context, u models.User) (int64, bool, error) {
	id, created, err := s.ensure(ctx,
		`INSERT INTO users (username, password_hash, first_name, last_name, email, role)
		 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (username) DO NOTHING`,
		`SELECT id FROM users WHERE username = $7`,
		[]any{u.Username, u.PasswordHash, u.FirstName, u.LastName, u.Email, string(u.Role)},
		[]any{u.Username},
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to ensure user %q: %w", u.Username, err)
	}
	return id, created, nil
}

// EnsureProducer matches producer profiles by user.
func (s *SeedStore) EnsureProducer(ctx context.Context, userID int64, phone string, districtID *int64) (int64, bool, error) {
	id, created, err := s.ensure(ctx,
		`INSERT INTO producers (user_id, phone, district_id) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO NOTHING`,
		`SELECT id FROM producers WHERE user_id = $4`,
		[]any{userID, phone, districtID}, []any{userID},
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to ensure producer for user %d: %w", userID, err)
	}
	return id, created, nil
}

// EnsureParcel matches parcels by (producer, name).
func (s *SeedStore) EnsureParcel(ctx context.Context, p models.Parcel) (int64, bool, error) {
	var lat, lng *float64
	if p.Location != nil {
		lat, lng = &p.Location.Lat, &p.Location.Lng
	}
	id, created, err := s.ensure(ctx,
		`INSERT INTO parcels (producer_id, district_id, name, area, latitude, longitude)
		 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (producer_id, name) DO NOTHING`,
		`SELECT id FROM parcels WHERE producer_id = $7 AND name = $8`,
		[]any{p.ProducerID, p.DistrictID, p.Name, p.Area, lat, lng},
		[]any{p.ProducerID, p.Name},
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to ensure parcel %q: %w", p.Name, err)
	}
	return id, created, nil
}

// EnsureWarehouse matches warehouses by name.
func (s *SeedStore) EnsureWarehouse(ctx context.Context, w models.Warehouse) (int64, bool, error) {
	id, created, err := s.ensure(ctx,
		`INSERT INTO warehouses (name, district_id, capacity, alert_threshold, manager_id)
		 VALUES ($1, $2, $3, $4, $5) ON CONFLICT (name) DO NOTHING`,
		`SELECT id FROM warehouses WHERE name = $6`,
		[]any{w.Name, w.DistrictID, w.Capacity, w.AlertThreshold, w.ManagerID},
		[]any{w.Name},
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to ensure warehouse %q: %w", w.Name, err)
	}
	return id, created, nil
}

// EnsureStock creates the (warehouse, crop) ledger row when absent. An
// existing quantity is left alone.
func (s *SeedStore) EnsureStock(ctx context.Context, warehouseID, cropTypeID int64, quantity decimal.Decimal) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		INSERT INTO stock_entries (warehouse_id, crop_type_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (warehouse_id, crop_type_id) DO NOTHING
	`, warehouseID, cropTypeID, quantity)
	if err != nil {
		return false, fmt.Errorf("failed to ensure stock (warehouse=%d, crop_type=%d): %w",
			warehouseID, cropTypeID, translate(err))
	}
	return tag.RowsAffected() == 1, nil
}

// EnsureHarvest inserts a harvest unless one already exists for the same
// (parcel, crop, date).
func (s *SeedStore) EnsureHarvest(ctx context.Context, parcelID, cropTypeID int64, quantity decimal.Decimal, date time.Time) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		INSERT INTO harvests (parcel_id, crop_type_id, quantity, harvest_date)
		SELECT $1::bigint, $2::bigint, $3::numeric, $4::date
		WHERE NOT EXISTS (
			SELECT 1 FROM harvests
			WHERE parcel_id = $1 AND crop_type_id = $2 AND harvest_date = $4::date
		)
	`, parcelID, cropTypeID, quantity, date)
	if err != nil {
		return false, fmt.Errorf("failed to ensure harvest (parcel=%d, crop_type=%d): %w",
			parcelID, cropTypeID, translate(err))
	}
	return tag.RowsAffected() == 1, nil
}
