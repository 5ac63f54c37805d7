// Package seed loads reference and demonstration data. Every step is keyed on
// a natural key so running it repeatedly converges on the same database.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/agricoop/api/internal/logger"
	"github.com/stwalsh4118/agricoop/api/internal/models"
)

// Store is the persistence surface used by Run. Each Ensure method creates
// the row if its natural key is absent and reports whether it did.
type Store interface {
	EnsureCommune(ctx context.Context, name, code string) (int64, bool, error)
	EnsureDistrict(ctx context.Context, name, code string, communeID int64) (int64, bool, error)
	EnsureCropType(ctx context.Context, name, description string) (int64, bool, error)
	EnsureUser(ctx context.Context, u models.User) (int64, bool, error)
	EnsureProducer(ctx context.Context, userID int64, phone string, districtID *int64) (int64, bool, error)
	EnsureParcel(ctx context.Context, p models.Parcel) (int64, bool, error)
	EnsureWarehouse(ctx context.Context, w models.Warehouse) (int64, bool, error)
	EnsureStock(ctx context.Context, warehouseID, cropTypeID int64, quantity decimal.Decimal) (bool, error)
	EnsureHarvest(ctx context.Context, parcelID, cropTypeID int64, quantity decimal.Decimal, date time.Time) (bool, error)
}

// PasswordHasher hashes seeded account passwords.
type PasswordHasher func(password string) (string, error)

// Summary counts the rows created by a run. A second run over the same data
// reports all zeros.
type Summary struct {
	Communes   int `json:"communes"`
	Districts  int `json:"districts"`
	CropTypes  int `json:"cropTypes"`
	Users      int `json:"users"`
	Producers  int `json:"producers"`
	Parcels    int `json:"parcels"`
	Warehouses int `json:"warehouses"`
	Stock      int `json:"stock"`
	Harvests   int `json:"harvests"`
}

// Total is the number of rows created across every table.
func (s Summary) Total() int {
	return s.Communes + s.Districts + s.CropTypes + s.Users + s.Producers +
		s.Parcels + s.Warehouses + s.Stock + s.Harvests
}

// Fields renders the summary for structured logging.
func (s Summary) Fields() map[string]interface{} {
	return map[string]interface{}{
		"communes":   s.Communes,
		"districts":  s.Districts,
		"crop_types": s.CropTypes,
		"users":      s.Users,
		"producers":  s.Producers,
		"parcels":    s.Parcels,
		"warehouses": s.Warehouses,
		"stock":      s.Stock,
		"harvests":   s.Harvests,
	}
}

type runner struct {
	store Store
	hash  PasswordHasher
	log   *logger.Logger
	sum   Summary

	communes   map[string]int64
	districts  map[string]int64
	crops      map[string]int64
	users      map[string]int64
	producers  map[string]int64
	parcels    map[string]int64
	warehouses map[string]int64
}

// Run applies data through store. References between items are by natural
// key (commune code, district name, username, parcel name, warehouse name);
// an unresolved reference aborts the run.
func Run(ctx context.Context, store Store, data Data, hash PasswordHasher, log *logger.Logger) (Summary, error) {
	if err := data.Validate(); err != nil {
		return Summary{}, err
	}
	r := &runner{
		store:      store,
		hash:       hash,
		log:        log,
		communes:   make(map[string]int64),
		districts:  make(map[string]int64),
		crops:      make(map[string]int64),
		users:      make(map[string]int64),
		producers:  make(map[string]int64),
		parcels:    make(map[string]int64),
		warehouses: make(map[string]int64),
	}

	steps := []struct {
		name string
		fn   func(context.Context, Data) error
	}{
		{"communes", r.communesStep},
		{"districts", r.districtsStep},
		{"crop_types", r.cropTypesStep},
		{"producers", r.producersStep},
		{"managers", r.managersStep},
		{"parcels", r.parcelsStep},
		{"warehouses", r.warehousesStep},
		{"stock", r.stockStep},
		{"harvests", r.harvestsStep},
	}
	for _, step := range steps {
		if err := step.fn(ctx, data); err != nil {
			return r.sum, fmt.Errorf("seed %s: %w", step.name, err)
		}
		r.log.Debug("Seed step complete", map[string]interface{}{"step": step.name})
	}

	r.log.Info("Seed complete", r.sum.Fields())
	return r.sum, nil
}

func count(created bool) int {
	if created {
		return 1
	}
	return 0
}

func (r *runner) communesStep(ctx context.Context, data Data) error {
	for _, c := range data.Communes {
		id, created, err := r.store.EnsureCommune(ctx, c.Name, c.Code)
		if err != nil {
			return err
		}
		r.communes[c.Code] = id
		r.sum.Communes += count(created)
	}
	return nil
}

func (r *runner) districtsStep(ctx context.Context, data Data) error {
	for _, d := range data.Districts {
		communeID, ok := r.communes[d.CommuneCode]
		if !ok {
			return fmt.Errorf("district %q references unknown commune %q", d.Name, d.CommuneCode)
		}
		id, created, err := r.store.EnsureDistrict(ctx, d.Name, d.Code, communeID)
		if err != nil {
			return err
		}
		r.districts[d.Name] = id
		r.sum.Districts += count(created)
	}
	return nil
}

func (r *runner) cropTypesStep(ctx context.Context, data Data) error {
	for _, c := range data.CropTypes {
		id, created, err := r.store.EnsureCropType(ctx, c.Name, c.Description)
		if err != nil {
			return err
		}
		r.crops[c.Name] = id
		r.sum.CropTypes += count(created)
	}
	return nil
}

func (r *runner) district(name string) (*int64, error) {
	if name == "" {
		return nil, nil
	}
	id, ok := r.districts[name]
	if !ok {
		return nil, fmt.Errorf("unknown district %q", name)
	}
	return &id, nil
}

// requiredDistrict resolves the district of a parcel or warehouse, which
// cannot be left empty.
func (r *runner) requiredDistrict(name string) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("district is required")
	}
	id, ok := r.districts[name]
	if !ok {
		return 0, fmt.Errorf("unknown district %q", name)
	}
	return id, nil
}

func (r *runner) ensureUser(ctx context.Context, a Account, role models.Role) (int64, error) {
	hash, err := r.hash(a.Password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password for %q: %w", a.Username, err)
	}
	id, created, err := r.store.EnsureUser(ctx, models.User{
		Username:     a.Username,
		PasswordHash: hash,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Email:        a.Email,
		Role:         role,
	})
	if err != nil {
		return 0, err
	}
	r.users[a.Username] = id
	r.sum.Users += count(created)
	return id, nil
}

func (r *runner) producersStep(ctx context.Context, data Data) error {
	for _, p := range data.Producers {
		districtID, err := r.district(p.District)
		if err != nil {
			return fmt.Errorf("producer %q: %w", p.Username, err)
		}
		userID, err := r.ensureUser(ctx, p.Account, models.RoleProducer)
		if err != nil {
			return err
		}
		id, created, err := r.store.EnsureProducer(ctx, userID, p.Phone, districtID)
		if err != nil {
			return err
		}
		r.producers[p.Username] = id
		r.sum.Producers += count(created)
	}
	return nil
}

func (r *runner) managersStep(ctx context.Context, data Data) error {
	for _, m := range data.Managers {
		if _, err := r.ensureUser(ctx, m, models.RoleManager); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) parcelsStep(ctx context.Context, data Data) error {
	for _, p := range data.Parcels {
		producerID, ok := r.producers[p.Producer]
		if !ok {
			return fmt.Errorf("parcel %q references unknown producer %q", p.Name, p.Producer)
		}
		districtID, err := r.requiredDistrict(p.District)
		if err != nil {
			return fmt.Errorf("parcel %q: %w", p.Name, err)
		}
		location, err := models.NewGeoPoint(p.Lat, p.Lng)
		if err != nil {
			return fmt.Errorf("parcel %q: %w", p.Name, err)
		}
		id, created, err := r.store.EnsureParcel(ctx, models.Parcel{
			ProducerID: producerID,
			DistrictID: districtID,
			Name:       p.Name,
			Area:       p.Area,
			Location:   location,
		})
		if err != nil {
			return err
		}
		r.parcels[p.Name] = id
		r.sum.Parcels += count(created)
	}
	return nil
}

func (r *runner) warehousesStep(ctx context.Context, data Data) error {
	for _, w := range data.Warehouses {
		districtID, err := r.requiredDistrict(w.District)
		if err != nil {
			return fmt.Errorf("warehouse %q: %w", w.Name, err)
		}
		var managerID *int64
		if w.Manager != "" {
			id, ok := r.users[w.Manager]
			if !ok {
				return fmt.Errorf("warehouse %q references unknown manager %q", w.Name, w.Manager)
			}
			managerID = &id
		}
		id, created, err := r.store.EnsureWarehouse(ctx, models.Warehouse{
			Name:           w.Name,
			DistrictID:     districtID,
			Capacity:       w.Capacity,
			AlertThreshold: w.AlertThreshold,
			ManagerID:      managerID,
		})
		if err != nil {
			return err
		}
		r.warehouses[w.Name] = id
		r.sum.Warehouses += count(created)
	}
	return nil
}

func (r *runner) crop(name string) (int64, error) {
	id, ok := r.crops[name]
	if !ok {
		return 0, fmt.Errorf("unknown crop type %q", name)
	}
	return id, nil
}

func (r *runner) stockStep(ctx context.Context, data Data) error {
	for _, s := range data.Stock {
		warehouseID, ok := r.warehouses[s.Warehouse]
		if !ok {
			return fmt.Errorf("stock references unknown warehouse %q", s.Warehouse)
		}
		cropID, err := r.crop(s.Crop)
		if err != nil {
			return err
		}
		created, err := r.store.EnsureStock(ctx, warehouseID, cropID, s.Quantity)
		if err != nil {
			return err
		}
		r.sum.Stock += count(created)
	}
	return nil
}

func (r *runner) harvestsStep(ctx context.Context, data Data) error {
	for _, h := range data.Harvests {
		parcelID, ok := r.parcels[h.Parcel]
		if !ok {
			return fmt.Errorf("harvest references unknown parcel %q", h.Parcel)
		}
		cropID, err := r.crop(h.Crop)
		if err != nil {
			return err
		}
		created, err := r.store.EnsureHarvest(ctx, parcelID, cropID, h.Quantity, h.Date)
		if err != nil {
			return err
		}
		r.sum.Harvests += count(created)
	}
	return nil
}
