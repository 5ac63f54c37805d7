package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/agricoop/api/internal/cache"
	"github.com/stwalsh4118/agricoop/api/internal/logger"
	"github.com/stwalsh4118/agricoop/api/internal/models"
	"github.com/stwalsh4118/agricoop/api/internal/repository"
)

// CreateParcelInput describes a parcel registered by a manager. DistrictID is
// required. Latitude and Longitude are optional but must be given together.
type CreateParcelInput struct {
	ProducerID int64
	DistrictID int64
	Name       string
	Area       decimal.Decimal
	Latitude   *float64
	Longitude  *float64
}

// ParcelService defines the interface for parcel business logic operations.
type ParcelService interface {
	// Create registers a parcel for a producer.
	// Returns ErrValidation for a missing district, an area below
	// models.MinParcelArea or bad coordinates.
	// Returns ErrNotFound if the producer or district does not exist.
	// Returns ErrConflict if the producer already has a parcel with that name.
	Create(ctx context.Context, actor Actor, input CreateParcelInput) (*models.Parcel, error)

	// ProducerGeoJSON returns the acting producer's located parcels as a
	// GeoJSON FeatureCollection. Parcels without coordinates are omitted.
	ProducerGeoJSON(ctx context.Context, actor Actor) (*geojson.FeatureCollection, error)
}

// parcelService is the concrete implementation of ParcelService.
type parcelService struct {
	repo      repository.ParcelRepository
	producers repository.ProducerRepository
	reference repository.ReferenceRepository
	cache     cache.Store
	log       *logger.Logger
}

// NewParcelService creates a new instance of ParcelService. The store holds
// the cached district listing, whose parcel counts change on every insert.
func NewParcelService(
	repo repository.ParcelRepository,
	producers repository.ProducerRepository,
	reference repository.ReferenceRepository,
	store cache.Store,
	log *logger.Logger,
) ParcelService {
	if store == nil {
		store = cache.NoopStore{}
	}
	return &parcelService{
		repo:      repo,
		producers: producers,
		reference: reference,
		cache:     store,
		log:       log.WithComponent("parcels"),
	}
}

// Create validates the input, checks the referenced rows and inserts the parcel.
func (s *parcelService) Create(ctx context.Context, actor Actor, input CreateParcelInput) (*models.Parcel, error) {
	if err := Authorize(actor, CapManageParcels); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: parcel name is required", ErrValidation)
	}

	if input.DistrictID <= 0 {
		return nil, fmt.Errorf("%w: district is required", ErrValidation)
	}

	// Validate area
	if input.Area.LessThan(models.MinParcelArea) {
		s.log.Warn("Invalid parcel area provided", map[string]interface{}{
			"producer_id": input.ProducerID,
			"area":        input.Area.String(),
		})
		return nil, fmt.Errorf("%w: area must be at least %s ha, got %s",
			ErrValidation, models.MinParcelArea, input.Area)
	}

	// Validate coordinates
	location, err := models.NewGeoPoint(input.Latitude, input.Longitude)
	if err != nil {
		s.log.Warn("Invalid coordinates provided", map[string]interface{}{
			"producer_id": input.ProducerID,
			"lat":         input.Latitude,
			"lng":         input.Longitude,
		})
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	producer, err := s.producers.Get(ctx, input.ProducerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get producer: %w", err)
	}
	if producer == nil {
		return nil, fmt.Errorf("%w: producer %d", ErrNotFound, input.ProducerID)
	}

	district, err := s.reference.District(ctx, input.DistrictID)
	if err != nil {
		return nil, fmt.Errorf("failed to get district: %w", err)
	}
	if district == nil {
		return nil, fmt.Errorf("%w: district %d", ErrNotFound, input.DistrictID)
	}

	parcel, err := s.repo.Create(ctx, models.Parcel{
		ProducerID: producer.ID,
		DistrictID: input.DistrictID,
		Name:       name,
		Area:       input.Area,
		Location:   location,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: producer %d already has a parcel named %q",
				ErrConflict, producer.ID, name)
		}
		s.log.Error("Failed to create parcel", err, map[string]interface{}{
			"producer_id": producer.ID,
			"name":        name,
		})
		return nil, fmt.Errorf("failed to create parcel: %w", err)
	}

	// The parcel is committed; a stale listing expires with its TTL.
	if err := s.cache.Delete(ctx, cache.KeyDistricts); err != nil {
		s.log.Warn("Failed to invalidate district listing", map[string]interface{}{
			"parcel_id": parcel.ID,
			"error":     err.Error(),
		})
	}

	s.log.Info("Parcel created", map[string]interface{}{
		"parcel_id":   parcel.ID,
		"producer_id": producer.ID,
		"area":        parcel.Area.String(),
		"actor":       actor.Username,
	})

	return parcel, nil
}

// ProducerGeoJSON lists the acting producer's parcels and renders the located ones.
func (s *parcelService) ProducerGeoJSON(ctx context.Context, actor Actor) (*geojson.FeatureCollection, error) {
	producer, err := producerFor(ctx, s.producers, actor, CapViewParcels)
	if err != nil {
		return nil, err
	}

	parcels, err := s.repo.ListByProducer(ctx, producer.ID)
	if err != nil {
		s.log.Error("Failed to list parcels", err, map[string]interface{}{
			"producer_id": producer.ID,
		})
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}

	fc := models.ParcelFeatureCollection(parcels)
	if bound, ok := models.Bounds(parcels); ok {
		fc.BBox = geojson.NewBBox(bound)
	}

	s.log.Debug("Parcel features built", map[string]interface{}{
		"producer_id": producer.ID,
		"parcels":     len(parcels),
		"features":    len(fc.Features),
	})

	return fc, nil
}
