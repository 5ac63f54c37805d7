package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/agricoop/api/internal/export"
	"github.com/stwalsh4118/agricoop/api/internal/logger"
	"github.com/stwalsh4118/agricoop/api/internal/metrics"
	"github.com/stwalsh4118/agricoop/api/internal/models"
	"github.com/stwalsh4118/agricoop/api/internal/repository"
)

// RecordHarvestInput is a harvest entered by a producer. HarvestDate is
// taken as given.
type RecordHarvestInput struct {
	ParcelID    int64
	CropTypeID  int64
	Quantity    decimal.Decimal
	HarvestDate time.Time
}

// HarvestService records harvests and lists them with role-scoped visibility.
type HarvestService interface {
	// AvailableParcels returns the parcels the acting producer may record on.
	AvailableParcels(ctx context.Context, actor Actor) ([]models.Parcel, error)

	// RecordHarvest appends a harvest on one of the acting producer's parcels.
	// A parcel outside that set is ErrForbidden, even if it exists.
	RecordHarvest(ctx context.Context, actor Actor, input RecordHarvestInput) (*models.HarvestRecord, error)

	// ListOwn returns the acting producer's harvests, newest harvest date first.
	ListOwn(ctx context.Context, actor Actor) ([]models.HarvestRow, error)

	// ListAll returns every harvest matching filter.
	ListAll(ctx context.Context, actor Actor, filter models.HarvestFilter) ([]models.HarvestRow, error)

	// Export renders the harvests matching filter as an xlsx workbook.
	Export(ctx context.Context, actor Actor, filter models.HarvestFilter) (*bytes.Buffer, error)
}

type harvestService struct {
	producers repository.ProducerRepository
	parcels   repository.ParcelRepository
	harvests  repository.HarvestRepository
	reference repository.ReferenceRepository
	metrics   *metrics.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewHarvestService creates a new instance of HarvestService.
func NewHarvestService(
	producers repository.ProducerRepository,
	parcels repository.ParcelRepository,
	harvests repository.HarvestRepository,
	reference repository.ReferenceRepository,
	m *metrics.Metrics,
	log *logger.Logger,
) HarvestService {
	return &harvestService{
		producers: producers,
		parcels:   parcels,
		harvests:  harvests,
		reference: reference,
		metrics:   m,
		log:       log.WithComponent("harvests"),
		now:       time.Now,
	}
}

// producerFor resolves the producer profile of actor after checking capability.
func producerFor(ctx context.Context, producers repository.ProducerRepository, actor Actor, capability Capability) (*models.Producer, error) {
	if err := Authorize(actor, capability); err != nil {
		return nil, err
	}
	producer, err := producers.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get producer profile: %w", err)
	}
	if producer == nil {
		return nil, fmt.Errorf("%w: user %q is not registered as a producer", ErrForbidden, actor.Username)
	}
	return producer, nil
}

func (s *harvestService) AvailableParcels(ctx context.Context, actor Actor) ([]models.Parcel, error) {
	producer, err := producerFor(ctx, s.producers, actor, CapViewParcels)
	if err != nil {
		return nil, err
	}
	parcels, err := s.parcels.ListByProducer(ctx, producer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}
	return parcels, nil
}

func (s *harvestService) RecordHarvest(ctx context.Context, actor Actor, input RecordHarvestInput) (*models.HarvestRecord, error) {
	producer, err := producerFor(ctx, s.producers, actor, CapAddHarvest)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"producer_id":  producer.ID,
		"parcel_id":    input.ParcelID,
		"crop_type_id": input.CropTypeID,
		"quantity":     input.Quantity.String(),
	}

	if input.Quantity.IsNegative() {
		s.log.Warn("Rejected negative harvest quantity", fields)
		return nil, fmt.Errorf("%w: quantity must be >= 0, got %s", ErrValidation, input.Quantity)
	}

	crop, err := s.reference.CropType(ctx, input.CropTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get crop type: %w", err)
	}
	if crop == nil {
		return nil, fmt.Errorf("%w: crop type %d", ErrNotFound, input.CropTypeID)
	}

	parcel, err := s.parcels.FindForProducer(ctx, input.ParcelID, producer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get parcel: %w", err)
	}
	if parcel == nil {
		s.log.Warn("Rejected harvest on a parcel outside the producer's set", fields)
		return nil, fmt.Errorf("%w: parcel %d does not belong to producer %d", ErrForbidden, input.ParcelID, producer.ID)
	}

	rec, err := s.harvests.CreateForProducer(ctx, producer.ID, models.HarvestRecord{
		ParcelID:    input.ParcelID,
		CropTypeID:  input.CropTypeID,
		Quantity:    input.Quantity,
		HarvestDate: input.HarvestDate,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConstraint) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		s.log.Error("Failed to record harvest", err, fields)
		return nil, fmt.Errorf("failed to record harvest: %w", err)
	}
	if rec == nil {
		// Ownership changed between the lookup and the insert.
		s.log.Warn("Parcel left the producer's set before insert", fields)
		return nil, fmt.Errorf("%w: parcel %d does not belong to producer %d", ErrForbidden, input.ParcelID, producer.ID)
	}

	s.metrics.HarvestRecorded(crop.Name, rec.Quantity.InexactFloat64())
	fields["harvest_id"] = rec.ID
	fields["crop"] = crop.Name
	s.log.Info("Harvest recorded", fields)
	return rec, nil
}

func (s *harvestService) ListOwn(ctx context.Context, actor Actor) ([]models.HarvestRow, error) {
	producer, err := producerFor(ctx, s.producers, actor, CapViewOwnHarvests)
	if err != nil {
		return nil, err
	}
	rows, err := s.harvests.ListByProducer(ctx, producer.ID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list harvests: %w", err)
	}
	return rows, nil
}

func (s *harvestService) ListAll(ctx context.Context, actor Actor, filter models.HarvestFilter) ([]models.HarvestRow, error) {
	if err := Authorize(actor, CapViewAllHarvests); err != nil {
		return nil, err
	}
	return s.list(ctx, filter)
}

func (s *harvestService) list(ctx context.Context, filter models.HarvestFilter) ([]models.HarvestRow, error) {
	// No harvest can carry a crop outside the catalogue.
	if filter.CropTypeName != nil && !models.IsKnownCrop(*filter.CropTypeName) {
		s.log.Debug("Crop filter matches no crop type", map[string]interface{}{
			"crop_type": *filter.CropTypeName,
		})
		return []models.HarvestRow{}, nil
	}
	rows, err := s.harvests.List(ctx, filter, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list harvests: %w", err)
	}
	return rows, nil
}

func (s *harvestService) Export(ctx context.Context, actor Actor, filter models.HarvestFilter) (*bytes.Buffer, error) {
	if err := Authorize(actor, CapExportHarvests); err != nil {
		return nil, err
	}
	rows, err := s.list(ctx, filter)
	if err != nil {
		return nil, err
	}
	buf, err := export.HarvestWorkbook(rows, filter, s.now())
	if err != nil {
		s.log.Error("Failed to build harvest workbook", err, map[string]interface{}{"rows": len(rows)})
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}
	s.log.Info("Harvests exported", map[string]interface{}{
		"rows":  len(rows),
		"actor": actor.Username,
	})
	return buf, nil
}
