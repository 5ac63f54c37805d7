package services

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/agricoop/api/internal/logger"
	"github.com/stwalsh4118/agricoop/api/internal/models"
	"github.com/stwalsh4118/agricoop/api/internal/repository"
)

// Dashboard sizes.
const (
	ProducerRecentHarvests = 5
	ManagerRecentHarvests  = 10
	ManagerTopZones        = 5
)

// ReportService builds the read-only dashboards.
type ReportService interface {
	// ProducerDashboard summarizes the acting producer's own parcels and harvests.
	ProducerDashboard(ctx context.Context, actor Actor) (*models.ProducerDashboard, error)

	// ManagerDashboard is the cooperative-wide view.
	ManagerDashboard(ctx context.Context, actor Actor) (*models.ManagerDashboard, error)

	// PublicStats are the figures shown to anonymous visitors.
	PublicStats(ctx context.Context) (*models.PublicStats, error)
}

type reportService struct {
	reports   repository.ReportRepository
	producers repository.ProducerRepository
	harvests  repository.HarvestRepository
	inventory InventoryService
	log       *logger.Logger
}

// NewReportService creates a new instance of ReportService. Warehouse
// figures come from inventory so both views apply the same rules.
func NewReportService(
	reports repository.ReportRepository,
	producers repository.ProducerRepository,
	harvests repository.HarvestRepository,
	inventory InventoryService,
	log *logger.Logger,
) ReportService {
	return &reportService{
		reports:   reports,
		producers: producers,
		harvests:  harvests,
		inventory: inventory,
		log:       log.WithComponent("reports"),
	}
}

func (s *reportService) ProducerDashboard(ctx context.Context, actor Actor) (*models.ProducerDashboard, error) {
	producer, err := producerFor(ctx, s.producers, actor, CapViewOwnHarvests)
	if err != nil {
		return nil, err
	}

	totals, err := s.reports.ProducerTotals(ctx, producer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load producer totals: %w", err)
	}
	byCrop, err := s.reports.ProducerCropTotals(ctx, producer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load crop totals: %w", err)
	}
	recent, err := s.harvests.ListByProducer(ctx, producer.ID, ProducerRecentHarvests)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent harvests: %w", err)
	}

	return &models.ProducerDashboard{
		Producer:       *producer,
		ParcelCount:    totals.Parcels,
		HarvestCount:   totals.Harvests,
		ByCrop:         nonNil(byCrop),
		RecentHarvests: nonNil(recent),
		TotalQuantity:  totals.TotalQuantity,
	}, nil
}

func (s *reportService) ManagerDashboard(ctx context.Context, actor Actor) (*models.ManagerDashboard, error) {
	if err := Authorize(actor, CapViewReports); err != nil {
		return nil, err
	}

	totals, err := s.reports.CooperativeTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cooperative totals: %w", err)
	}
	statuses, err := s.inventory.ListWarehouses(ctx, actor)
	if err != nil {
		return nil, err
	}
	stockByCrop, err := s.reports.StockByCrop(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stock by crop: %w", err)
	}
	recent, err := s.harvests.List(ctx, models.HarvestFilter{}, ManagerRecentHarvests)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent harvests: %w", err)
	}
	zones, err := s.reports.TopZones(ctx, ManagerTopZones)
	if err != nil {
		return nil, fmt.Errorf("failed to load top zones: %w", err)
	}

	low := make([]models.WarehouseStatus, 0)
	for _, st := range statuses {
		if st.LowStock {
			low = append(low, st)
		}
	}
	if len(low) > 0 {
		s.log.Debug("Warehouses below alert threshold", map[string]interface{}{"count": len(low)})
	}

	return &models.ManagerDashboard{
		ActiveProducers:    totals.ActiveProducers,
		HarvestCount:       totals.Harvests,
		WarehouseCount:     totals.Warehouses,
		LowStockWarehouses: low,
		AlertCount:         len(low),
		StockByCrop:        nonNil(stockByCrop),
		RecentHarvests:     nonNil(recent),
		TopZones:           nonNil(zones),
	}, nil
}

func (s *reportService) PublicStats(ctx context.Context) (*models.PublicStats, error) {
	totals, err := s.reports.CooperativeTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cooperative totals: %w", err)
	}
	return &models.PublicStats{
		ActiveProducers:  totals.ActiveProducers,
		Communes:         totals.Communes,
		TotalHarvestedKg: totals.TotalHarvested,
	}, nil
}

// nonNil keeps empty listings serialized as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
