package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stwalsh4118/agricoop/api/internal/cache"
	"github.com/stwalsh4118/agricoop/api/internal/logger"
	"github.com/stwalsh4118/agricoop/api/internal/models"
	"github.com/stwalsh4118/agricoop/api/internal/repository"
)

// ReferenceService serves the read-mostly reference data through a cache.
// Cache failures are logged and fall through to the database.
type ReferenceService interface {
	CropTypes(ctx context.Context) ([]models.CropType, error)
	Communes(ctx context.Context) ([]models.Commune, error)
	Districts(ctx context.Context) ([]models.District, error)

	// Invalidate drops every cached reference listing.
	Invalidate(ctx context.Context) error
}

type referenceService struct {
	repo  repository.ReferenceRepository
	cache cache.Store
	ttl   time.Duration
	log   *logger.Logger
}

// NewReferenceService creates a new instance of ReferenceService.
func NewReferenceService(repo repository.ReferenceRepository, store cache.Store, ttl time.Duration, log *logger.Logger) ReferenceService {
	if store == nil {
		store = cache.NoopStore{}
	}
	return &referenceService{
		repo:  repo,
		cache: store,
		ttl:   ttl,
		log:   log.WithComponent("reference"),
	}
}

func (s *referenceService) CropTypes(ctx context.Context) ([]models.CropType, error) {
	crops, err := cached(ctx, s, cache.KeyCropTypes, s.repo.CropTypes)
	if err != nil {
		return nil, err
	}
	for i := range crops {
		crops[i].Label = models.CropLabel(crops[i].Name)
	}
	return crops, nil
}

func (s *referenceService) Communes(ctx context.Context) ([]models.Commune, error) {
	return cached(ctx, s, cache.KeyCommunes, s.repo.Communes)
}

func (s *referenceService) Districts(ctx context.Context) ([]models.District, error) {
	return cached(ctx, s, cache.KeyDistricts, s.repo.Districts)
}

func (s *referenceService) Invalidate(ctx context.Context) error {
	if err := s.cache.Delete(ctx, cache.ReferenceKeys...); err != nil {
		return fmt.Errorf("failed to invalidate reference cache: %w", err)
	}
	return nil
}

func cached[T any](ctx context.Context, s *referenceService, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("Cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	if ok {
		var items []T
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
		s.log.Warn("Discarding undecodable cache entry", map[string]interface{}{"key": key})
	}

	items, err := load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}

	if raw, err := json.Marshal(items); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			s.log.Warn("Cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return items, nil
}
