package services

import (
	"context"
	"fmt"
	"time"

	"github.com/impresia/tiraje-backend/internal/catalog"
	redisclient "github.com/impresia/tiraje-backend/internal/clients/redis"
	"github.com/impresia/tiraje-backend/internal/domain"
	"github.com/impresia/tiraje-backend/internal/logger"
	"github.com/impresia/tiraje-backend/internal/repos"
)

const (
	pauseCauseCacheKey = "tiraje:pause_causes"
	pauseCauseCacheTTL = 10 * time.Minute
)

// PauseCauseService serves the pause-cause vocabulary the dashboard dropdown
// renders. The list changes rarely, so reads go through redis when available.
type PauseCauseService interface {
	List(ctx context.Context) ([]domain.PauseCause, error)
	// SeedFromCatalog upserts the configured vocabulary at startup.
	SeedFromCatalog(ctx context.Context, cat catalog.Catalog) error
}

type pauseCauseService struct {
	log   *logger.Logger
	repo  repos.PauseCauseRepo
	cache redisclient.Cache
}

// NewPauseCauseService accepts a nil cache; the service then reads straight
// from postgres.
func NewPauseCauseService(log *logger.Logger, repo repos.PauseCauseRepo, cache redisclient.Cache) PauseCauseService {
	return &pauseCauseService{
		log:   log.With("service", "PauseCauseService"),
		repo:  repo,
		cache: cache,
	}
}

func (ps *pauseCauseService) List(ctx context.Context) ([]domain.PauseCause, error) {
	if ps.cache != nil {
		var cached []domain.PauseCause
		hit, err := ps.cache.GetJSON(ctx, pauseCauseCacheKey, &cached)
		if err != nil {
			ps.log.Warn("Pause cause cache read failed, falling back to db", "error", err)
		} else if hit {
			return cached, nil
		}
	}

	causes, err := ps.repo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list pause causes: %w", err)
	}

	if ps.cache != nil {
		if err := ps.cache.SetJSON(ctx, pauseCauseCacheKey, causes, pauseCauseCacheTTL); err != nil {
			ps.log.Warn("Pause cause cache write failed", "error", err)
		}
	}
	return causes, nil
}

func (ps *pauseCauseService) SeedFromCatalog(ctx context.Context, cat catalog.Catalog) error {
	causes := make([]domain.PauseCause, 0, len(cat.PauseCauses))
	for _, c := range cat.PauseCauses {
		causes = append(causes, domain.PauseCause{Code: c.Code, Label: c.Label})
	}
	if err := ps.repo.Seed(ctx, nil, causes); err != nil {
		return fmt.Errorf("failed to seed pause causes: %w", err)
	}
	ps.log.Info("Pause cause vocabulary seeded", "count", len(causes))
	return nil
}
