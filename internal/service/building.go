// Package service holds application logic that spans repositories, the
// session and the message broker.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/wayfind-ar/internal/model"
	"github.com/iliyamo/wayfind-ar/internal/queue"
	"github.com/iliyamo/wayfind-ar/internal/repository"
)

// Invalidator drops cached building responses after a write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// BuildingService wraps BuildingRepo writes with cache invalidation and a
// building.changed event. Reads go straight to the repository.
type BuildingService struct {
	Repo      *repository.BuildingRepo
	publisher EventPublisher
	cache     Invalidator
	log       *zap.Logger
}

// NewBuildingService accepts nil publisher and cache.
func NewBuildingService(repo *repository.BuildingRepo, pub EventPublisher, cache Invalidator, log *zap.Logger) *BuildingService {
	return &BuildingService{Repo: repo, publisher: pub, cache: cache, log: log}
}

func (s *BuildingService) Create(ctx context.Context, b *model.Building, by uint64) error {
	if err := s.Repo.Create(ctx, b); err != nil {
		return err
	}
	s.changed(ctx, b.ID, b.Name, queue.ActionCreated, by)
	return nil
}

func (s *BuildingService) Update(ctx context.Context, b *model.Building, by uint64) error {
	if err := s.Repo.Update(ctx, b); err != nil {
		return err
	}
	s.changed(ctx, b.ID, b.Name, queue.ActionUpdated, by)
	return nil
}

func (s *BuildingService) Delete(ctx context.Context, id, by uint64) error {
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, id, b.Name, queue.ActionDeleted, by)
	return nil
}

// changed is best-effort: the write already happened.
func (s *BuildingService) changed(ctx context.Context, id uint64, name, action string, by uint64) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("building cache invalidation failed", zap.Error(err))
		}
	}
	if s.publisher == nil {
		return
	}
	ev := queue.BuildingChangedEvent{
		BuildingID: id,
		Name:       name,
		Action:     action,
		ChangedBy:  by,
		ChangedAt:  time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, queue.RoutingBuildingChanged, ev); err != nil {
		s.log.Warn("building.changed event not published", zap.Uint64("building_id", id), zap.Error(err))
	}
}
