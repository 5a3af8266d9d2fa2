package service

import (
	"context"
	"errors"

	"github.com/iliyamo/wayfind-ar/internal/model"
	"github.com/iliyamo/wayfind-ar/internal/repository"
	"github.com/iliyamo/wayfind-ar/internal/session"
)

// ErrBuildingInactive is returned when navigating to a hidden building.
var ErrBuildingInactive = errors.New("building is not active")

// DestinationTracker remembers, per session, which building the user is
// navigating to.
type DestinationTracker struct {
	buildings *repository.BuildingRepo
}

func NewDestinationTracker(repo *repository.BuildingRepo) *DestinationTracker {
	return &DestinationTracker{buildings: repo}
}

// SetDestination validates that the building exists and is active and
// stores it in the session.
func (t *DestinationTracker) SetDestination(ctx context.Context, s *session.Session, buildingID uint64) (*model.Building, error) {
	b, err := t.buildings.GetByID(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	if !b.IsActive {
		return nil, ErrBuildingInactive
	}
	s.SetDestination(b.ID)
	return b, nil
}

// Current returns the destination building, or nil when none is set. A
// destination that was deleted or deactivated since is cleared.
func (t *DestinationTracker) Current(ctx context.Context, s *session.Session) (*model.Building, error) {
	id := s.Data().Destination
	if id == 0 {
		return nil, nil
	}
	b, err := t.buildings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrBuildingNotFound) || (err == nil && !b.IsActive) {
		s.SetDestination(0)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Clear forgets the destination.
func (t *DestinationTracker) Clear(s *session.Session) {
	s.SetDestination(0)
}
