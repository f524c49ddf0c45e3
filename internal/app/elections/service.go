// Package elections implements the election directory: creation, listing,
// lifecycle transitions and the current-election flag.
package elections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusvote/halalan/internal/domain"
	"github.com/campusvote/halalan/internal/platform/ids"
)

var (
	ErrElectionInvalid   = errors.New("election invalid")
	ErrElectionNotFound  = errors.New("election not found")
	ErrElectionCompleted = errors.New("election already completed")
)

// Service owns the election lifecycle rules and delegates persistence to
// the repository.
type Service struct {
	elections domain.ElectionRepository
	clock     domain.Clock
	ids       *ids.Generator
}

func NewService(elections domain.ElectionRepository, clock domain.Clock, idsGen *ids.Generator) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	return &Service{
		elections: elections,
		clock:     clock,
		ids:       idsGen,
	}
}

type CreateInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
}

// Create inserts a new election as the current one. The repository clears
// the flag on every other election in the same transaction, so the
// directory never ends up with two current elections or none.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Election, error) {
	if in.Title == "" {
		return domain.Election{}, fmt.Errorf("%w: title required", ErrElectionInvalid)
	}

	now := s.clock.Now()
	if in.StartDate.IsZero() {
		in.StartDate = now
	}
	if in.EndDate.IsZero() || in.EndDate.Before(in.StartDate) {
		return domain.Election{}, fmt.Errorf("%w: invalid date range", ErrElectionInvalid)
	}

	e := domain.Election{
		ID:          domain.ElectionID(s.ids.New()),
		Title:       in.Title,
		Description: in.Description,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Status:      domain.ElectionUpcoming,
		IsCurrent:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.elections.CreateCurrent(ctx, e); err != nil {
		return domain.Election{}, err
	}
	return e, nil
}

// List returns every election, current first, then newest created.
func (s *Service) List(ctx context.Context) ([]domain.Election, error) {
	return s.elections.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id domain.ElectionID) (domain.Election, error) {
	e, err := s.elections.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Election{}, ErrElectionNotFound
		}
		return domain.Election{}, err
	}
	return e, nil
}

func (s *Service) Current(ctx context.Context) ([]domain.Election, error) {
	return s.elections.ListCurrent(ctx)
}

func (s *Service) UpdateStatus(ctx context.Context, id domain.ElectionID, status domain.ElectionStatus, isCurrent *bool) error {
	switch status {
	case domain.ElectionUpcoming, domain.ElectionOngoing, domain.ElectionCompleted:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrElectionInvalid, status)
	}

	if err := s.elections.UpdateStatus(ctx, id, status, isCurrent); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrElectionNotFound
		}
		return err
	}
	return nil
}

// ExtendEndDate moves the end timestamp of an election that has not
// completed yet.
func (s *Service) ExtendEndDate(ctx context.Context, id domain.ElectionID, newEndDate time.Time) error {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e.Status == domain.ElectionCompleted {
		return ErrElectionCompleted
	}
	if newEndDate.IsZero() {
		return fmt.Errorf("%w: end date required", ErrElectionInvalid)
	}

	if err := s.elections.UpdateEndDate(ctx, id, newEndDate); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrElectionNotFound
		}
		return err
	}
	return nil
}

// ForceEnd marks the election completed regardless of its end date.
func (s *Service) ForceEnd(ctx context.Context, id domain.ElectionID) error {
	if err := s.elections.UpdateStatus(ctx, id, domain.ElectionCompleted, nil); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrElectionNotFound
		}
		return err
	}
	return nil
}

// IsActive reports whether an election still accepts activity.
func IsActive(e domain.Election) bool {
	return e.Status == domain.ElectionOngoing || e.Status == domain.ElectionUpcoming
}

// IsPastEndDate reports whether the current election's end date has
// passed. It always reads fresh state; with no current election it
// reports false.
func (s *Service) IsPastEndDate(ctx context.Context) (bool, error) {
	current, err := s.elections.ListCurrent(ctx)
	if err != nil {
		return false, err
	}
	if len(current) == 0 {
		return false, nil
	}
	return current[0].EndDate.Before(s.clock.Now()), nil
}
