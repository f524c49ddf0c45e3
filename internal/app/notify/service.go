// Package notify exposes the in-app notification inbox.
package notify

import (
	"context"
	"errors"

	"github.com/campusvote/halalan/internal/domain"
)

var ErrProfileNotFound = errors.New("profile not found")

type Service struct {
	notifications domain.NotificationRepository
	profiles      domain.ProfileRepository
}

func NewService(notifications domain.NotificationRepository, profiles domain.ProfileRepository) *Service {
	return &Service{
		notifications: notifications,
		profiles:      profiles,
	}
}

func (s *Service) resolve(ctx context.Context, identity domain.Identity) (domain.UserProfile, error) {
	profile, err := s.profiles.FindByUserID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.UserProfile{}, ErrProfileNotFound
		}
		return domain.UserProfile{}, err
	}
	return profile, nil
}

// List returns the caller's notifications, newest first.
func (s *Service) List(ctx context.Context, identity domain.Identity) ([]domain.Notification, error) {
	profile, err := s.resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.notifications.ListByRecipient(ctx, profile.ID)
}

func (s *Service) MarkRead(ctx context.Context, id domain.NotificationID) error {
	return s.notifications.MarkRead(ctx, id)
}

func (s *Service) MarkAllRead(ctx context.Context, identity domain.Identity) (int64, error) {
	profile, err := s.resolve(ctx, identity)
	if err != nil {
		return 0, err
	}
	return s.notifications.MarkAllRead(ctx, profile.ID)
}

// DeleteRead clears the caller's already-read notifications.
func (s *Service) DeleteRead(ctx context.Context, identity domain.Identity) (int64, error) {
	profile, err := s.resolve(ctx, identity)
	if err != nil {
		return 0, err
	}
	return s.notifications.DeleteRead(ctx, profile.ID)
}
