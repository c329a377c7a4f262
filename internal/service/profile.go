package service

import (
	"context"
	"fmt"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/internal/repository"
)

type ProfileService struct {
	repository ProfileRepository
}

func NewProfileService(repository ProfileRepository) *ProfileService {
	return &ProfileService{repository: repository}
}

func (s *ProfileService) Get(ctx context.Context, userID int64) (*entities.Profile, error) {
	return s.repository.Get(ctx, userID)
}

// SetName stores the display name, truncated to 120 characters.
func (s *ProfileService) SetName(ctx context.Context, userID int64, name string) error {
	return s.repository.Update(ctx, userID, func(p *entities.Profile) error {
		p.SetName(name)
		return nil
	})
}

// SetTheme stores the theme; unknown themes become "system".
func (s *ProfileService) SetTheme(ctx context.Context, userID int64, theme string) error {
	return s.repository.Update(ctx, userID, func(p *entities.Profile) error {
		p.SetTheme(theme)
		return nil
	})
}

// AddDonationCode stores a donation code once.
func (s *ProfileService) AddDonationCode(ctx context.Context, userID int64, code string) (Outcome, error) {
	outcome := OutcomeNoop
	err := s.repository.Update(ctx, userID, func(p *entities.Profile) error {
		if !p.AddDonationCode(code) {
			return repository.ErrSkipWrite
		}
		outcome = OutcomeApplied
		return nil
	})
	if err != nil {
		return OutcomeNoop, fmt.Errorf("add donation code: %w", err)
	}
	return outcome, nil
}

// EnsureName sets the display name only if none is stored yet.
func (s *ProfileService) EnsureName(ctx context.Context, userID int64, name string) error {
	return s.repository.Update(ctx, userID, func(p *entities.Profile) error {
		if p.Name != "" || name == "" {
			return repository.ErrSkipWrite
		}
		p.SetName(name)
		return nil
	})
}

func (s *ProfileService) Reset(ctx context.Context, userID int64) error {
	if err := s.repository.Delete(ctx, userID); err != nil {
		return fmt.Errorf("reset profile: %w", err)
	}
	return nil
}
