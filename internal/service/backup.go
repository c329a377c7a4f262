package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/internal/repository"
)

// BackupVersion is the version written into exported snapshots.
const BackupVersion = 1

var ErrInvalidBackup = errors.New("invalid backup")

// Backup is the user-facing snapshot of profile and study progress.
type Backup struct {
	Version    int             `json:"version"`
	ExportedAt time.Time       `json:"exportedAt"`
	Profile    json.RawMessage `json:"profile"`
	Progress   json.RawMessage `json:"progress"`
}

// BackupService exports and imports user snapshots.
type BackupService struct {
	progress ProgressRepository
	profiles ProfileRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewBackupService creates a new BackupService.
func NewBackupService(progress ProgressRepository, profiles ProfileRepository, logger *zap.Logger) *BackupService {
	return &BackupService{
		progress: progress,
		profiles: profiles,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the time source.
func (s *BackupService) SetClock(now func() time.Time) {
	s.now = now
}

// Export returns the snapshot of a user as indented JSON.
func (s *BackupService) Export(ctx context.Context, userID int64) ([]byte, error) {
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	progress, err := s.progress.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	profileJSON, err := repository.EncodeProfile(profile)
	if err != nil {
		return nil, fmt.Errorf("export profile: %w", err)
	}
	progressJSON, err := repository.EncodeProgress(progress)
	if err != nil {
		return nil, fmt.Errorf("export progress: %w", err)
	}

	return json.MarshalIndent(Backup{
		Version:    BackupVersion,
		ExportedAt: s.now().UTC(),
		Profile:    profileJSON,
		Progress:   progressJSON,
	}, "", "  ")
}

// Import sanitizes a snapshot and overwrites the halves it contains.
// Malformed JSON is an error; invalid fields inside a half fall back to defaults.
func (s *BackupService) Import(ctx context.Context, userID int64, data []byte) error {
	doc, err := repository.ParseDocument(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBackup, err)
	}

	profileObj, hasProfile := doc["profile"].(map[string]any)
	progressObj, hasProgress := doc["progress"].(map[string]any)
	if !hasProfile && !hasProgress {
		return fmt.Errorf("%w: neither profile nor progress present", ErrInvalidBackup)
	}

	if hasProfile {
		next := repository.SanitizeProfile(profileObj)
		err := s.profiles.Update(ctx, userID, func(p *entities.Profile) error {
			*p = *next
			return nil
		})
		if err != nil {
			return fmt.Errorf("import profile: %w", err)
		}
	}

	if hasProgress {
		next := repository.SanitizeProgress(progressObj)
		err := s.progress.Update(ctx, userID, func(p *entities.StudyProgress) error {
			*p = *next
			return nil
		})
		if err != nil {
			return fmt.Errorf("import progress: %w", err)
		}
	}

	s.logger.Info("backup imported",
		zap.Int64("user_id", userID),
		zap.Bool("profile", hasProfile),
		zap.Bool("progress", hasProgress),
	)
	return nil
}
