package service

import (
	"context"
	"errors"
)

type ResetService struct {
	exams    ExamStateRepository
	progress ProgressRepository
	profiles ProfileRepository
}

func NewResetService(
	exams ExamStateRepository,
	progress ProgressRepository,
	profiles ProfileRepository,
) *ResetService {
	return &ResetService{
		exams:    exams,
		progress: progress,
		profiles: profiles,
	}
}

// ResetUser deletes every stored document of a user.
func (s *ResetService) ResetUser(ctx context.Context, userID int64) error {
	return errors.Join(
		s.exams.Delete(ctx, userID),
		s.progress.Delete(ctx, userID),
		s.profiles.Delete(ctx, userID),
	)
}
