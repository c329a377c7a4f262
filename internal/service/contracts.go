package service

import (
	"context"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
)

type QuestionRepository interface {
	All(ctx context.Context) ([]entities.Question, error)
	ByDomain(ctx context.Context, domain entities.DomainID) ([]entities.Question, error)
}

type FlashcardRepository interface {
	All(ctx context.Context) ([]entities.Flashcard, error)
	GetByID(ctx context.Context, id string) (entities.Flashcard, error)
}

// ExamStateRepository persists the exam slice of each user.
// Update must be atomic per user; returning repository.ErrSkipWrite from fn skips the write.
type ExamStateRepository interface {
	Get(ctx context.Context, userID int64) (*entities.ExamState, error)
	Update(ctx context.Context, userID int64, fn func(*entities.ExamState) error) error
	Delete(ctx context.Context, userID int64) error
	Users(ctx context.Context) ([]int64, error)
}

type ProgressRepository interface {
	Get(ctx context.Context, userID int64) (*entities.StudyProgress, error)
	Update(ctx context.Context, userID int64, fn func(*entities.StudyProgress) error) error
	Delete(ctx context.Context, userID int64) error
}

type ProfileRepository interface {
	Get(ctx context.Context, userID int64) (*entities.Profile, error)
	Update(ctx context.Context, userID int64, fn func(*entities.Profile) error) error
	Delete(ctx context.Context, userID int64) error
}

// ExamNotifier tells a user that their exam was submitted because time ran out.
type ExamNotifier interface {
	NotifyExamExpired(userID int64, entry entities.HistoryEntry) error
}
