package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/internal/repository"
)

type ProgressService struct {
	repository ProgressRepository
	exams      ExamStateRepository
	cards      FlashcardRepository
	logger     *zap.Logger
	now        func() time.Time
}

func NewProgressService(
	repository ProgressRepository,
	exams ExamStateRepository,
	cards FlashcardRepository,
	logger *zap.Logger,
) *ProgressService {
	return &ProgressService{
		repository: repository,
		exams:      exams,
		cards:      cards,
		logger:     logger,
		now:        time.Now,
	}
}

// SetClock replaces the time source.
func (s *ProgressService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *ProgressService) Get(ctx context.Context, userID int64) (*entities.StudyProgress, error) {
	return s.repository.Get(ctx, userID)
}

// MarkQuestionCompleted records a practiced question.
func (s *ProgressService) MarkQuestionCompleted(ctx context.Context, userID int64, questionID string) (Outcome, error) {
	return s.update(ctx, userID, "mark_question_completed", func(p *entities.StudyProgress) bool {
		return p.MarkQuestionCompleted(questionID)
	})
}

// MarkMaterialRead records a read study material.
func (s *ProgressService) MarkMaterialRead(ctx context.Context, userID int64, materialID string) (Outcome, error) {
	return s.update(ctx, userID, "mark_material_read", func(p *entities.StudyProgress) bool {
		return p.MarkMaterialRead(materialID)
	})
}

// SetFlashcardRating stores a 1-5 self-rating for a card.
func (s *ProgressService) SetFlashcardRating(ctx context.Context, userID int64, cardID string, rating int) (Outcome, error) {
	return s.update(ctx, userID, "set_flashcard_rating", func(p *entities.StudyProgress) bool {
		return p.SetFlashcardRating(cardID, rating)
	})
}

// Reset wipes study progress. Exams are reset separately.
func (s *ProgressService) Reset(ctx context.Context, userID int64) error {
	if err := s.repository.Delete(ctx, userID); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	return nil
}

type ProgressSummary struct {
	CompletedQuestions int
	ReadMaterials      int
	Flashcards         BoxDistribution
	DueFlashcards      int

	ExamsTaken   int
	ExamsPassed  int
	LastScore    *entities.ExamResults
	BestScore    int
	AverageScore float64 // mean percentage over history
}

// GetProgressSummary collects study and exam statistics for a user.
func (s *ProgressService) GetProgressSummary(ctx context.Context, userID int64) (*ProgressSummary, error) {
	p, err := s.repository.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	cards, err := s.cards.All(ctx)
	if err != nil {
		return nil, err
	}
	state, err := s.exams.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	summary := &ProgressSummary{
		CompletedQuestions: len(p.CompletedQuestions),
		ReadMaterials:      len(p.ReadMaterials),
		Flashcards:         BoxDistribution{Total: len(cards)},
	}

	for _, c := range cards {
		e, ok := p.FlashcardBoxes[c.ID]
		if !ok {
			summary.Flashcards.Unreviewed++
			summary.DueFlashcards++
			continue
		}
		summary.Flashcards.Boxes[entities.ClampBox(e.Box)]++
		if e.IsDue(now) {
			summary.DueFlashcards++
		}
	}
	summary.Flashcards.Mastered = summary.Flashcards.Boxes[entities.MaxBox]

	var pctSum float64
	for _, h := range state.History {
		if h.Results == nil {
			continue
		}
		summary.ExamsTaken++
		if h.Results.Passed {
			summary.ExamsPassed++
		}
		summary.BestScore = max(summary.BestScore, h.Results.TotalScore)
		pctSum += h.Results.PercentageScore
		summary.LastScore = h.Results
	}
	if summary.ExamsTaken > 0 {
		summary.AverageScore = math.Round(pctSum/float64(summary.ExamsTaken)*10) / 10
	}

	return summary, nil
}

func (s *ProgressService) update(
	ctx context.Context, userID int64, op string, fn func(*entities.StudyProgress) bool,
) (Outcome, error) {
	outcome := OutcomeNoop
	err := s.repository.Update(ctx, userID, func(p *entities.StudyProgress) error {
		if !fn(p) {
			return repository.ErrSkipWrite
		}
		outcome = OutcomeApplied
		return nil
	})
	if err != nil {
		return OutcomeNoop, fmt.Errorf("%s: %w", op, err)
	}
	if !outcome.Applied() {
		s.logger.Debug("progress update ignored",
			zap.String("op", op),
			zap.Int64("user_id", userID),
		)
	}
	return outcome, nil
}
