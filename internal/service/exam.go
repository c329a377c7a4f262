package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/internal/repository"
)

var (
	ErrNoQuestionsAvailable = errors.New("no questions available")
	ErrNoActiveExam         = errors.New("no active exam")
)

// Outcome tells whether a mutation changed the exam or was ignored.
type Outcome int

const (
	OutcomeNoop Outcome = iota
	OutcomeApplied
)

func (o Outcome) String() string {
	if o == OutcomeApplied {
		return "applied"
	}
	return "noop"
}

// Applied reports whether the mutation changed state.
func (o Outcome) Applied() bool {
	return o == OutcomeApplied
}

// ExamService runs timed exam sessions, one active session per user.
// Mutations that do not apply (no active exam, submitted exam, bad index)
// are reported as OutcomeNoop and never written.
type ExamService struct {
	repo     ExamStateRepository
	bank     QuestionRepository
	selector *QuestionSelector
	duration time.Duration
	logger   *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewExamService creates a new ExamService.
func NewExamService(
	repo ExamStateRepository,
	bank QuestionRepository,
	selector *QuestionSelector,
	duration time.Duration,
	logger *zap.Logger,
) *ExamService {
	if duration <= 0 {
		duration = entities.ExamDuration
	}
	return &ExamService{
		repo:     repo,
		bank:     bank,
		selector: selector,
		duration: duration,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return "exam-" + uuid.NewString() },
	}
}

// SetClock replaces the time source.
func (s *ExamService) SetClock(now func() time.Time) {
	s.now = now
}

// Duration returns the time allowed for one exam.
func (s *ExamService) Duration() time.Duration {
	return s.duration
}

// Start draws a new exam and makes it the active session, replacing any
// previous one. On error the stored state is left untouched.
func (s *ExamService) Start(ctx context.Context, userID int64) (*entities.ExamSession, error) {
	bank, err := s.bank.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}
	if len(bank) == 0 {
		return nil, ErrNoQuestionsAvailable
	}

	questions, err := s.selector.Select(bank)
	if err != nil {
		s.logger.Warn("cannot start exam",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	session := entities.NewExamSession(s.newID(), questions, s.now())

	err = s.repo.Update(ctx, userID, func(state *entities.ExamState) error {
		state.Active = session
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("start exam: %w", err)
	}

	s.logger.Info("exam started",
		zap.Int64("user_id", userID),
		zap.String("exam_id", session.ID),
		zap.Int("questions", len(questions)),
	)

	return session, nil
}

// Active returns the active session, or ErrNoActiveExam.
func (s *ExamService) Active(ctx context.Context, userID int64) (*entities.ExamSession, error) {
	state, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state.Active == nil {
		return nil, ErrNoActiveExam
	}
	return state.Active, nil
}

// History returns the summaries of recent submitted exams, oldest first.
func (s *ExamService) History(ctx context.Context, userID int64) ([]entities.HistoryEntry, error) {
	state, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return state.History, nil
}

// Remaining returns the time left in the active exam.
func (s *ExamService) Remaining(ctx context.Context, userID int64) (time.Duration, error) {
	session, err := s.Active(ctx, userID)
	if err != nil {
		return 0, err
	}
	return session.Remaining(s.now(), s.duration), nil
}

// SetAnswer records the chosen option for a question.
func (s *ExamService) SetAnswer(ctx context.Context, userID int64, questionID, optionID string) (Outcome, error) {
	return s.mutate(ctx, userID, "set_answer", func(e *entities.ExamSession, _ time.Time) bool {
		return e.SetAnswer(questionID, optionID)
	})
}

// ToggleFlag marks or unmarks a question for review.
func (s *ExamService) ToggleFlag(ctx context.Context, userID int64, questionID string) (Outcome, error) {
	return s.mutate(ctx, userID, "toggle_flag", func(e *entities.ExamSession, _ time.Time) bool {
		return e.ToggleFlag(questionID)
	})
}

// GoToQuestion moves the cursor to index.
func (s *ExamService) GoToQuestion(ctx context.Context, userID int64, index int) (Outcome, error) {
	return s.mutate(ctx, userID, "go_to_question", func(e *entities.ExamSession, _ time.Time) bool {
		return e.GoTo(index)
	})
}

// Pause stops the exam timer.
func (s *ExamService) Pause(ctx context.Context, userID int64) (Outcome, error) {
	return s.mutate(ctx, userID, "pause", func(e *entities.ExamSession, now time.Time) bool {
		return e.Pause(now)
	})
}

// Resume restarts the exam timer.
func (s *ExamService) Resume(ctx context.Context, userID int64) (Outcome, error) {
	return s.mutate(ctx, userID, "resume", func(e *entities.ExamSession, now time.Time) bool {
		return e.Resume(now)
	})
}

// Submit scores the active exam and appends it to the history.
func (s *ExamService) Submit(ctx context.Context, userID int64) (Outcome, error) {
	outcome, _, err := s.submit(ctx, userID, "submit", func(*entities.ExamSession, time.Time) bool { return true })
	return outcome, err
}

// SubmitIfExpired submits the active exam when no time is left and returns
// the new history entry. It returns nil when nothing was submitted.
func (s *ExamService) SubmitIfExpired(ctx context.Context, userID int64) (*entities.HistoryEntry, error) {
	// Read first so the periodic sweep does not lock every stored document.
	state, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("submit_expired: %w", err)
	}
	if !s.expired(state.Active, s.now()) {
		return nil, nil
	}

	_, entry, err := s.submit(ctx, userID, "submit_expired", func(e *entities.ExamSession, now time.Time) bool {
		return s.expired(e, now)
	})
	return entry, err
}

func (s *ExamService) expired(e *entities.ExamSession, now time.Time) bool {
	return e != nil && !e.IsSubmitted() && e.Remaining(now, s.duration) <= 0
}

// Clear drops the active session. History is kept.
func (s *ExamService) Clear(ctx context.Context, userID int64) (Outcome, error) {
	outcome := OutcomeNoop
	err := s.repo.Update(ctx, userID, func(state *entities.ExamState) error {
		if state.Active == nil {
			return repository.ErrSkipWrite
		}
		state.Active = nil
		outcome = OutcomeApplied
		return nil
	})
	if err != nil {
		return OutcomeNoop, fmt.Errorf("clear: %w", err)
	}
	s.logOutcome("clear", userID, outcome)
	return outcome, nil
}

// Reset wipes the exam state of a user, history included.
func (s *ExamService) Reset(ctx context.Context, userID int64) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("reset exams: %w", err)
	}
	s.logger.Info("exam state reset", zap.Int64("user_id", userID))
	return nil
}

// Users returns the ids of users with stored exam state.
func (s *ExamService) Users(ctx context.Context) ([]int64, error) {
	return s.repo.Users(ctx)
}

func (s *ExamService) submit(
	ctx context.Context,
	userID int64,
	op string,
	when func(*entities.ExamSession, time.Time) bool,
) (Outcome, *entities.HistoryEntry, error) {
	outcome := OutcomeNoop
	var entry *entities.HistoryEntry

	err := s.repo.Update(ctx, userID, func(state *entities.ExamState) error {
		e := state.Active
		now := s.now()
		if e == nil || e.IsSubmitted() || !when(e, now) || !e.Submit(now) {
			return repository.ErrSkipWrite
		}

		h, _ := e.HistoryEntry()
		state.AppendHistory(h)
		entry = &h
		outcome = OutcomeApplied
		return nil
	})
	if err != nil {
		return OutcomeNoop, nil, fmt.Errorf("%s: %w", op, err)
	}

	if entry != nil {
		s.logger.Info("exam submitted",
			zap.Int64("user_id", userID),
			zap.String("exam_id", entry.ID),
			zap.String("op", op),
			zap.Int("score", entry.Results.TotalScore),
			zap.Bool("passed", entry.Results.Passed),
		)
	} else if op == "submit" {
		s.logOutcome(op, userID, outcome)
	}

	return outcome, entry, nil
}

func (s *ExamService) mutate(
	ctx context.Context,
	userID int64,
	op string,
	fn func(*entities.ExamSession, time.Time) bool,
) (Outcome, error) {
	outcome := OutcomeNoop
	err := s.repo.Update(ctx, userID, func(state *entities.ExamState) error {
		if state.Active == nil || !fn(state.Active, s.now()) {
			return repository.ErrSkipWrite
		}
		outcome = OutcomeApplied
		return nil
	})
	if err != nil {
		return OutcomeNoop, fmt.Errorf("%s: %w", op, err)
	}
	s.logOutcome(op, userID, outcome)
	return outcome, nil
}

func (s *ExamService) logOutcome(op string, userID int64, outcome Outcome) {
	if outcome.Applied() {
		return
	}
	s.logger.Debug("exam mutation ignored",
		zap.String("op", op),
		zap.Int64("user_id", userID),
	)
}
