package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
)

var ErrNoQuizSession = errors.New("no practice session")

type QuizStorage interface {
	Store(userID int64, session *entities.QuizSession)
	Get(userID int64) (*entities.QuizSession, bool)
	Update(userID int64, fn func(*entities.QuizSession) bool) bool
	Delete(userID int64)
}

// QuizView is a snapshot of a practice session for rendering.
type QuizView struct {
	Question entities.Question
	Index    int
	Total    int
	Score    int
	Streak   int
	Answered string // option chosen for the current question, if any
}

// QuizService runs untimed practice sessions. Every answered question is
// recorded as completed in the user's progress.
type QuizService struct {
	bank     QuestionRepository
	storage  QuizStorage
	progress *ProgressService
	selector *QuestionSelector
	logger   *zap.Logger
}

func NewQuizService(
	bank QuestionRepository,
	storage QuizStorage,
	progress *ProgressService,
	selector *QuestionSelector,
	logger *zap.Logger,
) *QuizService {
	return &QuizService{
		bank:     bank,
		storage:  storage,
		progress: progress,
		selector: selector,
		logger:   logger,
	}
}

// Start shuffles the questions of a domain (all domains when empty) into a new session.
func (s *QuizService) Start(ctx context.Context, userID int64, domain entities.DomainID) (QuizView, error) {
	questions, err := s.bank.ByDomain(ctx, domain)
	if err != nil {
		return QuizView{}, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return QuizView{}, ErrNoQuestionsAvailable
	}

	session := entities.NewQuizSession(domain, s.selector.Shuffle(questions))
	s.storage.Store(userID, session)

	s.logger.Debug("practice started",
		zap.Int64("user_id", userID),
		zap.String("domain", string(domain)),
		zap.Int("questions", len(questions)),
	)

	return viewOf(session), nil
}

// Current returns the current question of the practice session.
func (s *QuizService) Current(userID int64) (QuizView, error) {
	var view QuizView
	ok := s.storage.Update(userID, func(qs *entities.QuizSession) bool {
		view = viewOf(qs)
		return true
	})
	if !ok {
		return QuizView{}, ErrNoQuizSession
	}
	return view, nil
}

// Answer checks the chosen option for the current question.
func (s *QuizService) Answer(ctx context.Context, userID int64, optionID string) (entities.QuizAnswer, QuizView, error) {
	var (
		answer  entities.QuizAnswer
		view    QuizView
		applied bool
	)
	found := s.storage.Update(userID, func(qs *entities.QuizSession) bool {
		answer, applied = qs.Answer(optionID)
		view = viewOf(qs)
		return true
	})
	if !found {
		return entities.QuizAnswer{}, QuizView{}, ErrNoQuizSession
	}
	if !applied {
		return entities.QuizAnswer{}, view, nil
	}

	if _, err := s.progress.MarkQuestionCompleted(ctx, userID, answer.Question.ID); err != nil {
		return answer, view, err
	}
	return answer, view, nil
}

// Next moves to the next question. At the end of the deck the session
// starts over with a reshuffled deck and a fresh score; restarted reports that.
func (s *QuizService) Next(userID int64) (view QuizView, restarted bool, err error) {
	found := s.storage.Update(userID, func(qs *entities.QuizSession) bool {
		if !qs.Next() {
			*qs = *entities.NewQuizSession(qs.Domain, s.selector.Shuffle(qs.Deck))
			restarted = true
		}
		view = viewOf(qs)
		return true
	})
	if !found {
		return QuizView{}, false, ErrNoQuizSession
	}
	return view, restarted, nil
}

// Stop ends the practice session.
func (s *QuizService) Stop(userID int64) {
	s.storage.Delete(userID)
}

func viewOf(qs *entities.QuizSession) QuizView {
	q, _ := qs.Current()
	return QuizView{
		Question: q,
		Index:    qs.CurrentIndex,
		Total:    len(qs.Deck),
		Score:    qs.Score(),
		Streak:   qs.Streak(),
		Answered: qs.Answers[q.ID],
	}
}
