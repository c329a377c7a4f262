package service

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/internal/repository"
)

// StudyMode selects cards by their Leitner state.
type StudyMode string

const (
	StudyAll StudyMode = "all"
	StudyDue StudyMode = "due"
)

// StudyBox returns the mode that selects a single box.
func StudyBox(box int) StudyMode {
	return StudyMode("box" + strconv.Itoa(entities.ClampBox(box)))
}

// ParseStudyMode parses all, due or box1..box5.
func ParseStudyMode(s string) (StudyMode, bool) {
	m := StudyMode(strings.ToLower(strings.TrimSpace(s)))
	if m == StudyAll || m == StudyDue {
		return m, true
	}
	if _, ok := m.box(); ok {
		return m, true
	}
	return "", false
}

// box returns the box selected by a boxN mode.
func (m StudyMode) box() (int, bool) {
	rest, ok := strings.CutPrefix(string(m), "box")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < entities.MinBox || n > entities.MaxBox {
		return 0, false
	}
	return n, true
}

// FlashcardFilter narrows the deck. Empty fields match everything.
type FlashcardFilter struct {
	Domain entities.DomainID
	TaskID string
	Type   string
	Mode   StudyMode
}

// BoxDistribution summarizes where the cards of the bank sit.
type BoxDistribution struct {
	Boxes      [entities.MaxBox + 1]int // index 1..5
	Unreviewed int
	Mastered   int // cards in the last box
	Total      int
}

// MasteryPercentage returns the share of mastered cards, rounded.
func (d BoxDistribution) MasteryPercentage() int {
	if d.Total == 0 {
		return 0
	}
	return (d.Mastered*100 + d.Total/2) / d.Total
}

// FlashcardService schedules flashcard reviews with Leitner boxes.
type FlashcardService struct {
	cards    FlashcardRepository
	progress ProgressRepository
	logger   *zap.Logger
	now      func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewFlashcardService creates a new FlashcardService.
func NewFlashcardService(
	cards FlashcardRepository,
	progress ProgressRepository,
	rng *rand.Rand,
	logger *zap.Logger,
) *FlashcardService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &FlashcardService{
		cards:    cards,
		progress: progress,
		logger:   logger,
		now:      time.Now,
		rng:      rng,
	}
}

// SetClock replaces the time source.
func (s *FlashcardService) SetClock(now func() time.Time) {
	s.now = now
}

// Card returns a flashcard from the bank.
func (s *FlashcardService) Card(ctx context.Context, cardID string) (entities.Flashcard, error) {
	return s.cards.GetByID(ctx, cardID)
}

// Review applies a rating to a card. Unknown ratings are ignored.
func (s *FlashcardService) Review(
	ctx context.Context, userID int64, cardID string, rating entities.Rating,
) (Outcome, error) {
	outcome := OutcomeNoop
	var entry entities.BoxEntry

	err := s.progress.Update(ctx, userID, func(p *entities.StudyProgress) error {
		if !p.ReviewFlashcard(cardID, rating, s.now()) {
			return repository.ErrSkipWrite
		}
		entry, _ = p.Box(cardID)
		outcome = OutcomeApplied
		return nil
	})
	if err != nil {
		return OutcomeNoop, fmt.Errorf("review flashcard: %w", err)
	}

	if !outcome.Applied() {
		s.logger.Debug("flashcard review ignored",
			zap.Int64("user_id", userID),
			zap.String("card_id", cardID),
			zap.String("rating", string(rating)),
		)
		return outcome, nil
	}

	s.logger.Debug("flashcard reviewed",
		zap.Int64("user_id", userID),
		zap.String("card_id", cardID),
		zap.Int("box", entry.Box),
		zap.Time("next_review", entry.NextReview),
	)
	return outcome, nil
}

// Entry returns the Leitner entry of a card; ok is false for unreviewed cards.
func (s *FlashcardService) Entry(ctx context.Context, userID int64, cardID string) (entities.BoxEntry, bool, error) {
	p, err := s.progress.Get(ctx, userID)
	if err != nil {
		return entities.BoxEntry{}, false, err
	}
	e, ok := p.Box(cardID)
	return e, ok, nil
}

// IsDue reports whether a card should be reviewed now.
func (s *FlashcardService) IsDue(ctx context.Context, userID int64, cardID string) (bool, error) {
	e, ok, err := s.Entry(ctx, userID, cardID)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return e.IsDue(s.now()), nil
}

// Filter returns the bank cards matching f, in bank order.
func (s *FlashcardService) Filter(ctx context.Context, userID int64, f FlashcardFilter) ([]entities.Flashcard, error) {
	cards, err := s.cards.All(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.progress.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filterCards(cards, p.FlashcardBoxes, f, s.now()), nil
}

// Deck returns the matching cards in random order.
func (s *FlashcardService) Deck(ctx context.Context, userID int64, f FlashcardFilter) ([]entities.Flashcard, error) {
	cards, err := s.Filter(ctx, userID, f)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return shuffledCopy(s.rng, cards), nil
}

// Distribution counts the bank cards per box.
func (s *FlashcardService) Distribution(ctx context.Context, userID int64) (BoxDistribution, error) {
	cards, err := s.cards.All(ctx)
	if err != nil {
		return BoxDistribution{}, err
	}
	p, err := s.progress.Get(ctx, userID)
	if err != nil {
		return BoxDistribution{}, err
	}

	d := BoxDistribution{Total: len(cards)}
	for _, c := range cards {
		e, ok := p.FlashcardBoxes[c.ID]
		if !ok {
			d.Unreviewed++
			continue
		}
		d.Boxes[entities.ClampBox(e.Box)]++
	}
	d.Mastered = d.Boxes[entities.MaxBox]
	return d, nil
}

func filterCards(
	cards []entities.Flashcard,
	boxes map[string]entities.BoxEntry,
	f FlashcardFilter,
	now time.Time,
) []entities.Flashcard {
	targetBox, byBox := f.Mode.box()

	out := make([]entities.Flashcard, 0, len(cards))
	for _, c := range cards {
		if f.Domain != "" && c.DomainID != f.Domain {
			continue
		}
		if f.TaskID != "" && c.TaskID != f.TaskID {
			continue
		}
		if f.Type != "" && c.Type != f.Type {
			continue
		}

		e, reviewed := boxes[c.ID]
		switch {
		case f.Mode == StudyDue:
			if reviewed && !e.IsDue(now) {
				continue
			}
		case byBox:
			box := entities.MinBox
			if reviewed {
				box = entities.ClampBox(e.Box)
			}
			if box != targetBox {
				continue
			}
		}

		out = append(out, c)
	}
	return out
}
