package service

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
)

// ErrInsufficientQuestions is matched by every *InsufficientQuestionsError.
var ErrInsufficientQuestions = errors.New("insufficient questions")

// InsufficientQuestionsError reports the first domain that cannot fill its quota.
type InsufficientQuestionsError struct {
	Domain    entities.DomainID
	Required  int
	Available int
}

func (e *InsufficientQuestionsError) Error() string {
	return fmt.Sprintf("insufficient questions in domain %q: required %d, available %d",
		e.Domain, e.Required, e.Available)
}

func (e *InsufficientQuestionsError) Is(target error) bool {
	return target == ErrInsufficientQuestions
}

// DomainTarget is the number of questions an exam takes from one domain.
type DomainTarget struct {
	Domain entities.DomainID
	Count  int
}

// DefaultDistribution is the exam blueprint: 76 + 90 + 14 = 180.
var DefaultDistribution = []DomainTarget{
	{Domain: entities.DomainPeople, Count: 76},
	{Domain: entities.DomainProcess, Count: 90},
	{Domain: entities.DomainBusiness, Count: 14},
}

// QuestionSelector draws a stratified random exam from a question bank.
type QuestionSelector struct {
	targets []DomainTarget

	mu  sync.Mutex // *rand.Rand is not safe for concurrent use
	rng *rand.Rand
}

// NewQuestionSelector creates a selector with the default distribution.
// A nil rng is replaced by a time-seeded source.
func NewQuestionSelector(rng *rand.Rand) *QuestionSelector {
	return NewQuestionSelectorWithTargets(DefaultDistribution, rng)
}

// NewQuestionSelectorWithTargets creates a selector with a custom distribution.
func NewQuestionSelectorWithTargets(targets []DomainTarget, rng *rand.Rand) *QuestionSelector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &QuestionSelector{
		targets: append([]DomainTarget(nil), targets...),
		rng:     rng,
	}
}

// Size returns the number of questions a selection yields.
func (s *QuestionSelector) Size() int {
	total := 0
	for _, t := range s.targets {
		total += t.Count
	}
	return total
}

// Targets returns a copy of the configured distribution.
func (s *QuestionSelector) Targets() []DomainTarget {
	return append([]DomainTarget(nil), s.targets...)
}

// Select returns exactly Size() distinct questions, Count per target domain,
// in random order. Every domain is checked before anything is drawn, so a
// failing call has no partial result.
func (s *QuestionSelector) Select(bank []entities.Question) ([]entities.Question, error) {
	byDomain := make(map[entities.DomainID][]entities.Question)
	for _, q := range uniqueByID(bank) {
		byDomain[q.EffectiveDomain()] = append(byDomain[q.EffectiveDomain()], q)
	}

	for _, t := range s.targets {
		if available := len(byDomain[t.Domain]); available < t.Count {
			return nil, &InsufficientQuestionsError{
				Domain:    t.Domain,
				Required:  t.Count,
				Available: available,
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entities.Question, 0, s.Size())
	for _, t := range s.targets {
		pool := s.shuffled(byDomain[t.Domain])
		out = append(out, pool[:t.Count]...)
	}

	return s.shuffled(out), nil
}

// Shuffle returns a shuffled copy of the questions.
func (s *QuestionSelector) Shuffle(in []entities.Question) []entities.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shuffled(in)
}

// shuffled returns a shuffled copy of the input slice. Callers hold mu.
func (s *QuestionSelector) shuffled(in []entities.Question) []entities.Question {
	return shuffledCopy(s.rng, in)
}

// shuffledCopy returns a Fisher-Yates shuffled copy of in.
func shuffledCopy[T any](rng *rand.Rand, in []T) []T {
	out := append([]T(nil), in...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// uniqueByID removes questions with a repeated id, keeping the first one.
func uniqueByID(questions []entities.Question) []entities.Question {
	seen := make(map[string]struct{}, len(questions))
	out := make([]entities.Question, 0, len(questions))
	for _, q := range questions {
		if _, ok := seen[q.ID]; ok {
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
	}
	return out
}
