package service

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/internal/repository"
	"github.com/aliskhannn/pmp-prep-bot/internal/storage"
)

var t0 = time.UnixMilli(1_740_819_600_000)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: t0} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func makeQuestions(domain entities.DomainID, n int) []entities.Question {
	out := make([]entities.Question, 0, n)
	for i := range n {
		out = append(out, entities.Question{
			ID:       fmt.Sprintf("%s-%03d", domain, i),
			DomainID: domain,
			Text:     "What should the project manager do next?",
			Options: []entities.Option{
				{ID: "A", Label: "Escalate to the sponsor"},
				{ID: "B", Label: "Review the risk register"},
				{ID: "C", Label: "Update the schedule"},
				{ID: "D", Label: "Do nothing"},
			},
			CorrectOptionID: "B",
		})
	}
	return out
}

// fullBank returns a bank with spare questions in every domain.
func fullBank() *repository.QuestionBank {
	var questions []entities.Question
	questions = append(questions, makeQuestions(entities.DomainPeople, 100)...)
	questions = append(questions, makeQuestions(entities.DomainProcess, 120)...)
	questions = append(questions, makeQuestions(entities.DomainBusiness, 20)...)
	bank, _ := repository.NewQuestionBank(questions)
	return bank
}

func makeCards(n int) []entities.Flashcard {
	out := make([]entities.Flashcard, 0, n)
	for i := range n {
		domain := entities.DomainPeople
		if i%2 == 1 {
			domain = entities.DomainProcess
		}
		out = append(out, entities.Flashcard{
			ID:       fmt.Sprintf("card-%d", i),
			DomainID: domain,
			Front:    "Front side of the card",
			Back:     "Back side of the card",
		})
	}
	return out
}

type fixture struct {
	clock    *fakeClock
	kv       *storage.MemoryKV
	exams    *repository.ExamStateRepository
	progress *repository.ProgressRepository
	profiles *repository.ProfileRepository
	cards    *repository.FlashcardBank
	selector *QuestionSelector
}

func newFixture() *fixture {
	clock := newFakeClock()
	kv := storage.NewMemoryKV()
	cards, _ := repository.NewFlashcardBank(makeCards(6))
	return &fixture{
		clock:    clock,
		kv:       kv,
		exams:    repository.NewExamStateRepository(kv, clock.Now),
		progress: repository.NewProgressRepository(kv),
		profiles: repository.NewProfileRepository(kv),
		cards:    cards,
		selector: NewQuestionSelector(rand.New(rand.NewSource(1))),
	}
}

func (f *fixture) examService(bank QuestionRepository) *ExamService {
	s := NewExamService(f.exams, bank, f.selector, entities.ExamDuration, zap.NewNop())
	s.SetClock(f.clock.Now)
	return s
}

func (f *fixture) progressService() *ProgressService {
	s := NewProgressService(f.progress, f.exams, f.cards, zap.NewNop())
	s.SetClock(f.clock.Now)
	return s
}

func (f *fixture) flashcardService() *FlashcardService {
	s := NewFlashcardService(f.cards, f.progress, rand.New(rand.NewSource(2)), zap.NewNop())
	s.SetClock(f.clock.Now)
	return s
}
