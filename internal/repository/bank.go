package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/pkg/validator"
)

var (
	ErrQuestionNotFound  = errors.New("question not found")
	ErrFlashcardNotFound = errors.New("flashcard not found")
	ErrDuplicateID       = errors.New("duplicate id")
)

// BankIssue describes an entry that was rejected while loading a bank.
type BankIssue struct {
	Index int    // position in the source file
	ID    string // entry id, empty if missing
	Err   error
}

func (i BankIssue) Error() string {
	id := i.ID
	if id == "" {
		id = "UNKNOWN"
	}
	return fmt.Sprintf("entry %d (%s): %v", i.Index, id, i.Err)
}

// QuestionBank is the read-only question collection.
type QuestionBank struct {
	questions []entities.Question
	byID      map[string]int
}

// NewQuestionBank keeps the valid questions and reports the rejected ones.
func NewQuestionBank(questions []entities.Question) (*QuestionBank, []BankIssue) {
	bank := &QuestionBank{byID: make(map[string]int, len(questions))}
	issues := CheckQuestions(questions)

	rejected := make(map[int]struct{}, len(issues))
	for _, is := range issues {
		rejected[is.Index] = struct{}{}
	}

	for i, q := range questions {
		if _, bad := rejected[i]; bad {
			continue
		}
		bank.byID[q.ID] = len(bank.questions)
		bank.questions = append(bank.questions, q)
	}

	return bank, issues
}

// LoadQuestionBank reads a JSON question file.
func LoadQuestionBank(path string) (*QuestionBank, []BankIssue, error) {
	questions, err := ReadQuestions(path)
	if err != nil {
		return nil, nil, err
	}
	bank, issues := NewQuestionBank(questions)
	return bank, issues, nil
}

// ReadQuestions decodes a question file: either a bare array or
// an object with a "questions" array.
func ReadQuestions(path string) ([]entities.Question, error) {
	var questions []entities.Question
	if err := readCollection(path, "questions", &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// CheckQuestions validates every question and reports duplicate ids.
func CheckQuestions(questions []entities.Question) []BankIssue {
	var issues []BankIssue
	seen := make(map[string]struct{}, len(questions))

	for i, q := range questions {
		if err := validator.ValidateStruct(q); err != nil {
			issues = append(issues, BankIssue{Index: i, ID: q.ID, Err: err})
			continue
		}
		if err := q.Validate(); err != nil {
			issues = append(issues, BankIssue{Index: i, ID: q.ID, Err: err})
			continue
		}
		if _, dup := seen[q.ID]; dup {
			issues = append(issues, BankIssue{Index: i, ID: q.ID, Err: ErrDuplicateID})
			continue
		}
		seen[q.ID] = struct{}{}
	}

	return issues
}

// Len returns the number of loaded questions.
func (b *QuestionBank) Len() int { return len(b.questions) }

// All returns every question of the bank.
func (b *QuestionBank) All(_ context.Context) ([]entities.Question, error) {
	return b.questions, nil
}

// GetByID returns a question by id.
func (b *QuestionBank) GetByID(_ context.Context, id string) (entities.Question, error) {
	i, ok := b.byID[id]
	if !ok {
		return entities.Question{}, ErrQuestionNotFound
	}
	return b.questions[i], nil
}

// ByDomain returns the questions of one domain, or all of them for an empty domain.
func (b *QuestionBank) ByDomain(_ context.Context, domain entities.DomainID) ([]entities.Question, error) {
	if domain == "" {
		return b.questions, nil
	}
	var out []entities.Question
	for _, q := range b.questions {
		if q.EffectiveDomain() == domain {
			out = append(out, q)
		}
	}
	return out, nil
}

// CountByDomain returns the number of questions per domain.
func (b *QuestionBank) CountByDomain() map[entities.DomainID]int {
	counts := make(map[entities.DomainID]int, len(entities.Domains))
	for _, q := range b.questions {
		counts[q.EffectiveDomain()]++
	}
	return counts
}

// FlashcardBank is the read-only flashcard collection.
type FlashcardBank struct {
	cards []entities.Flashcard
	byID  map[string]int
}

// NewFlashcardBank keeps the valid cards and reports the rejected ones.
func NewFlashcardBank(cards []entities.Flashcard) (*FlashcardBank, []BankIssue) {
	bank := &FlashcardBank{byID: make(map[string]int, len(cards))}
	var issues []BankIssue

	for i, c := range cards {
		if err := validator.ValidateStruct(c); err != nil {
			issues = append(issues, BankIssue{Index: i, ID: c.ID, Err: err})
			continue
		}
		if _, dup := bank.byID[c.ID]; dup {
			issues = append(issues, BankIssue{Index: i, ID: c.ID, Err: ErrDuplicateID})
			continue
		}
		bank.byID[c.ID] = len(bank.cards)
		bank.cards = append(bank.cards, c)
	}

	return bank, issues
}

// LoadFlashcardBank reads a JSON flashcard file.
func LoadFlashcardBank(path string) (*FlashcardBank, []BankIssue, error) {
	cards, err := ReadFlashcards(path)
	if err != nil {
		return nil, nil, err
	}
	bank, issues := NewFlashcardBank(cards)
	return bank, issues, nil
}

// ReadFlashcards decodes a flashcard file, bare array or wrapped.
func ReadFlashcards(path string) ([]entities.Flashcard, error) {
	var cards []entities.Flashcard
	if err := readCollection(path, "flashcards", &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (b *FlashcardBank) Len() int { return len(b.cards) }

// All returns every flashcard of the bank.
func (b *FlashcardBank) All(_ context.Context) ([]entities.Flashcard, error) {
	return b.cards, nil
}

// GetByID returns a flashcard by id.
func (b *FlashcardBank) GetByID(_ context.Context, id string) (entities.Flashcard, error) {
	i, ok := b.byID[id]
	if !ok {
		return entities.Flashcard{}, ErrFlashcardNotFound
	}
	return b.cards[i], nil
}

func readCollection(path, field string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err == nil {
		return nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return fmt.Errorf("failed to unmarshal %s JSON: %w", field, err)
	}
	raw, ok := wrapper[field]
	if !ok {
		return fmt.Errorf("failed to unmarshal %s JSON: missing %q field", field, field)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s JSON: %w", field, err)
	}
	return nil
}
