package entities

import (
	"errors"
	"fmt"
)

// DomainID identifies one of the top-level exam domains.
type DomainID string

const (
	DomainPeople   DomainID = "people"
	DomainProcess  DomainID = "process"
	DomainBusiness DomainID = "business"
)

// Domains lists the known exam domains in reporting order.
var Domains = []DomainID{DomainPeople, DomainProcess, DomainBusiness}

// IsKnown reports whether d is one of the exam domains.
func (d DomainID) IsKnown() bool {
	for _, known := range Domains {
		if d == known {
			return true
		}
	}
	return false
}

// OptionsPerQuestion is the number of answer options every question carries.
const OptionsPerQuestion = 4

var (
	ErrInvalidOptionCount  = errors.New("question must have exactly 4 options")
	ErrDuplicateOptionID   = errors.New("question option ids must be unique")
	ErrCorrectOptionAbsent = errors.New("correct option id does not match any option")
)

// Option is a single labeled answer choice.
type Option struct {
	ID    string `json:"id" validate:"required"`
	Label string `json:"label" validate:"required"`
}

// Question is a multiple-choice exam question from the static bank.
type Question struct {
	ID              string   `json:"id" validate:"required"`
	DomainID        DomainID `json:"domainId" validate:"required,oneof=people process business"`
	TaskID          string   `json:"taskId,omitempty"`
	Text            string   `json:"text" validate:"required"`
	Options         []Option `json:"options" validate:"len=4,dive"`
	CorrectOptionID string   `json:"correctOptionId" validate:"required"`
	Explanation     string   `json:"explanation"`
}

// Validate checks the 4-option and correct-option invariants.
func (q Question) Validate() error {
	if len(q.Options) != OptionsPerQuestion {
		return fmt.Errorf("question %s: %w (got %d)", q.ID, ErrInvalidOptionCount, len(q.Options))
	}

	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if _, ok := seen[opt.ID]; ok {
			return fmt.Errorf("question %s: %w (%q)", q.ID, ErrDuplicateOptionID, opt.ID)
		}
		seen[opt.ID] = struct{}{}
	}

	if !q.HasOption(q.CorrectOptionID) {
		return fmt.Errorf("question %s: %w (%q)", q.ID, ErrCorrectOptionAbsent, q.CorrectOptionID)
	}

	return nil
}

// HasOption reports whether the question has an option with the given id.
func (q Question) HasOption(optionID string) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// Option returns the option with the given id.
func (q Question) Option(optionID string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return Option{}, false
}

// EffectiveDomain returns the question domain, falling back to people when unset.
func (q Question) EffectiveDomain() DomainID {
	if q.DomainID == "" {
		return DomainPeople
	}
	return q.DomainID
}
