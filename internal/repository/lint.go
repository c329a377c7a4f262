package repository

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
)

// Soft limits for bank content. Entries outside them still load.
const (
	minOptionLabel    = 5
	maxOptionLabel    = 150
	maxQuestionText   = 500
	maxExplanation    = 300
	minFlashcardSide  = 10
	maxFlashcardFront = 200
	maxFlashcardBack  = 500
)

var tagPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Warning is a non-fatal remark about a bank entry.
type Warning struct {
	ID      string
	Message string
}

func (w Warning) String() string {
	return w.ID + ": " + w.Message
}

// LintQuestions reports questions that load fine but look suspicious.
func LintQuestions(questions []entities.Question) []Warning {
	var out []Warning
	for i, q := range questions {
		id := q.ID
		if id == "" {
			id = fmt.Sprintf("question-%d", i)
		}
		warn := func(format string, args ...any) {
			out = append(out, Warning{ID: id, Message: fmt.Sprintf(format, args...)})
		}

		if n := utf8.RuneCountInString(q.Text); n > maxQuestionText {
			warn("question text is very long (%d chars)", n)
		}
		if q.Text != "" && !strings.Contains(q.Text, "?") {
			warn("question text has no question mark")
		}
		if n := utf8.RuneCountInString(q.Explanation); n > maxExplanation {
			warn("explanation is very long (%d chars)", n)
		}
		if q.Explanation == "" {
			warn("explanation is empty")
		}
		for _, opt := range q.Options {
			switch n := utf8.RuneCountInString(opt.Label); {
			case n > 0 && n < minOptionLabel:
				warn("option %s label is very short (%d chars)", opt.ID, n)
			case n > maxOptionLabel:
				warn("option %s label is very long (%d chars)", opt.ID, n)
			}
		}
	}
	return out
}

// LintFlashcards reports cards with unusual sizes or malformed tags.
func LintFlashcards(cards []entities.Flashcard) []Warning {
	var out []Warning
	for i, c := range cards {
		id := c.ID
		if id == "" {
			id = fmt.Sprintf("card-%d", i)
		}
		warn := func(format string, args ...any) {
			out = append(out, Warning{ID: id, Message: fmt.Sprintf(format, args...)})
		}

		if n := utf8.RuneCountInString(c.Front); n < minFlashcardSide || n > maxFlashcardFront {
			warn("front length %d outside [%d-%d]", n, minFlashcardSide, maxFlashcardFront)
		}
		if n := utf8.RuneCountInString(c.Back); n < minFlashcardSide || n > maxFlashcardBack {
			warn("back length %d outside [%d-%d]", n, minFlashcardSide, maxFlashcardBack)
		}
		switch c.Difficulty {
		case "", "easy", "medium", "hard":
		default:
			warn("unknown difficulty %q", c.Difficulty)
		}
		for _, tag := range c.Tags {
			if !tagPattern.MatchString(tag) {
				warn("invalid tag %q", tag)
			}
		}
	}
	return out
}
