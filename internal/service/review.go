package service

import (
	"slices"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
)

// ResultFilter selects question results on the review screen.
type ResultFilter string

const (
	ResultsAll       ResultFilter = "all"
	ResultsIncorrect ResultFilter = "incorrect"
	ResultsFlagged   ResultFilter = "flagged"
)

// DefaultPageSize is used when a non-positive page size is requested.
const DefaultPageSize = 20

// FilterQuestionResults returns the results matching the filter.
// Unknown filters behave like ResultsAll.
func FilterQuestionResults(
	results []entities.QuestionResult, filter ResultFilter, flagged []string,
) []entities.QuestionResult {
	switch filter {
	case ResultsIncorrect:
		var out []entities.QuestionResult
		for _, r := range results {
			if !r.IsCorrect {
				out = append(out, r)
			}
		}
		return out
	case ResultsFlagged:
		var out []entities.QuestionResult
		for _, r := range results {
			if slices.Contains(flagged, r.QuestionID) {
				out = append(out, r)
			}
		}
		return out
	default:
		return results
	}
}

// Page is one page of a paginated list.
type Page[T any] struct {
	Items       []T
	TotalPages  int
	CurrentPage int // zero-based, clamped into range
}

// Paginate returns the requested zero-based page. A list always has at least one page.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}

	totalPages := max(1, (len(items)+perPage-1)/perPage)
	page = min(max(page, 0), totalPages-1)

	start := page * perPage
	end := min(start+perPage, len(items))

	return Page[T]{
		Items:       items[start:end],
		TotalPages:  totalPages,
		CurrentPage: page,
	}
}
