package entities

import (
	"slices"
	"time"
)

// Progress list limits.
const (
	MaxTrackedIDs     = 2000 // completed questions, read materials
	MaxTrackedRatings = 5000 // legacy flashcard ratings
	MinRating         = 1
	MaxRating         = 5
)

// StudyProgress stores everything a user accumulates outside of exams.
type StudyProgress struct {
	FlashcardBoxes     map[string]BoxEntry // card id -> Leitner state
	CompletedQuestions []string            // practice questions answered at least once
	ReadMaterials      []string            // study materials marked as read
	FlashcardRatings   map[string]int      // legacy self-ratings (1-5)
}

// NewStudyProgress returns empty progress.
func NewStudyProgress() *StudyProgress {
	return &StudyProgress{
		FlashcardBoxes:     make(map[string]BoxEntry),
		CompletedQuestions: []string{},
		ReadMaterials:      []string{},
		FlashcardRatings:   make(map[string]int),
	}
}

// Box returns the Leitner entry of a card, if it was ever reviewed.
func (p *StudyProgress) Box(cardID string) (BoxEntry, bool) {
	e, ok := p.FlashcardBoxes[cardID]
	return e, ok
}

// ReviewFlashcard applies a rating to a card, creating its entry on first review.
func (p *StudyProgress) ReviewFlashcard(cardID string, rating Rating, now time.Time) bool {
	if cardID == "" || !rating.Valid() {
		return false
	}

	entry, ok := p.FlashcardBoxes[cardID]
	if !ok {
		entry = NewBoxEntry()
	}
	if !entry.Review(rating, now) {
		return false
	}

	if p.FlashcardBoxes == nil {
		p.FlashcardBoxes = make(map[string]BoxEntry)
	}
	p.FlashcardBoxes[cardID] = entry
	return true
}

// MarkQuestionCompleted records a practiced question once.
func (p *StudyProgress) MarkQuestionCompleted(questionID string) bool {
	if questionID == "" || slices.Contains(p.CompletedQuestions, questionID) ||
		len(p.CompletedQuestions) >= MaxTrackedIDs {
		return false
	}
	p.CompletedQuestions = append(p.CompletedQuestions, questionID)
	return true
}

// MarkMaterialRead records a read material once.
func (p *StudyProgress) MarkMaterialRead(materialID string) bool {
	if materialID == "" || slices.Contains(p.ReadMaterials, materialID) ||
		len(p.ReadMaterials) >= MaxTrackedIDs {
		return false
	}
	p.ReadMaterials = append(p.ReadMaterials, materialID)
	return true
}

// SetFlashcardRating stores a self-rating, clamped into [1, 5].
func (p *StudyProgress) SetFlashcardRating(cardID string, rating int) bool {
	if cardID == "" {
		return false
	}
	if _, exists := p.FlashcardRatings[cardID]; !exists && len(p.FlashcardRatings) >= MaxTrackedRatings {
		return false
	}
	if p.FlashcardRatings == nil {
		p.FlashcardRatings = make(map[string]int)
	}
	p.FlashcardRatings[cardID] = min(MaxRating, max(MinRating, rating))
	return true
}
