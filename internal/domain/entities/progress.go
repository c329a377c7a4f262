package entities

import "time"

// Rating represents how well the user recalled a flashcard.
type Rating string

const (
	RatingHard Rating = "hard" // not recalled, back to the first box
	RatingGood Rating = "good" // recalled, stays in the same box
	RatingEasy Rating = "easy" // recalled easily, moves one box up
)

// Valid reports whether r is one of the three known ratings.
func (r Rating) Valid() bool {
	switch r {
	case RatingHard, RatingGood, RatingEasy:
		return true
	default:
		return false
	}
}

// Leitner box bounds.
const (
	MinBox = 1
	MaxBox = 5
)

const day = 24 * time.Hour

// boxIntervals holds the review interval of each Leitner box.
var boxIntervals = [MaxBox + 1]time.Duration{
	1: 1 * day,
	2: 3 * day,
	3: 7 * day,
	4: 14 * day,
	5: 30 * day,
}

// BoxInterval returns the review interval for a box, clamping out-of-range boxes.
func BoxInterval(box int) time.Duration {
	return boxIntervals[ClampBox(box)]
}

// ClampBox forces a box number into [MinBox, MaxBox].
func ClampBox(box int) int {
	if box < MinBox {
		return MinBox
	}
	if box > MaxBox {
		return MaxBox
	}
	return box
}

// BoxEntry stores the Leitner state of a single flashcard.
// A card without an entry is implicitly in box 1 and due immediately.
type BoxEntry struct {
	Box          int        // current Leitner box (1-5)
	LastReviewed *time.Time // last review timestamp, nil if never reviewed
	NextReview   time.Time  // when the card becomes due again
	ReviewCount  int        // number of reviews so far
}

// NewBoxEntry returns the implicit state of a never-reviewed card.
func NewBoxEntry() BoxEntry {
	return BoxEntry{Box: MinBox}
}

// Review moves the card between boxes according to the rating.
//
//  1. hard resets the card to box 1.
//  2. good keeps the current box.
//  3. easy advances one box, capped at box 5.
//
// It returns false and leaves the entry untouched for unknown ratings.
func (e *BoxEntry) Review(rating Rating, now time.Time) bool {
	box := ClampBox(e.Box)

	switch rating {
	case RatingHard:
		box = MinBox
	case RatingGood:
	case RatingEasy:
		box = min(box+1, MaxBox)
	default:
		return false
	}

	e.Box = box
	e.NextReview = now.Add(BoxInterval(box))
	e.LastReviewed = &now
	e.ReviewCount++

	return true
}

// IsDue reports whether the card should be reviewed at now.
func (e BoxEntry) IsDue(now time.Time) bool {
	return !e.NextReview.After(now)
}

// IsCardDue reports whether a card with an optional entry is due.
func IsCardDue(entry *BoxEntry, now time.Time) bool {
	if entry == nil {
		return true
	}
	return entry.IsDue(now)
}
