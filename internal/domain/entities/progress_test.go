package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxEntry_Review(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		box      int
		rating   Rating
		wantBox  int
		interval time.Duration
	}{
		{name: "hard resets", box: 4, rating: RatingHard, wantBox: 1, interval: 24 * time.Hour},
		{name: "good keeps", box: 3, rating: RatingGood, wantBox: 3, interval: 7 * 24 * time.Hour},
		{name: "easy advances", box: 2, rating: RatingEasy, wantBox: 3, interval: 7 * 24 * time.Hour},
		{name: "easy caps at five", box: 5, rating: RatingEasy, wantBox: 5, interval: 30 * 24 * time.Hour},
		{name: "out of range box is clamped", box: 9, rating: RatingGood, wantBox: 5, interval: 30 * 24 * time.Hour},
		{name: "first easy review", box: 0, rating: RatingEasy, wantBox: 2, interval: 3 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := BoxEntry{Box: tt.box}
			require.True(t, e.Review(tt.rating, t0))

			assert.Equal(t, tt.wantBox, e.Box)
			assert.Equal(t, t0.Add(tt.interval), e.NextReview)
			require.NotNil(t, e.LastReviewed)
			assert.Equal(t, t0, *e.LastReviewed)
			assert.Equal(t, 1, e.ReviewCount)
		})
	}
}

func TestBoxEntry_ReviewRejectsUnknownRating(t *testing.T) {
	t.Parallel()

	e := NewBoxEntry()
	assert.False(t, e.Review("meh", t0))
	assert.Equal(t, NewBoxEntry(), e)
}

func TestIsCardDue(t *testing.T) {
	t.Parallel()

	assert.True(t, IsCardDue(nil, t0))

	e := NewBoxEntry()
	e.Review(RatingGood, t0)
	assert.False(t, IsCardDue(&e, t0.Add(23*time.Hour)))
	assert.True(t, IsCardDue(&e, t0.Add(24*time.Hour)))
}

func TestStudyProgress_Lists(t *testing.T) {
	t.Parallel()

	p := NewStudyProgress()

	assert.True(t, p.MarkQuestionCompleted("q1"))
	assert.False(t, p.MarkQuestionCompleted("q1"))
	assert.True(t, p.MarkMaterialRead("m1"))
	assert.False(t, p.MarkMaterialRead(""))

	assert.True(t, p.SetFlashcardRating("c1", 9))
	assert.Equal(t, MaxRating, p.FlashcardRatings["c1"])
	assert.True(t, p.SetFlashcardRating("c1", -2))
	assert.Equal(t, MinRating, p.FlashcardRatings["c1"])

	require.True(t, p.ReviewFlashcard("c1", RatingEasy, t0))
	entry, ok := p.Box("c1")
	require.True(t, ok)
	assert.Equal(t, 2, entry.Box)
	assert.False(t, p.ReviewFlashcard("c1", "bad", t0))
}

func TestProfile(t *testing.T) {
	t.Parallel()

	p := NewProfile()
	assert.Equal(t, ThemeSystem, p.Theme)

	p.SetTheme("neon")
	assert.Equal(t, ThemeSystem, p.Theme)
	p.SetTheme("dark")
	assert.Equal(t, ThemeDark, p.Theme)

	long := make([]rune, MaxNameLength+5)
	for i := range long {
		long[i] = 'я'
	}
	p.SetName(string(long))
	assert.Len(t, []rune(p.Name), MaxNameLength)

	assert.True(t, p.AddDonationCode("  CODE1 "))
	assert.False(t, p.AddDonationCode("CODE1"))
	assert.Equal(t, []string{"CODE1"}, p.DonationCodes)
}
