package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/internal/repository"
	"github.com/aliskhannn/pmp-prep-bot/internal/storage"
)

func TestProgressService_Marks(t *testing.T) {
	t.Parallel()

	f := newFixture()
	svc := f.progressService()
	ctx := context.Background()

	outcome, err := svc.MarkMaterialRead(ctx, user, "people-1")
	require.NoError(t, err)
	assert.True(t, outcome.Applied())

	outcome, err = svc.MarkMaterialRead(ctx, user, "people-1")
	require.NoError(t, err)
	assert.False(t, outcome.Applied())

	outcome, err = svc.SetFlashcardRating(ctx, user, "card-1", 8)
	require.NoError(t, err)
	assert.True(t, outcome.Applied())

	p, err := svc.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []string{"people-1"}, p.ReadMaterials)
	assert.Equal(t, 5, p.FlashcardRatings["card-1"])

	require.NoError(t, svc.Reset(ctx, user))
	p, err = svc.Get(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, p.ReadMaterials)
}

func TestProgressService_Summary(t *testing.T) {
	t.Parallel()

	f := newFixture()
	svc := f.progressService()
	cards := f.flashcardService()
	exams := f.examService(fullBank())
	ctx := context.Background()

	_, err := cards.Review(ctx, user, "card-0", entities.RatingGood)
	require.NoError(t, err)
	_, err = svc.MarkQuestionCompleted(ctx, user, "q1")
	require.NoError(t, err)

	// one passing and one failing exam
	for _, correct := range []int{126, 90} {
		session, err := exams.Start(ctx, user)
		require.NoError(t, err)
		for _, q := range session.Questions[:correct] {
			_, err := exams.SetAnswer(ctx, user, q.ID, q.CorrectOptionID)
			require.NoError(t, err)
		}
		_, err = exams.Submit(ctx, user)
		require.NoError(t, err)
	}

	summary, err := svc.GetProgressSummary(ctx, user)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.CompletedQuestions)
	assert.Equal(t, 5, summary.DueFlashcards)
	assert.Equal(t, 5, summary.Flashcards.Unreviewed)
	assert.Equal(t, 2, summary.ExamsTaken)
	assert.Equal(t, 1, summary.ExamsPassed)
	assert.Equal(t, 126, summary.BestScore)
	require.NotNil(t, summary.LastScore)
	assert.Equal(t, 90, summary.LastScore.TotalScore)
	// (70 + 50) / 2
	assert.InDelta(t, 60.0, summary.AverageScore, 1e-9)

	f.clock.Advance(24 * time.Hour)
	summary, err = svc.GetProgressSummary(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 6, summary.DueFlashcards)
}

func TestProfileService(t *testing.T) {
	t.Parallel()

	f := newFixture()
	svc := NewProfileService(f.profiles)
	ctx := context.Background()

	require.NoError(t, svc.EnsureName(ctx, user, "Alex"))
	require.NoError(t, svc.EnsureName(ctx, user, "Someone Else"))

	p, err := svc.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "Alex", p.Name)

	require.NoError(t, svc.SetTheme(ctx, user, "light"))
	outcome, err := svc.AddDonationCode(ctx, user, "THANKS")
	require.NoError(t, err)
	assert.True(t, outcome.Applied())
	outcome, err = svc.AddDonationCode(ctx, user, "THANKS")
	require.NoError(t, err)
	assert.False(t, outcome.Applied())

	p, err = svc.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, entities.ThemeLight, p.Theme)
	assert.Equal(t, []string{"THANKS"}, p.DonationCodes)
}

func TestResetService(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	exams := f.examService(fullBank())
	progress := f.progressService()
	profiles := NewProfileService(f.profiles)

	_, err := exams.Start(ctx, user)
	require.NoError(t, err)
	_, err = progress.MarkMaterialRead(ctx, user, "m")
	require.NoError(t, err)
	require.NoError(t, profiles.SetName(ctx, user, "Kim"))

	require.NoError(t, NewResetService(f.exams, f.progress, f.profiles).ResetUser(ctx, user))

	keys, err := f.kv.Keys(ctx, "pmp-")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestQuizService(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	progress := f.progressService()

	bank := fullBank()
	quiz := NewQuizService(bank, storage.NewQuizStorage(), progress, f.selector, zap.NewNop())

	_, err := quiz.Current(user)
	assert.ErrorIs(t, err, ErrNoQuizSession)

	view, err := quiz.Start(ctx, user, entities.DomainBusiness)
	require.NoError(t, err)
	assert.Equal(t, 20, view.Total)
	assert.Equal(t, entities.DomainBusiness, view.Question.DomainID)

	answer, view, err := quiz.Answer(ctx, user, "B")
	require.NoError(t, err)
	assert.True(t, answer.IsCorrect)
	assert.Equal(t, 1, view.Score)
	assert.Equal(t, 1, view.Streak)
	assert.Equal(t, "B", view.Answered)

	answer, _, err = quiz.Answer(ctx, user, "Z")
	require.NoError(t, err)
	assert.Empty(t, answer.Chosen, "unknown option is ignored")

	p, err := progress.Get(ctx, user)
	require.NoError(t, err)
	assert.Len(t, p.CompletedQuestions, 1)

	restarted := false
	for range 19 {
		view, restarted, err = quiz.Next(user)
		require.NoError(t, err)
		require.False(t, restarted)
	}
	assert.Equal(t, 19, view.Index)

	view, restarted, err = quiz.Next(user)
	require.NoError(t, err)
	assert.True(t, restarted)
	assert.Zero(t, view.Index)
	assert.Zero(t, view.Score)

	quiz.Stop(user)
	_, _, err = quiz.Answer(ctx, user, "A")
	assert.ErrorIs(t, err, ErrNoQuizSession)

	empty, _ := repository.NewQuestionBank(nil)
	_, err = NewQuizService(empty, storage.NewQuizStorage(), progress, f.selector, zap.NewNop()).Start(ctx, user, "")
	assert.ErrorIs(t, err, ErrNoQuestionsAvailable)
}
