package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answerFirst(questions []Question, n int) map[string]string {
	answers := make(map[string]string, n)
	for _, q := range questions[:n] {
		answers[q.ID] = q.CorrectOptionID
	}
	return answers
}

func TestCalculateResults_PassThreshold(t *testing.T) {
	t.Parallel()

	questions := makeExamQuestions(76, 90, 14)
	require.Len(t, questions, ExamSize)

	tests := []struct {
		name       string
		correct    int
		passed     bool
		percentage float64
	}{
		{name: "one below the line", correct: 109, passed: false, percentage: 60.6},
		{name: "exactly on the line", correct: 110, passed: true, percentage: 61.1},
		{name: "nothing answered", correct: 0, passed: false, percentage: 0},
		{name: "all correct", correct: 180, passed: true, percentage: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := CalculateResults(questions, answerFirst(questions, tt.correct), t0, 0, t0.Add(time.Hour))

			assert.Equal(t, tt.correct, res.TotalScore)
			assert.Equal(t, tt.passed, res.Passed)
			assert.InDelta(t, tt.percentage, res.PercentageScore, 1e-9)
		})
	}
}

func TestCalculateResults_DomainBreakdown(t *testing.T) {
	t.Parallel()

	questions := makeExamQuestions(2, 2, 1)
	answers := map[string]string{
		"people-0":   "B",
		"people-1":   "A",
		"business-0": "B",
	}

	res := CalculateResults(questions, answers, t0, 2*time.Minute, t0.Add(10*time.Minute))

	assert.Equal(t, DomainScore{Correct: 1, Total: 2, Percentage: 50}, res.DomainScores[DomainPeople])
	assert.Equal(t, DomainScore{Correct: 0, Total: 2, Percentage: 0}, res.DomainScores[DomainProcess])
	assert.Equal(t, DomainScore{Correct: 1, Total: 1, Percentage: 100}, res.DomainScores[DomainBusiness])
	assert.Equal(t, 10*time.Minute, res.TimeElapsed)
	assert.Equal(t, 2*time.Minute, res.TimePaused)

	require.Len(t, res.QuestionResults, 5)
	wrong := res.QuestionResults[1]
	require.NotNil(t, wrong.UserAnswer)
	assert.Equal(t, "A", *wrong.UserAnswer)
	assert.False(t, wrong.IsCorrect)
	assert.Nil(t, res.QuestionResults[2].UserAnswer, "unanswered question")
}

func TestCalculateResults_EmptyDomainsReportZero(t *testing.T) {
	t.Parallel()

	res := CalculateResults(makeExamQuestions(1, 0, 0), nil, time.Time{}, 0, t0)

	assert.Equal(t, DomainScore{}, res.DomainScores[DomainBusiness])
	assert.Zero(t, res.TimeElapsed)
}

func TestQuestion_EffectiveDomain(t *testing.T) {
	t.Parallel()

	q := makeQuestion("q", "", "A")
	assert.Equal(t, DomainPeople, q.EffectiveDomain())
}

func TestQuestion_Validate(t *testing.T) {
	t.Parallel()

	ok := makeQuestion("q", DomainProcess, "C")
	require.NoError(t, ok.Validate())

	missing := makeQuestion("q", DomainProcess, "E")
	assert.ErrorIs(t, missing.Validate(), ErrCorrectOptionAbsent)

	short := makeQuestion("q", DomainProcess, "A")
	short.Options = short.Options[:3]
	assert.ErrorIs(t, short.Validate(), ErrInvalidOptionCount)

	dup := makeQuestion("q", DomainProcess, "A")
	dup.Options[1].ID = "A"
	assert.ErrorIs(t, dup.Validate(), ErrDuplicateOptionID)
}
