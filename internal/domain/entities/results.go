package entities

import (
	"math"
	"time"
)

// Exam parameters.
const (
	ExamSize     = 180               // number of questions in a full exam
	PassingScore = 110               // minimum correct answers to pass
	HistoryLimit = 10                // submitted exams kept in history
	ExamDuration = 230 * time.Minute // time allowed for a full exam
)

// DomainScore aggregates correctness for one domain.
type DomainScore struct {
	Correct    int
	Total      int
	Percentage float64
}

// QuestionResult is the per-question outcome of a submitted exam.
type QuestionResult struct {
	QuestionID    string
	UserAnswer    *string // nil when the question was left unanswered
	CorrectAnswer string
	IsCorrect     bool
	DomainID      DomainID
}

// ExamResults is computed once at submission and never recomputed.
type ExamResults struct {
	TotalScore      int
	PercentageScore float64
	Passed          bool
	TimeElapsed     time.Duration // wall time from start to submission
	TimePaused      time.Duration // time spent paused
	DomainScores    map[DomainID]DomainScore
	QuestionResults []QuestionResult
}

// HistoryEntry summarizes a submitted exam.
type HistoryEntry struct {
	ID          string
	StartTime   time.Time
	SubmittedAt time.Time
	Results     *ExamResults
}

// CalculateResults scores the answers against the fixed question list.
// Unanswered questions count as incorrect.
func CalculateResults(
	questions []Question,
	answers map[string]string,
	startTime time.Time,
	totalPause time.Duration,
	now time.Time,
) *ExamResults {
	domainScores := make(map[DomainID]DomainScore, len(Domains))
	for _, d := range Domains {
		domainScores[d] = DomainScore{}
	}

	totalCorrect := 0
	questionResults := make([]QuestionResult, 0, len(questions))

	for _, q := range questions {
		var userAnswer *string
		if a, ok := answers[q.ID]; ok && a != "" {
			answer := a
			userAnswer = &answer
		}

		isCorrect := userAnswer != nil && *userAnswer == q.CorrectOptionID
		if isCorrect {
			totalCorrect++
		}

		domain := q.EffectiveDomain()
		score := domainScores[domain]
		score.Total++
		if isCorrect {
			score.Correct++
		}
		domainScores[domain] = score

		questionResults = append(questionResults, QuestionResult{
			QuestionID:    q.ID,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.CorrectOptionID,
			IsCorrect:     isCorrect,
			DomainID:      domain,
		})
	}

	for d, score := range domainScores {
		score.Percentage = percentage(score.Correct, score.Total)
		domainScores[d] = score
	}

	elapsed := time.Duration(0)
	if !startTime.IsZero() {
		elapsed = max(0, now.Sub(startTime))
	}

	return &ExamResults{
		TotalScore:      totalCorrect,
		PercentageScore: percentage(totalCorrect, ExamSize),
		Passed:          totalCorrect >= PassingScore,
		TimeElapsed:     elapsed,
		TimePaused:      max(0, totalPause),
		DomainScores:    domainScores,
		QuestionResults: questionResults,
	}
}

// percentage returns correct/total as a percentage rounded to one decimal place.
func percentage(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*1000) / 10
}
