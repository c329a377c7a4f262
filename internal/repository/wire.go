package repository

import (
	"encoding/json"
	"time"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
)

// Stored documents. Instants and durations are millisecond numbers.

type examStateDoc struct {
	ActiveExam  *examDoc     `json:"activeExam"`
	ExamHistory []historyDoc `json:"examHistory"`
}

type examDoc struct {
	ID             string              `json:"id"`
	Questions      []entities.Question `json:"questions"`
	Answers        map[string]string   `json:"answers"`
	Flagged        []string            `json:"flagged"`
	CurrentIndex   int                 `json:"currentIndex"`
	StartTime      int64               `json:"startTime"`
	PausedAt       *int64              `json:"pausedAt"`
	TotalPauseTime int64               `json:"totalPauseTime"`
	IsSubmitted    bool                `json:"isSubmitted"`
	SubmittedAt    *int64              `json:"submittedAt"`
	Results        *resultsDoc         `json:"results"`
}

type resultsDoc struct {
	TotalScore      int                  `json:"totalScore"`
	PercentageScore float64              `json:"percentageScore"`
	Passed          bool                 `json:"passed"`
	TimeElapsed     int64                `json:"timeElapsed"`
	TimePaused      int64                `json:"timePaused"`
	DomainScores    map[string]domainDoc `json:"domainScores"`
	QuestionResults []questionResultDoc  `json:"questionResults"`
}

type domainDoc struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

type questionResultDoc struct {
	QuestionID    string  `json:"questionId"`
	UserAnswer    *string `json:"userAnswer"`
	CorrectAnswer string  `json:"correctAnswer"`
	IsCorrect     bool    `json:"isCorrect"`
	DomainID      string  `json:"domainId"`
}

type historyDoc struct {
	ID          string      `json:"id"`
	StartTime   int64       `json:"startTime"`
	SubmittedAt int64       `json:"submittedAt"`
	Results     *resultsDoc `json:"results"`
}

type progressDoc struct {
	FlashcardBoxes     map[string]boxDoc `json:"flashcardBoxes"`
	CompletedQuestions []string          `json:"completedQuestions"`
	ReadMaterials      []string          `json:"readMaterials"`
	FlashcardRatings   map[string]int    `json:"flashcardRatings"`
}

type boxDoc struct {
	Box          int    `json:"box"`
	LastReviewed *int64 `json:"lastReviewed"`
	NextReview   int64  `json:"nextReview"`
	ReviewCount  int    `json:"reviewCount"`
}

type profileDoc struct {
	Name          string   `json:"name"`
	Theme         string   `json:"theme"`
	DonationCodes []string `json:"donationCodes"`
}

// EncodeExamState serializes exam state for storage.
func EncodeExamState(s *entities.ExamState) ([]byte, error) {
	return json.Marshal(examStateToDoc(s))
}

// EncodeProgress serializes study progress for storage.
func EncodeProgress(p *entities.StudyProgress) ([]byte, error) {
	return json.Marshal(progressToDoc(p))
}

// EncodeProfile serializes a profile for storage.
func EncodeProfile(p *entities.Profile) ([]byte, error) {
	return json.Marshal(profileToDoc(p))
}

func examStateToDoc(s *entities.ExamState) examStateDoc {
	doc := examStateDoc{ExamHistory: []historyDoc{}}
	if s == nil {
		return doc
	}
	if s.Active != nil {
		exam := examToDoc(s.Active)
		doc.ActiveExam = &exam
	}
	for _, h := range s.History {
		doc.ExamHistory = append(doc.ExamHistory, historyDoc{
			ID:          h.ID,
			StartTime:   h.StartTime.UnixMilli(),
			SubmittedAt: h.SubmittedAt.UnixMilli(),
			Results:     resultsToDoc(h.Results),
		})
	}
	return doc
}

func examToDoc(e *entities.ExamSession) examDoc {
	doc := examDoc{
		ID:             e.ID,
		Questions:      e.Questions,
		Answers:        e.Answers,
		Flagged:        e.Flagged,
		CurrentIndex:   e.CurrentIndex,
		StartTime:      e.StartTime.UnixMilli(),
		TotalPauseTime: e.TotalPauseTime.Milliseconds(),
	}
	if doc.Questions == nil {
		doc.Questions = []entities.Question{}
	}
	if doc.Answers == nil {
		doc.Answers = map[string]string{}
	}
	if doc.Flagged == nil {
		doc.Flagged = []string{}
	}

	switch p := e.Phase.(type) {
	case entities.Paused:
		doc.PausedAt = millis(p.At)
	case entities.Submitted:
		doc.IsSubmitted = true
		doc.SubmittedAt = millis(p.At)
		doc.Results = resultsToDoc(p.Results)
	}
	return doc
}

func resultsToDoc(r *entities.ExamResults) *resultsDoc {
	if r == nil {
		return nil
	}
	doc := &resultsDoc{
		TotalScore:      r.TotalScore,
		PercentageScore: r.PercentageScore,
		Passed:          r.Passed,
		TimeElapsed:     r.TimeElapsed.Milliseconds(),
		TimePaused:      r.TimePaused.Milliseconds(),
		DomainScores:    make(map[string]domainDoc, len(r.DomainScores)),
		QuestionResults: make([]questionResultDoc, 0, len(r.QuestionResults)),
	}
	for d, s := range r.DomainScores {
		doc.DomainScores[string(d)] = domainDoc{Correct: s.Correct, Total: s.Total, Percentage: s.Percentage}
	}
	for _, qr := range r.QuestionResults {
		doc.QuestionResults = append(doc.QuestionResults, questionResultDoc{
			QuestionID:    qr.QuestionID,
			UserAnswer:    qr.UserAnswer,
			CorrectAnswer: qr.CorrectAnswer,
			IsCorrect:     qr.IsCorrect,
			DomainID:      string(qr.DomainID),
		})
	}
	return doc
}

func progressToDoc(p *entities.StudyProgress) progressDoc {
	doc := progressDoc{
		FlashcardBoxes:     map[string]boxDoc{},
		CompletedQuestions: []string{},
		ReadMaterials:      []string{},
		FlashcardRatings:   map[string]int{},
	}
	if p == nil {
		return doc
	}
	for id, e := range p.FlashcardBoxes {
		b := boxDoc{Box: e.Box, NextReview: e.NextReview.UnixMilli(), ReviewCount: e.ReviewCount}
		if e.LastReviewed != nil {
			b.LastReviewed = millis(*e.LastReviewed)
		}
		doc.FlashcardBoxes[id] = b
	}
	doc.CompletedQuestions = append(doc.CompletedQuestions, p.CompletedQuestions...)
	doc.ReadMaterials = append(doc.ReadMaterials, p.ReadMaterials...)
	for id, r := range p.FlashcardRatings {
		doc.FlashcardRatings[id] = r
	}
	return doc
}

func profileToDoc(p *entities.Profile) profileDoc {
	if p == nil {
		p = entities.NewProfile()
	}
	doc := profileDoc{Name: p.Name, Theme: string(p.Theme), DonationCodes: p.DonationCodes}
	if doc.DonationCodes == nil {
		doc.DonationCodes = []string{}
	}
	return doc
}

func millis(t time.Time) *int64 {
	ms := t.UnixMilli()
	return &ms
}
