package entities

import (
	"slices"
	"time"
)

// ExamPhase is the lifecycle phase of an exam session.
// It is one of Running, Paused or Submitted.
type ExamPhase interface {
	isExamPhase()
}

// Running is the phase of an exam that is being taken.
type Running struct{}

// Paused is the phase of an exam whose timer is stopped.
type Paused struct {
	At time.Time // when the pause started
}

// Submitted is the terminal phase; results exist only here.
type Submitted struct {
	At      time.Time
	Results *ExamResults
}

func (Running) isExamPhase()   {}
func (Paused) isExamPhase()    {}
func (Submitted) isExamPhase() {}

// ExamSession is a single attempt at the timed exam.
type ExamSession struct {
	ID             string
	Questions      []Question        // fixed for the whole session
	Answers        map[string]string // question id -> option id
	Flagged        []string          // question ids marked for review, in flag order
	CurrentIndex   int
	StartTime      time.Time
	TotalPauseTime time.Duration // time spent in closed pauses
	Phase          ExamPhase
}

// NewExamSession creates a running session over the given questions.
func NewExamSession(id string, questions []Question, now time.Time) *ExamSession {
	return &ExamSession{
		ID:        id,
		Questions: questions,
		Answers:   make(map[string]string),
		Flagged:   []string{},
		StartTime: now,
		Phase:     Running{},
	}
}

// IsSubmitted reports whether the session reached its terminal phase.
func (s *ExamSession) IsSubmitted() bool {
	_, ok := s.Phase.(Submitted)
	return ok
}

// IsPaused reports whether the session timer is stopped.
func (s *ExamSession) IsPaused() bool {
	_, ok := s.Phase.(Paused)
	return ok
}

// PausedAt returns the start of the current pause, if any.
func (s *ExamSession) PausedAt() (time.Time, bool) {
	p, ok := s.Phase.(Paused)
	return p.At, ok
}

// Results returns the frozen results of a submitted session.
func (s *ExamSession) Results() (*ExamResults, bool) {
	sub, ok := s.Phase.(Submitted)
	if !ok {
		return nil, false
	}
	return sub.Results, true
}

// SubmittedAt returns the submission instant of a submitted session.
func (s *ExamSession) SubmittedAt() (time.Time, bool) {
	sub, ok := s.Phase.(Submitted)
	return sub.At, ok
}

// CurrentQuestion returns the question under the cursor.
func (s *ExamSession) CurrentQuestion() (Question, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// HasQuestion reports whether the session contains the question id.
func (s *ExamSession) HasQuestion(questionID string) bool {
	return s.questionIndex(questionID) >= 0
}

// IsFlagged reports whether the question is marked for review.
func (s *ExamSession) IsFlagged(questionID string) bool {
	return slices.Contains(s.Flagged, questionID)
}

// AnsweredCount returns the number of answered questions.
func (s *ExamSession) AnsweredCount() int {
	return len(s.Answers)
}

func (s *ExamSession) mutable() bool {
	return !s.IsSubmitted()
}

// SetAnswer records or overwrites the answer for a question.
// It does not move the cursor.
func (s *ExamSession) SetAnswer(questionID, optionID string) bool {
	if !s.mutable() || questionID == "" || optionID == "" || !s.HasQuestion(questionID) {
		return false
	}
	if s.Answers == nil {
		s.Answers = make(map[string]string)
	}
	s.Answers[questionID] = optionID
	return true
}

// ToggleFlag adds the question to the flagged set or removes it.
func (s *ExamSession) ToggleFlag(questionID string) bool {
	if !s.mutable() || !s.HasQuestion(questionID) {
		return false
	}
	if i := slices.Index(s.Flagged, questionID); i >= 0 {
		s.Flagged = slices.Delete(s.Flagged, i, i+1)
		return true
	}
	s.Flagged = append(s.Flagged, questionID)
	return true
}

// GoTo moves the cursor to any question index.
func (s *ExamSession) GoTo(index int) bool {
	if !s.mutable() || index < 0 || index >= len(s.Questions) {
		return false
	}
	s.CurrentIndex = index
	return true
}

// Pause stops the exam timer.
func (s *ExamSession) Pause(now time.Time) bool {
	if _, ok := s.Phase.(Running); !ok {
		return false
	}
	s.Phase = Paused{At: now}
	return true
}

// Resume restarts the timer and adds the pause to the total pause time.
func (s *ExamSession) Resume(now time.Time) bool {
	p, ok := s.Phase.(Paused)
	if !ok {
		return false
	}
	s.TotalPauseTime += max(0, now.Sub(p.At))
	s.Phase = Running{}
	return true
}

// Submit freezes the session and computes its results.
// A pause still open at submission is closed first.
func (s *ExamSession) Submit(now time.Time) bool {
	if !s.mutable() {
		return false
	}
	s.Resume(now)

	results := CalculateResults(s.Questions, s.Answers, s.StartTime, s.TotalPauseTime, now)
	s.Phase = Submitted{At: now, Results: results}
	return true
}

// HistoryEntry returns the history summary of a submitted session.
func (s *ExamSession) HistoryEntry() (HistoryEntry, bool) {
	sub, ok := s.Phase.(Submitted)
	if !ok {
		return HistoryEntry{}, false
	}
	return HistoryEntry{
		ID:          s.ID,
		StartTime:   s.StartTime,
		SubmittedAt: sub.At,
		Results:     sub.Results,
	}, true
}

// ActiveElapsed returns the time spent actively taking the exam:
// end - start - totalPause, where end is now while running, the pause
// start while paused, and the submission instant once submitted.
func (s *ExamSession) ActiveElapsed(now time.Time) time.Duration {
	end := now
	switch p := s.Phase.(type) {
	case Paused:
		end = p.At
	case Submitted:
		end = p.At
	}

	wall := end.Sub(s.StartTime)
	if wall <= 0 {
		return 0
	}

	elapsed := wall - s.TotalPauseTime
	if elapsed < 0 {
		return 0
	}
	return min(elapsed, wall)
}

// Remaining returns the time left out of total, never negative.
func (s *ExamSession) Remaining(now time.Time, total time.Duration) time.Duration {
	return max(0, total-s.ActiveElapsed(now))
}

func (s *ExamSession) questionIndex(questionID string) int {
	for i, q := range s.Questions {
		if q.ID == questionID {
			return i
		}
	}
	return -1
}
