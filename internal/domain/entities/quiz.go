package entities

import "slices"

// QuizSession is an untimed practice run over a shuffled deck.
// It tracks the score and the current run of correct answers.
type QuizSession struct {
	Domain       DomainID          // empty for all domains
	Deck         []Question        // shuffled questions
	CurrentIndex int               // position in the deck
	Answers      map[string]string // question id -> chosen option
	AnswerOrder  []string          // question ids in the order first answered
}

// NewQuizSession creates a practice session over a shuffled deck.
func NewQuizSession(domain DomainID, deck []Question) *QuizSession {
	return &QuizSession{
		Domain:      domain,
		Deck:        deck,
		Answers:     make(map[string]string),
		AnswerOrder: []string{},
	}
}

// QuizAnswer is the feedback for one practice answer.
type QuizAnswer struct {
	Question  Question
	Chosen    string
	IsCorrect bool
}

// Current returns the question under the cursor.
func (qs *QuizSession) Current() (Question, bool) {
	if qs.CurrentIndex < 0 || qs.CurrentIndex >= len(qs.Deck) {
		return Question{}, false
	}
	return qs.Deck[qs.CurrentIndex], true
}

// Answer records an answer for the current question. Answering again overwrites.
func (qs *QuizSession) Answer(optionID string) (QuizAnswer, bool) {
	q, ok := qs.Current()
	if !ok || !q.HasOption(optionID) {
		return QuizAnswer{}, false
	}

	qs.Answers[q.ID] = optionID
	if !slices.Contains(qs.AnswerOrder, q.ID) {
		qs.AnswerOrder = append(qs.AnswerOrder, q.ID)
	}

	return QuizAnswer{Question: q, Chosen: optionID, IsCorrect: optionID == q.CorrectOptionID}, true
}

// Next advances the cursor. It returns false at the end of the deck.
func (qs *QuizSession) Next() bool {
	if qs.CurrentIndex >= len(qs.Deck)-1 {
		return false
	}
	qs.CurrentIndex++
	return true
}

// Score returns the number of correctly answered questions.
func (qs *QuizSession) Score() int {
	score := 0
	for _, q := range qs.Deck {
		if a, ok := qs.Answers[q.ID]; ok && a == q.CorrectOptionID {
			score++
		}
	}
	return score
}

// Streak returns the number of consecutive correct answers, most recent first.
func (qs *QuizSession) Streak() int {
	correct := make(map[string]string, len(qs.Deck))
	for _, q := range qs.Deck {
		correct[q.ID] = q.CorrectOptionID
	}

	streak := 0
	for i := len(qs.AnswerOrder) - 1; i >= 0; i-- {
		id := qs.AnswerOrder[i]
		if qs.Answers[id] != correct[id] {
			break
		}
		streak++
	}
	return streak
}
