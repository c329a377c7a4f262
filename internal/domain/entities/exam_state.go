package entities

// ExamState is the persisted exam slice of a user: at most one active
// session plus the summaries of recently submitted exams.
type ExamState struct {
	Active  *ExamSession
	History []HistoryEntry
}

// NewExamState returns the state of a user with no exams.
func NewExamState() *ExamState {
	return &ExamState{History: []HistoryEntry{}}
}

// AppendHistory adds an entry and keeps only the last HistoryLimit entries.
func (s *ExamState) AppendHistory(entry HistoryEntry) {
	s.History = append(s.History, entry)
	if len(s.History) > HistoryLimit {
		s.History = s.History[len(s.History)-HistoryLimit:]
	}
}
