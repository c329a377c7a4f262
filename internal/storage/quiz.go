package storage

import (
	"sync"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
)

// QuizStorage provides in-memory storage for practice sessions by user ID.
type QuizStorage struct {
	mu       sync.RWMutex
	sessions map[int64]*entities.QuizSession
}

// NewQuizStorage creates a new QuizStorage.
func NewQuizStorage() *QuizStorage {
	return &QuizStorage{
		sessions: make(map[int64]*entities.QuizSession),
	}
}

// Store saves the practice session of a user.
func (s *QuizStorage) Store(userID int64, session *entities.QuizSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session
}

// Get retrieves the practice session of a user.
func (s *QuizStorage) Get(userID int64) (*entities.QuizSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	return session, ok
}

// Update runs fn on the stored session under the write lock.
func (s *QuizStorage) Update(userID int64, fn func(*entities.QuizSession) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[userID]
	if !ok {
		return false
	}
	return fn(session)
}

// Delete removes the practice session of a user.
func (s *QuizStorage) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
