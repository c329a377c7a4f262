package storage

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/aliskhannn/pmp-prep-bot/internal/repository"
)

// MemoryKV is an in-memory repository.KV. Documents do not survive a restart.
type MemoryKV struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryKV creates a new MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		docs: make(map[string][]byte),
	}
}

// Get returns a copy of the stored document.
func (s *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return slices.Clone(doc), nil
}

// Update runs fn under the write lock.
func (s *MemoryKV) Update(ctx context.Context, key string, fn repository.UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(slices.Clone(s.docs[key]))
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	s.docs[key] = slices.Clone(next)
	return nil
}

// Delete removes a document. Missing keys are ignored.
func (s *MemoryKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, key)
	return nil
}

// Keys returns the sorted keys starting with prefix.
func (s *MemoryKV) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k := range s.docs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}
