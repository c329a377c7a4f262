package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
)

// ErrSkipWrite can be returned by a mutate function to leave the stored
// document untouched.
var ErrSkipWrite = errors.New("skip write")

// ExamStateRepository stores the exam state of each user under pmp-exam:<user>.
type ExamStateRepository struct {
	kv  KV
	now func() time.Time
}

// NewExamStateRepository creates a new ExamStateRepository.
func NewExamStateRepository(kv KV, now func() time.Time) *ExamStateRepository {
	if now == nil {
		now = time.Now
	}
	return &ExamStateRepository{kv: kv, now: now}
}

// Get loads the exam state, or the empty state when none is stored.
func (r *ExamStateRepository) Get(ctx context.Context, userID int64) (*entities.ExamState, error) {
	data, err := r.kv.Get(ctx, Key(NamespaceExam, userID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get exam state: %w", err)
	}
	return DecodeExamState(data, r.now()), nil
}

// Update runs fn over the current state and stores the result atomically.
// If fn returns ErrSkipWrite nothing is written and Update returns nil.
func (r *ExamStateRepository) Update(
	ctx context.Context, userID int64, fn func(*entities.ExamState) error,
) error {
	err := r.kv.Update(ctx, Key(NamespaceExam, userID), func(current []byte) ([]byte, error) {
		state := DecodeExamState(current, r.now())
		if err := fn(state); err != nil {
			return nil, err
		}
		return EncodeExamState(state)
	})
	return unwrapSkip("update exam state", err)
}

// Delete removes the stored exam state.
func (r *ExamStateRepository) Delete(ctx context.Context, userID int64) error {
	if err := r.kv.Delete(ctx, Key(NamespaceExam, userID)); err != nil {
		return fmt.Errorf("delete exam state: %w", err)
	}
	return nil
}

// Users returns the ids of users with stored exam state.
func (r *ExamStateRepository) Users(ctx context.Context) ([]int64, error) {
	return usersIn(ctx, r.kv, NamespaceExam)
}

// ProgressRepository stores study progress under pmp-progress:<user>.
type ProgressRepository struct {
	kv KV
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(kv KV) *ProgressRepository {
	return &ProgressRepository{kv: kv}
}

// Get loads study progress, or empty progress when none is stored.
func (r *ProgressRepository) Get(ctx context.Context, userID int64) (*entities.StudyProgress, error) {
	data, err := r.kv.Get(ctx, Key(NamespaceProgress, userID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return DecodeProgress(data), nil
}

// Update runs fn over the current progress and stores the result atomically.
func (r *ProgressRepository) Update(
	ctx context.Context, userID int64, fn func(*entities.StudyProgress) error,
) error {
	err := r.kv.Update(ctx, Key(NamespaceProgress, userID), func(current []byte) ([]byte, error) {
		p := DecodeProgress(current)
		if err := fn(p); err != nil {
			return nil, err
		}
		return EncodeProgress(p)
	})
	return unwrapSkip("update progress", err)
}

// Delete removes stored progress.
func (r *ProgressRepository) Delete(ctx context.Context, userID int64) error {
	if err := r.kv.Delete(ctx, Key(NamespaceProgress, userID)); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

// ProfileRepository stores user profiles under pmp-user:<user>.
type ProfileRepository struct {
	kv KV
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(kv KV) *ProfileRepository {
	return &ProfileRepository{kv: kv}
}

// Get loads the profile, or the default profile when none is stored.
func (r *ProfileRepository) Get(ctx context.Context, userID int64) (*entities.Profile, error) {
	data, err := r.kv.Get(ctx, Key(NamespaceUser, userID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return DecodeProfile(data), nil
}

// Update runs fn over the current profile and stores the result atomically.
func (r *ProfileRepository) Update(
	ctx context.Context, userID int64, fn func(*entities.Profile) error,
) error {
	err := r.kv.Update(ctx, Key(NamespaceUser, userID), func(current []byte) ([]byte, error) {
		p := DecodeProfile(current)
		if err := fn(p); err != nil {
			return nil, err
		}
		return EncodeProfile(p)
	})
	return unwrapSkip("update profile", err)
}

// Delete removes the stored profile.
func (r *ProfileRepository) Delete(ctx context.Context, userID int64) error {
	if err := r.kv.Delete(ctx, Key(NamespaceUser, userID)); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

func unwrapSkip(op string, err error) error {
	if err == nil || errors.Is(err, ErrSkipWrite) {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func usersIn(ctx context.Context, kv KV, namespace string) ([]int64, error) {
	keys, err := kv.Keys(ctx, namespace+":")
	if err != nil {
		return nil, fmt.Errorf("list %s keys: %w", namespace, err)
	}
	users := make([]int64, 0, len(keys))
	for _, k := range keys {
		if id, ok := ParseKey(namespace, k); ok {
			users = append(users, id)
		}
	}
	return users, nil
}
