package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/internal/repository"
	"github.com/aliskhannn/pmp-prep-bot/internal/storage"
)

func TestExamStateRepository_SkipWrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := storage.NewMemoryKV()
	repo := repository.NewExamStateRepository(kv, time.Now)

	err := repo.Update(ctx, 1, func(*entities.ExamState) error { return repository.ErrSkipWrite })
	require.NoError(t, err)

	_, err = kv.Get(ctx, repository.Key(repository.NamespaceExam, 1))
	assert.ErrorIs(t, err, repository.ErrNotFound, "skipped update must not create a document")

	users, err := repo.Users(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestExamStateRepository_PropagatesErrors(t *testing.T) {
	t.Parallel()

	repo := repository.NewExamStateRepository(storage.NewMemoryKV(), nil)
	boom := errors.New("boom")

	err := repo.Update(context.Background(), 1, func(*entities.ExamState) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestExamStateRepository_Users(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := storage.NewMemoryKV()
	repo := repository.NewExamStateRepository(kv, time.Now)
	progress := repository.NewProgressRepository(kv)

	for _, id := range []int64{7, 3} {
		require.NoError(t, repo.Update(ctx, id, func(*entities.ExamState) error { return nil }))
	}
	require.NoError(t, progress.Update(ctx, 99, func(p *entities.StudyProgress) error {
		p.MarkMaterialRead("m1")
		return nil
	}))

	users, err := repo.Users(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{3, 7}, users)

	require.NoError(t, repo.Delete(ctx, 3))
	users, err = repo.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, users)
}

func TestProgressRepository_ConcurrentUpdates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewProgressRepository(storage.NewMemoryKV())

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Update(ctx, 1, func(p *entities.StudyProgress) error {
				p.MarkQuestionCompleted(string(rune('A' + i)))
				return nil
			})
		}()
	}
	wg.Wait()

	p, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, p.CompletedQuestions, 50)
}

func TestProfileRepository_DefaultsAndUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewProfileRepository(storage.NewMemoryKV())

	p, err := repo.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, entities.ThemeSystem, p.Theme)

	require.NoError(t, repo.Update(ctx, 5, func(p *entities.Profile) error {
		p.SetName("Dana")
		p.SetTheme("dark")
		return nil
	}))

	p, err = repo.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Dana", p.Name)
	assert.Equal(t, entities.ThemeDark, p.Theme)
}
