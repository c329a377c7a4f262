package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/internal/repository"
	"github.com/aliskhannn/pmp-prep-bot/internal/storage"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyExamExpired(userID int64, entry entities.HistoryEntry) error {
	args := m.Called(userID, entry)
	return args.Error(0)
}

func TestExamWatcher_Sweep(t *testing.T) {
	t.Parallel()

	f := newFixture()
	exams := f.examService(fullBank())
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		_, err := exams.Start(ctx, id)
		require.NoError(t, err)
	}
	_, err := exams.Pause(ctx, 2)
	require.NoError(t, err)

	notifier := &mockNotifier{}
	notifier.On("NotifyExamExpired", int64(1), mock.AnythingOfType("entities.HistoryEntry")).Return(nil).Once()
	notifier.On("NotifyExamExpired", int64(3), mock.AnythingOfType("entities.HistoryEntry")).Return(errors.New("blocked")).Once()

	w := NewExamWatcher(exams, "", zap.NewNop())
	w.SetNotifier(notifier)

	assert.Zero(t, w.Sweep(ctx))

	f.clock.Advance(entities.ExamDuration)
	assert.Equal(t, 2, w.Sweep(ctx), "paused exam keeps its time")
	assert.Zero(t, w.Sweep(ctx), "each exam is submitted once")

	notifier.AssertExpectations(t)

	paused, err := exams.Active(ctx, 2)
	require.NoError(t, err)
	assert.True(t, paused.IsPaused())
}

func TestExamWatcher_StartStopsOnCancel(t *testing.T) {
	t.Parallel()

	f := newFixture()
	w := NewExamWatcher(f.examService(fullBank()), "@every 1h", zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var runErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = w.Start(ctx)
	}()

	cancel()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.NoError(t, runErr)
}

func TestExamWatcher_BadSchedule(t *testing.T) {
	t.Parallel()

	w := NewExamWatcher(newFixture().examService(fullBank()), "every now and then", zap.NewNop())
	assert.Error(t, w.Start(context.Background()))
}

// countingKV counts read-modify-write calls on top of MemoryKV.
type countingKV struct {
	*storage.MemoryKV
	updates atomic.Int64
}

func (c *countingKV) Update(ctx context.Context, key string, fn repository.UpdateFunc) error {
	c.updates.Add(1)
	return c.MemoryKV.Update(ctx, key, fn)
}

func TestExamWatcher_SweepOnlyLocksExpiredExams(t *testing.T) {
	t.Parallel()

	f := newFixture()
	kv := &countingKV{MemoryKV: storage.NewMemoryKV()}
	exams := NewExamService(repository.NewExamStateRepository(kv, f.clock.Now), fullBank(), f.selector, entities.ExamDuration, zap.NewNop())
	exams.SetClock(f.clock.Now)
	ctx := context.Background()

	for _, id := range []int64{1, 2} {
		_, err := exams.Start(ctx, id)
		require.NoError(t, err)
	}
	_, err := exams.Submit(ctx, 2)
	require.NoError(t, err)

	w := NewExamWatcher(exams, "", zap.NewNop())

	before := kv.updates.Load()
	for range 5 {
		assert.Zero(t, w.Sweep(ctx))
	}
	assert.Equal(t, before, kv.updates.Load(), "running and history-only exams are only read")

	f.clock.Advance(entities.ExamDuration)
	assert.Equal(t, 1, w.Sweep(ctx))
	assert.Equal(t, before+1, kv.updates.Load())
}
