package service

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultWatchSchedule checks running exams once per second.
const DefaultWatchSchedule = "@every 1s"

// ExamWatcher submits exams whose time has run out and notifies their users.
type ExamWatcher struct {
	exams    *ExamService
	notifier ExamNotifier
	schedule string
	logger   *zap.Logger
}

// NewExamWatcher creates a new exam watcher.
func NewExamWatcher(exams *ExamService, schedule string, logger *zap.Logger) *ExamWatcher {
	if schedule == "" {
		schedule = DefaultWatchSchedule
	}
	return &ExamWatcher{
		exams:    exams,
		schedule: schedule,
		logger:   logger,
	}
}

// SetNotifier sets the notifier (called after handler is created).
func (w *ExamWatcher) SetNotifier(notifier ExamNotifier) {
	w.notifier = notifier
}

// Start runs the watch loop until ctx is done.
func (w *ExamWatcher) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(w.schedule, func() {
		if n := w.Sweep(ctx); n > 0 {
			w.logger.Info("expired exams submitted", zap.Int("count", n))
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	w.logger.Info("exam watcher started", zap.String("schedule", w.schedule))

	<-ctx.Done()

	<-c.Stop().Done()
	w.logger.Info("exam watcher stopped")
	return nil
}

// Sweep submits every expired exam once and returns how many were submitted.
func (w *ExamWatcher) Sweep(ctx context.Context) int {
	users, err := w.exams.Users(ctx)
	if err != nil {
		w.logger.Error("failed to list exam users", zap.Error(err))
		return 0
	}

	submitted := 0
	for _, userID := range users {
		if ctx.Err() != nil {
			break
		}

		entry, err := w.exams.SubmitIfExpired(ctx, userID)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				w.logger.Error("failed to submit expired exam",
					zap.Int64("user_id", userID),
					zap.Error(err),
				)
			}
			continue
		}
		if entry == nil {
			continue
		}
		submitted++

		if w.notifier == nil {
			continue
		}
		if err := w.notifier.NotifyExamExpired(userID, *entry); err != nil {
			w.logger.Warn("failed to notify user about expired exam",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
	}

	return submitted
}
