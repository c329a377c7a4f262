package telegram

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const msgSlowDown = "Too many requests, slow down a little."

type HandlerFunc func(ctx context.Context, chatID int64) error

func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if err := fn(ctx, chatID); err != nil {
			h.logger.Error("handle error",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
			h.sendError(chatID, msgInternalError)
			return nil
		}
		return nil
	}
}

// minLimiterIdle is the shortest idle time before a user's limiter is dropped.
const minLimiterIdle = 10 * time.Minute

// userLimiter throttles updates per user.
type userLimiter struct {
	mu        sync.Mutex
	every     time.Duration
	burst     int
	idle      time.Duration
	now       func() time.Time
	lastSweep time.Time
	limits    map[int64]*userLimit
}

type userLimit struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newUserLimiter allows one update per every with the given burst.
// Limiters idle long enough to have refilled their burst are evicted.
func newUserLimiter(every time.Duration, burst int) *userLimiter {
	return &userLimiter{
		every:  every,
		burst:  burst,
		idle:   max(minLimiterIdle, every*time.Duration(burst)),
		now:    time.Now,
		limits: make(map[int64]*userLimit),
	}
}

func (l *userLimiter) Allow(userID int64) bool {
	l.mu.Lock()
	now := l.now()
	l.evictIdle(now)

	entry, ok := l.limits[userID]
	if !ok {
		entry = &userLimit{limiter: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.limits[userID] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Len returns the number of tracked users.
func (l *userLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limits)
}

// evictIdle drops idle limiters at most once per idle period. Caller holds mu.
func (l *userLimiter) evictIdle(now time.Time) {
	if now.Sub(l.lastSweep) < l.idle {
		return
	}
	l.lastSweep = now
	for id, entry := range l.limits {
		if now.Sub(entry.lastSeen) >= l.idle {
			delete(l.limits, id)
		}
	}
}
