package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserLimiter(t *testing.T) {
	t.Parallel()

	l := newUserLimiter(time.Hour, 2)

	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1), "burst exhausted")
	assert.True(t, l.Allow(2), "users are limited independently")
}

func TestUserLimiter_EvictsIdleUsers(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_740_819_600, 0)
	l := newUserLimiter(time.Second, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(2))
	assert.False(t, l.Allow(1))

	now = now.Add(minLimiterIdle - time.Second)
	assert.True(t, l.Allow(3))
	assert.Equal(t, 3, l.Len())

	now = now.Add(time.Second)
	assert.True(t, l.Allow(4))
	assert.Equal(t, 2, l.Len(), "users 1 and 2 were idle and are dropped")

	now = now.Add(minLimiterIdle)
	assert.True(t, l.Allow(1), "an evicted user starts with a full burst")
	assert.Equal(t, 1, l.Len())
}
