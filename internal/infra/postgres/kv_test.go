package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/pmp-prep-bot/internal/repository"
)

// Runs against a live database: DATABASE_TEST_URL=postgres://... go test ./internal/infra/postgres
func openTestKV(t *testing.T) (*KV, string) {
	t.Helper()

	dsn := os.Getenv("DATABASE_TEST_URL")
	if dsn == "" {
		t.Skip("DATABASE_TEST_URL not set")
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, dsn, PoolConfig{MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	kv := NewKV(pool)
	require.NoError(t, kv.Migrate(ctx))

	prefix := fmt.Sprintf("pmp-test-%d:", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM app_state WHERE starts_with(key, $1)`, prefix)
	})
	return kv, prefix
}

func TestKV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, prefix := openTestKV(t)
	key := prefix + "1"

	_, err := kv.Get(ctx, key)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, kv.Update(ctx, key, func(current []byte) ([]byte, error) {
		assert.Nil(t, current)
		return []byte(`{"n": 1}`), nil
	}))

	got, err := kv.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n": 1}`, string(got))

	keys, err := kv.Keys(ctx, prefix)
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)
}

func TestKV_SkippedWriteLeavesNoRow(t *testing.T) {
	ctx := context.Background()
	kv, prefix := openTestKV(t)

	require.NoError(t, kv.Update(ctx, prefix+"x", func([]byte) ([]byte, error) { return nil, nil }))

	keys, err := kv.Keys(ctx, prefix)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
