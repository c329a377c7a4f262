package redis

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/pmp-prep-bot/internal/repository"
)

// Runs against a live server: REDIS_TEST_ADDR=localhost:6379 go test ./internal/infra/redis
func openTestKV(t *testing.T) (*KV, string) {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client, err := NewClient(context.Background(), Config{Addr: addr, DB: 15})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	prefix := fmt.Sprintf("pmp-test-%d:", time.Now().UnixNano())
	t.Cleanup(func() {
		keys, _ := NewKV(client).Keys(context.Background(), prefix)
		if len(keys) > 0 {
			client.Del(context.Background(), keys...)
		}
	})
	return NewKV(client), prefix
}

func TestKV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, prefix := openTestKV(t)
	key := prefix + "1"

	_, err := kv.Get(ctx, key)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, kv.Update(ctx, key, func(current []byte) ([]byte, error) {
		assert.Nil(t, current)
		return []byte(`{"n":1}`), nil
	}))

	got, err := kv.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"n":1}`, string(got))

	keys, err := kv.Keys(ctx, prefix)
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)

	require.NoError(t, kv.Delete(ctx, key))
	_, err = kv.Get(ctx, key)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestKV_ConcurrentUpdatesAreSerialized(t *testing.T) {
	ctx := context.Background()
	kv, prefix := openTestKV(t)
	key := prefix + "counter"

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = kv.Update(ctx, key, func(current []byte) ([]byte, error) {
				n, _ := strconv.Atoi(string(current))
				return []byte(strconv.Itoa(n + 1)), nil
			})
		}()
	}
	wg.Wait()

	got, err := kv.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "8", string(got))
}
