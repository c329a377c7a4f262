package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/internal/repository"
)

func openTestKV(t *testing.T) *KV {
	t.Helper()

	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewKV(db)
}

func TestKV_GetUpdateDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := openTestKV(t)

	_, err := kv.Get(ctx, "pmp-exam:1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, kv.Update(ctx, "pmp-exam:1", func(current []byte) ([]byte, error) {
		assert.Nil(t, current)
		return []byte(`{"n":1}`), nil
	}))
	require.NoError(t, kv.Update(ctx, "pmp-exam:1", func(current []byte) ([]byte, error) {
		assert.Equal(t, `{"n":1}`, string(current))
		return []byte(`{"n":2}`), nil
	}))

	got, err := kv.Get(ctx, "pmp-exam:1")
	require.NoError(t, err)
	assert.Equal(t, `{"n":2}`, string(got))

	require.NoError(t, kv.Delete(ctx, "pmp-exam:1"))
	_, err = kv.Get(ctx, "pmp-exam:1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestKV_UpdateSkipsNilDocument(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := openTestKV(t)

	require.NoError(t, kv.Update(ctx, "k", func([]byte) ([]byte, error) { return nil, nil }))

	keys, err := kv.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestKV_Keys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := openTestKV(t)

	for _, k := range []string{"pmp-exam:2", "pmp-user:1", "pmp-exam:10"} {
		require.NoError(t, kv.Update(ctx, k, func([]byte) ([]byte, error) { return []byte("{}"), nil }))
	}

	keys, err := kv.Keys(ctx, "pmp-exam:")
	require.NoError(t, err)
	assert.Equal(t, []string{"pmp-exam:10", "pmp-exam:2"}, keys)
}

func TestKV_WithRepositories(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewProgressRepository(openTestKV(t))

	require.NoError(t, repo.Update(ctx, 5, func(p *entities.StudyProgress) error {
		p.MarkMaterialRead("process-4")
		return nil
	}))

	p, err := repo.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"process-4"}, p.ReadMaterials)
}
