package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
)

func TestBackupService_ExportImport(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	src := newFixture()
	profiles := NewProfileService(src.profiles)
	cards := src.flashcardService()
	progress := src.progressService()

	require.NoError(t, profiles.SetName(ctx, user, strings.Repeat("M", entities.MaxNameLength+10)))
	require.NoError(t, profiles.SetTheme(ctx, user, "dark"))
	_, err := profiles.AddDonationCode(ctx, user, "THANKS-1")
	require.NoError(t, err)
	_, err = cards.Review(ctx, user, "card-2", entities.RatingEasy)
	require.NoError(t, err)
	_, err = progress.MarkQuestionCompleted(ctx, user, "q-1")
	require.NoError(t, err)
	_, err = progress.MarkMaterialRead(ctx, user, "m-1")
	require.NoError(t, err)
	_, err = progress.SetFlashcardRating(ctx, user, "card-3", 4)
	require.NoError(t, err)

	backup := NewBackupService(src.progress, src.profiles, zap.NewNop())
	backup.SetClock(src.clock.Now)

	data, err := backup.Export(ctx, user)
	require.NoError(t, err)

	var first Backup
	require.NoError(t, json.Unmarshal(data, &first))
	assert.Equal(t, BackupVersion, first.Version)

	dst := newFixture()
	restore := NewBackupService(dst.progress, dst.profiles, zap.NewNop())
	restore.SetClock(src.clock.Now)
	require.NoError(t, restore.Import(ctx, 7, data))

	p, err := dst.profiles.Get(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, []rune(p.Name), entities.MaxNameLength)
	assert.Equal(t, entities.ThemeDark, p.Theme)
	assert.Equal(t, []string{"THANKS-1"}, p.DonationCodes)

	restored, err := dst.progress.Get(ctx, 7)
	require.NoError(t, err)
	entry, ok := restored.Box("card-2")
	require.True(t, ok)
	assert.Equal(t, 2, entry.Box)

	again, err := restore.Export(ctx, 7)
	require.NoError(t, err)

	var second Backup
	require.NoError(t, json.Unmarshal(again, &second))
	assert.JSONEq(t, string(first.Profile), string(second.Profile))
	assert.JSONEq(t, string(first.Progress), string(second.Progress))
	assert.True(t, first.ExportedAt.Equal(second.ExportedAt))
}

func TestBackupService_ImportPartial(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	require.NoError(t, NewProfileService(f.profiles).SetName(ctx, user, "Kept"))

	backup := NewBackupService(f.progress, f.profiles, zap.NewNop())
	err := backup.Import(ctx, user, []byte(`{"progress": {"readMaterials": ["m1", "m1", 3]}}`))
	require.NoError(t, err)

	p, err := f.profiles.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "Kept", p.Name, "absent profile half is left untouched")

	progress, err := f.progress.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, progress.ReadMaterials)
}

func TestBackupService_ImportRejects(t *testing.T) {
	t.Parallel()

	backup := NewBackupService(newFixture().progress, newFixture().profiles, zap.NewNop())

	for _, data := range []string{``, `not json`, `[]`, `{}`, `{"profile": "x", "progress": 1}`} {
		err := backup.Import(context.Background(), user, []byte(data))
		assert.ErrorIs(t, err, ErrInvalidBackup, data)
	}
}
