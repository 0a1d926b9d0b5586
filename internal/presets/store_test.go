package presets

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buffcomply/dashboard/models"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	path := filepath.Join(t.TempDir(), "nested", "presets.json")
	store := NewFileStore(path, logger)
	store.now = func() time.Time { return time.Date(2024, 2, 17, 10, 0, 0, 0, time.UTC) }
	return store, path
}

func TestFileStore_EmptyWhenMissing(t *testing.T) {
	store, _ := newTestStore(t)
	all, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFileStore_SaveUpsertsByName(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, models.Preset{Name: "Brasil", URLs: []string{"https://gainblers.com/br/"}})
	require.NoError(t, err)
	_, err = store.Save(ctx, models.Preset{Name: "Argentina"})
	require.NoError(t, err)

	saved, err := store.Save(ctx, models.Preset{
		Name:       " Brasil ",
		URLs:       []string{"https://betano.com/br/"},
		Categories: []models.Category{{Name: "Bonos", Keywords: []string{"bonus"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Brasil", saved.Name)
	assert.Equal(t, time.Date(2024, 2, 17, 10, 0, 0, 0, time.UTC), saved.UpdatedAt)

	all, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Argentina", all[0].Name)
	assert.Equal(t, []string{"https://betano.com/br/"}, all[1].URLs)

	got, err := store.Get(ctx, "Brasil")
	require.NoError(t, err)
	assert.Equal(t, []string{"bonus"}, got.AllKeywords())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestFileStore_Delete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, models.Preset{Name: "Brasil"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "Brasil"))
	assert.ErrorIs(t, store.Delete(ctx, "Brasil"), ErrPresetNotFound)

	_, err = store.Get(ctx, "Brasil")
	assert.ErrorIs(t, err, ErrPresetNotFound)
}

func TestFileStore_RejectsInvalidPreset(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, models.Preset{Name: "  "})
	assert.Error(t, err)

	_, err = store.Save(ctx, models.Preset{Name: "x", Categories: []models.Category{{Name: ""}}})
	assert.Error(t, err)
}

func TestFileStore_CorruptFile(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := store.Load(context.Background())
	assert.Error(t, err)
}
