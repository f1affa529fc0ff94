package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menuplanner/internal/config"
	"menuplanner/internal/database"
	"menuplanner/internal/models"
	"menuplanner/internal/planner"
	"menuplanner/internal/store"
)

func storageConfig(path string) *config.Config {
	cfg := config.Default()
	cfg.Storage.Path = path
	return cfg
}

func openSession(t *testing.T, cfg *config.Config) (*planner.Session, store.Store) {
	t.Helper()
	st := openStore(cfg, zerolog.Nop())
	s := planner.Open(context.Background(), planner.Options{Store: st, Logger: zerolog.Nop()})
	t.Cleanup(func() { s.Close() })
	return s, st
}

func assertEmpty(t *testing.T, s *planner.Session) {
	t.Helper()
	assert.Empty(t, s.Dishes())
	assert.Empty(t, s.Products())

	menu := s.Menu()
	assert.Len(t, menu, len(models.Days))
	for _, day := range models.Days {
		for _, meal := range models.Meals {
			_, planned, err := s.Meal(day, meal)
			require.NoError(t, err)
			assert.False(t, planned, "%s %s", day, meal)
		}
	}
}

func TestOpenStore_UnreadableFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auto_save", "menu_data.db")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("garbage!"), 1024), 0o644))

	s, st := openSession(t, storageConfig(path))
	assert.IsType(t, &store.SQLStore{}, st)
	assertEmpty(t, s)

	moved, err := filepath.Glob(path + ".unreadable-*")
	require.NoError(t, err)
	assert.Len(t, moved, 1)

	require.NoError(t, s.AddProduct(context.Background(), "rice", models.MustQuantity(1, models.UnitKilogram)))
	require.NoError(t, s.Close())

	reopened, _ := openSession(t, storageConfig(path))
	_, ok := reopened.Product("rice")
	assert.True(t, ok)
}

func TestOpenStore_ParentIsFileFallsBackToMemory(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "auto_save")
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0o644))

	s, st := openSession(t, storageConfig(filepath.Join(parent, "menu_data.db")))
	assert.IsType(t, &store.MemoryStore{}, st)
	assertEmpty(t, s)

	require.NoError(t, s.AddProduct(context.Background(), "rice", models.MustQuantity(1, models.UnitKilogram)))
	_, ok := s.Product("rice")
	assert.True(t, ok)
}

func TestOpenStore_NewerSchemaStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu_data.db")

	db, err := database.Open(path, database.Options{})
	require.NoError(t, err)
	sqlStore := store.NewSQLStore(db, store.SQLOptions{})
	snap := store.NewSnapshot()
	snap.Products["rice"] = models.MustQuantity(1, models.UnitKilogram)
	require.NoError(t, sqlStore.Save(context.Background(), snap))
	require.NoError(t, db.Exec("UPDATE snapshot_meta SET schema_version = ?", store.SchemaVersion+1).Error)
	require.NoError(t, sqlStore.Close())

	s, _ := openSession(t, storageConfig(path))
	assertEmpty(t, s)
}

func TestOpenStore_MemoryDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = config.DriverMemory

	assert.IsType(t, &store.MemoryStore{}, openStore(cfg, zerolog.Nop()))
}
