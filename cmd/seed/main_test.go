package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbooking/internal/db"
	"hotelbooking/internal/model"
	"hotelbooking/internal/repository"
)

func newStore(t *testing.T) *repository.Store {
	t.Helper()
	gormDB, err := db.NewSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	store := repository.NewGormStore(gormDB)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func TestLoadFixtures(t *testing.T) {
	f, err := loadFixtures("fixtures.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, f.Users)
	assert.Equal(t, model.RoleAdmin, f.Users[0].Role)
	assert.Len(t, f.Hotels, 3)

	_, err = loadFixtures(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	broken := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("users: [unclosed"), 0o600))
	_, err = loadFixtures(broken)
	assert.Error(t, err)
}

func TestSeedIsRepeatable(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	f, err := loadFixtures("fixtures.yaml")
	require.NoError(t, err)

	users, hotels, err := seed(ctx, store, f, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, len(f.Users), users)
	assert.Equal(t, len(f.Hotels), hotels)

	admin, err := store.Users.FindByEmail(ctx, "admin@hotels.local")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.NotEqual(t, "changeme123", admin.PasswordHash)

	users, hotels, err = seed(ctx, store, f, zerolog.Nop())
	require.NoError(t, err)
	assert.Zero(t, users)
	assert.Zero(t, hotels)
}

func TestSeedRejectsInvalidFixture(t *testing.T) {
	store := newStore(t)
	f := &Fixtures{Users: []UserFixture{{Email: "not-an-email", Pseudo: "x", Password: "1"}}}

	_, _, err := seed(context.Background(), store, f, zerolog.Nop())
	assert.Error(t, err)
}
