package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbooking/internal/model"
)

func TestSQLiteMigrate(t *testing.T) {
	gormDB, err := NewSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, Migrate(gormDB))

	m := gormDB.Migrator()
	assert.True(t, m.HasTable(&model.User{}))
	assert.True(t, m.HasTable(&model.Hotel{}))
	assert.True(t, m.HasTable(&model.Booking{}))

	require.NoError(t, Reset(gormDB))
	assert.False(t, m.HasTable(&model.Booking{}))
}
