package checkers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/backend/pkg/storage/sqlite"
)

func TestGormChecker(t *testing.T) {
	db, err := sqlite.Open(":memory:", false)
	require.NoError(t, err)
	c := NewGormChecker(db)
	assert.Equal(t, "sqlite", c.Name())
	assert.NoError(t, c.Check(context.Background()))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	assert.Error(t, c.Check(context.Background()))
}
