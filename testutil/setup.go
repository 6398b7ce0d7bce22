package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/unbirthdayhatter/socialmorpho/cache/local"
	"github.com/unbirthdayhatter/socialmorpho/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// SetupTestDB opens a fresh in-memory SQLite database with the schema
// migrated. Each call gets its own database so parallel tests never share
// state.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))
	return db
}

// SetupTestCache returns an in-process cache, closed on test cleanup.
func SetupTestCache(t *testing.T) *local.LocalCache {
	t.Helper()
	c, err := local.NewCache(local.Config{})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}
