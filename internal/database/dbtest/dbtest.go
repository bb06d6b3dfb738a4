// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated SQLite in-memory database that is closed when the
// test finishes. Extra models (plugin tables) are migrated alongside the
// shared ones.
func New(tb testing.TB, extra ...interface{}) *gorm.DB {
	tb.Helper()

	db, err := database.Connect(&config.Config{
		DBDriver:   config.DriverSQLite,
		SQLitePath: ":memory:",
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	db.Logger = logger.Discard

	if err := database.Migrate(db, extra...); err != nil {
		tb.Fatalf("migrate: %v", err)
	}

	tb.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
