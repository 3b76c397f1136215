package database

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"
)

var memCounter atomic.Int64

// OpenTest opens a private in-memory SQLite database with foreign keys on and
// the schema migrated. The database disappears when the test finishes.
func OpenTest(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:yamdb_test_%d?mode=memory&cache=shared&_foreign_keys=on", memCounter.Add(1))
	db, err := Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
