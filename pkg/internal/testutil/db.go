package testutil

import (
	"fmt"
	"testing"

	"github.com/readlex/readlex/pkg/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var nextDBID int

// SetupTestDB opens a private in-memory sqlite database, migrates the Word
// schema, and wires it into db.DB for the duration of the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	nextDBID++
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", nextDBID)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := gdb.AutoMigrate(&db.Word{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	db.DB = gdb

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to access underlying DB: %v", err)
	}

	t.Cleanup(func() {
		if err := sqlDB.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}
		db.DB = nil
	})

	return gdb
}
