// Package dbtest opens throwaway SQLite databases with the storefront schema.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/SigNoz/storefront-go-app/internal/db"
	"github.com/SigNoz/storefront-go-app/pkg/config"
)

// Open returns a migrated database file under t.TempDir(), closed on cleanup.
func Open(t testing.TB) *db.DB {
	t.Helper()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storefront.db")
	database, err := db.Open(ctx, db.Options{
		Driver: db.DriverSQLite,
		DSN:    config.SQLiteDSN(path),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.InitSchema(ctx); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return database
}
