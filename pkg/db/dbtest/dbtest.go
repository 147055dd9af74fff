// Package dbtest opens migrated in-memory sqlite databases for repository
// tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/shoefinderz-backend/pkg/db"
	"github.com/angelmondragon/shoefinderz-backend/pkg/migrate"
)

// Open returns a client over a private in-memory database with every
// migration applied. The database is closed when the test ends.
func Open(t testing.TB) *db.Client {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	client, err := db.OpenSQLite(dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.SQL()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	if err := migrate.Up(context.Background(), sqlDB, client.Dialect()); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return client
}
