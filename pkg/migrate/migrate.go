package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/shoefinderz-backend/pkg/db"
)

// DefaultDir is the source tree location new migrations are written to.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embedded embed.FS

// goose keeps its dialect and base FS in package globals.
var gooseMu sync.Mutex

// FS returns the embedded migrations.
func FS() fs.FS {
	return embedded
}

// dialects lists the supported dialects with their migration tree name.
// Every tree must carry the same versions.
var dialects = []struct{ name, tree string }{
	{db.DialectPostgres, "postgres"},
	{db.DialectSQLite, "sqlite"},
}

// DirFor returns the embedded directory holding migrations for dialect.
func DirFor(dialect string) (string, error) {
	for _, d := range dialects {
		if d.name == dialect {
			return path.Join("migrations", d.tree), nil
		}
	}
	return "", fmt.Errorf("unsupported migration dialect %q", dialect)
}

// Up applies every pending migration for dialect.
func Up(ctx context.Context, sqlDB *sql.DB, dialect string) error {
	return Run(ctx, sqlDB, dialect, "up")
}

// Run executes a standard goose command against the embedded migrations.
func Run(ctx context.Context, sqlDB *sql.DB, dialect string, command string, args ...string) error {
	if sqlDB == nil {
		return fmt.Errorf("db is required")
	}
	dir, err := DirFor(dialect)
	if err != nil {
		return err
	}

	return withGoose(dialect, func() error {
		// RunContext prints status output to stdout (goose internal)
		if err := goose.RunContext(ctx, command, sqlDB, dir, args...); err != nil {
			return fmt.Errorf("goose %s: %w", command, err)
		}
		return nil
	})
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, sqlDB *sql.DB, dialect string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}
	dir, err := DirFor(dialect)
	if err != nil {
		return err
	}

	return withGoose(dialect, func() error {
		current, err := goose.GetDBVersionContext(ctx, sqlDB)
		if err != nil {
			return fmt.Errorf("get db version: %w", err)
		}

		switch {
		case current == target:
			return nil
		case current < target:
			if err := goose.UpToContext(ctx, sqlDB, dir, target); err != nil {
				return fmt.Errorf("goose up-to %d: %w", target, err)
			}
			return nil
		default:
			if err := goose.DownToContext(ctx, sqlDB, dir, target); err != nil {
				return fmt.Errorf("goose down-to %d: %w", target, err)
			}
			return nil
		}
	})
}

// Version reports the currently applied migration version.
func Version(ctx context.Context, sqlDB *sql.DB, dialect string) (int64, error) {
	var version int64
	err := withGoose(dialect, func() error {
		v, err := goose.GetDBVersionContext(ctx, sqlDB)
		version = v
		return err
	})
	return version, err
}

func withGoose(dialect string, fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedded)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return fn()
}
