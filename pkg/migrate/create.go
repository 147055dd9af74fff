package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

const migrationTemplate = `-- +goose Up
-- +goose StatementBegin
-- %[1]s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %[1]s
-- +goose StatementEnd
`

// CreateSQLMigration writes an empty goose migration into every dialect
// tree under dir, named <YYYYMMDDHHMMSS>_<slug>.sql. It refuses to
// overwrite an existing file.
func CreateSQLMigration(dir, name string, now time.Time) ([]string, error) {
	if dir == "" {
		return nil, errors.New("dir is required")
	}
	slug := slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("name %q has no usable characters", name)
	}
	filename := now.UTC().Format(versionLayout) + "_" + slug + ".sql"
	body := []byte(fmt.Sprintf(migrationTemplate, slug))

	var written []string
	for _, d := range dialects {
		target := filepath.Join(dir, d.tree, filename)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, fmt.Errorf("mkdir %s: %w", d.tree, err)
		}
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			return written, fmt.Errorf("create %s: %w", target, err)
		}
		_, err = f.Write(body)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return written, fmt.Errorf("write %s: %w", target, err)
		}
		written = append(written, target)
	}
	return written, nil
}

// slugify lowercases name and collapses every run of characters outside
// [a-z0-9] into a single underscore.
func slugify(name string) string {
	var b strings.Builder
	gap := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if gap && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			gap = false
			continue
		}
		gap = true
	}
	return b.String()
}
