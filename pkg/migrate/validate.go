package migrate

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/pressly/goose/v3"
)

var migrationName = regexp.MustCompile(`^[0-9]{14}_[a-z0-9_]+\.sql$`)

var requiredAnnotations = [][]byte{
	[]byte("-- +goose Up"),
	[]byte("-- +goose Down"),
}

// ValidateDir checks every .sql file in dir for a timestamped name, a unique
// version and both goose annotations. It returns the versions ascending.
func ValidateDir(fsys fs.FS, dir string) ([]int64, error) {
	if dir == "" {
		return nil, errors.New("dir is required")
	}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	owner := make(map[int64]string)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".sql" {
			continue
		}
		if !migrationName.MatchString(name) {
			return nil, fmt.Errorf("%s: expected YYYYMMDDHHMMSS_name.sql", name)
		}
		version, err := goose.NumericComponent(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if prev, dup := owner[version]; dup {
			return nil, fmt.Errorf("version %d used by both %s and %s", version, prev, name)
		}
		owner[version] = name

		if err := checkAnnotations(fsys, path.Join(dir, name)); err != nil {
			return nil, err
		}
	}

	versions := make([]int64, 0, len(owner))
	for v := range owner {
		versions = append(versions, v)
	}
	slices.Sort(versions)
	return versions, nil
}

func checkAnnotations(fsys fs.FS, file string) error {
	body, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	var missing []string
	for _, want := range requiredAnnotations {
		if !bytes.Contains(body, want) {
			missing = append(missing, string(want))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing %s", path.Base(file), strings.Join(missing, ", "))
	}
	return nil
}

// ValidateEmbedded validates each dialect tree and requires all of them to
// carry the same versions.
func ValidateEmbedded() error {
	var baseline []int64
	for i, d := range dialects {
		versions, err := ValidateDir(embedded, path.Join("migrations", d.tree))
		if err != nil {
			return fmt.Errorf("%s: %w", d.tree, err)
		}
		if i == 0 {
			baseline = versions
			continue
		}
		if !slices.Equal(baseline, versions) {
			return fmt.Errorf("%s migrations diverge from %s: %v vs %v", d.tree, dialects[0].tree, versions, baseline)
		}
	}
	return nil
}
