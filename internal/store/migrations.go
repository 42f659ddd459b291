package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// ErrSchemaTooNew reports a database written by a newer speakertag build.
var ErrSchemaTooNew = errors.New("database schema is newer than this build")

//go:embed migrations/*.sql
var schemaFS embed.FS

// schemaStep is one embedded SQL file, identified by its file stem.
type schemaStep struct {
	version string
	body    string
}

// schemaSteps returns the embedded steps in version order.
func schemaSteps() ([]schemaStep, error) {
	files, err := fs.Glob(schemaFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list schema files: %w", err)
	}
	sort.Strings(files)

	steps := make([]schemaStep, 0, len(files))
	for _, file := range files {
		body, err := schemaFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read schema file %s: %w", file, err)
		}
		steps = append(steps, schemaStep{
			version: strings.TrimSuffix(path.Base(file), ".sql"),
			body:    string(body),
		})
	}
	return steps, nil
}

// appliedVersions lists the versions recorded in schema_migrations.
func appliedVersions(ctx context.Context, q interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}) (map[string]struct{}, error) {
	rows, err := q.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query schema versions: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]struct{})
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan schema version: %w", err)
		}
		applied[version] = struct{}{}
	}
	return applied, rows.Err()
}

// upgradeSchema brings the database up to the embedded schema. A database
// carrying a version this build does not know is refused untouched.
func (s *Store) upgradeSchema(ctx context.Context) error {
	steps, err := schemaSteps()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	applied, err := appliedVersions(ctx, tx)
	if err != nil {
		return err
	}

	known := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		known[step.version] = struct{}{}
	}
	var unknown []string
	for version := range applied {
		if _, ok := known[version]; !ok {
			unknown = append(unknown, version)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %s has %s", ErrSchemaTooNew, s.path, strings.Join(unknown, ", "))
	}

	for _, step := range steps {
		if _, done := applied[step.version]; done {
			continue
		}
		if _, err := tx.ExecContext(ctx, step.body); err != nil {
			return fmt.Errorf("apply schema %s: %w", step.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", step.version); err != nil {
			return fmt.Errorf("record schema %s: %w", step.version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// SchemaVersion reports the newest schema version recorded in the database.
func (s *Store) SchemaVersion(ctx context.Context) (string, error) {
	applied, err := appliedVersions(ctx, s.db)
	if err != nil {
		return "", err
	}
	latest := ""
	for version := range applied {
		if version > latest {
			latest = version
		}
	}
	return latest, nil
}
