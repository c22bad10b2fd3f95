package postgres

import (
	"cmp"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migration is one schema step, read from schema/NNNN_name.{up,down}.sql.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string

	// Set by Status.
	Applied   bool
	AppliedAt time.Time
}

// LoadMigrations reads every *.sql file under dir, pairing up and down
// scripts by version. Each version needs an up script.
func LoadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}

	byVersion := make(map[int]*Migration)
	for _, file := range files {
		base := strings.TrimSuffix(path.Base(file), ".sql")
		stem, dirn, ok := cutLast(base, ".")
		if !ok || (dirn != "up" && dirn != "down") {
			return nil, fmt.Errorf("%w: %s: want NNNN_name.up.sql or .down.sql", ErrMigrationFailed, file)
		}
		num, name, ok := strings.Cut(stem, "_")
		version, err := strconv.Atoi(num)
		if !ok || err != nil || version <= 0 {
			return nil, fmt.Errorf("%w: %s: bad version prefix", ErrMigrationFailed, file)
		}
		body, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, err
		}

		m := byVersion[version]
		if m == nil {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		}
		if dirn == "up" {
			m.Up = string(body)
		} else {
			m.Down = string(body)
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" {
			return nil, fmt.Errorf("%w: version %d has no up script", ErrMigrationFailed, m.Version)
		}
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })
	return out, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

// GetMigrations returns the embedded schema. The files are fixed at build
// time, so a malformed set is a programming error.
func GetMigrations() []Migration {
	migs, err := LoadMigrations(schemaFS, "schema")
	if err != nil {
		panic(err)
	}
	return migs
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATOR
// ══════════════════════════════════════════════════════════════════════════════

const migrationsTable = "schema_migrations"

// Migrator applies migrations and records each in schema_migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
}

func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn, migrations: GetMigrations()}
}

// applied ensures the bookkeeping table and returns applied versions.
func (m *Migrator) applied(ctx context.Context) (map[int]time.Time, error) {
	_, err := m.conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+migrationsTable+` (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrMigrationFailed, migrationsTable, err)
	}

	rows, err := m.conn.Query(ctx, `SELECT version, applied_at FROM `+migrationsTable)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrMigrationFailed, migrationsTable, err)
	}
	done := make(map[int]time.Time)
	var (
		v  int
		at time.Time
	)
	_, err = pgx.ForEachRow(rows, []any{&v, &at}, func() error {
		done[v] = at
		return nil
	})
	return done, err
}

// Migrate applies pending migrations in version order, each in its own
// transaction, and returns how many ran.
func (m *Migrator) Migrate(ctx context.Context) (int, error) {
	done, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}

	ran := 0
	for _, mig := range m.migrations {
		if _, ok := done[mig.Version]; ok {
			continue
		}
		err := m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.Up); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO `+migrationsTable+` (version, name) VALUES ($1, $2)`, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return ran, fmt.Errorf("%w: %04d_%s: %v", ErrMigrationFailed, mig.Version, mig.Name, err)
		}
		ran++
	}
	return ran, nil
}

// Rollback reverts the newest applied migration. With nothing applied it
// does nothing.
func (m *Migrator) Rollback(ctx context.Context) error {
	done, err := m.applied(ctx)
	if err != nil || len(done) == 0 {
		return err
	}
	newest := slices.Max(slices.Collect(maps.Keys(done)))

	i := slices.IndexFunc(m.migrations, func(mig Migration) bool { return mig.Version == newest })
	if i < 0 || m.migrations[i].Down == "" {
		return fmt.Errorf("%w: no down script for version %d", ErrMigrationFailed, newest)
	}
	down := m.migrations[i].Down

	return m.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, down); err != nil {
			return fmt.Errorf("%w: revert %d: %v", ErrMigrationFailed, newest, err)
		}
		_, err := tx.Exec(ctx, `DELETE FROM `+migrationsTable+` WHERE version = $1`, newest)
		return err
	})
}

// Status lists every known migration with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(m.migrations)
	for i := range out {
		out[i].AppliedAt, out[i].Applied = done[out[i].Version]
	}
	return out, nil
}
