// Package bootstrap creates the schema and seeds the default template catalog.
//
// Schema changes are versioned .sql files under migrations/ following the
// pattern:
//
//	0001_name.up.sql / 0001_name.down.sql
//
// Only new migrations are applied. Use RollbackLast to revert the last one.
package bootstrap

import (
	"context"
	"embed"
	"fmt"
	stdfs "io/fs"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"aiContentStudio/internal/db"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migration struct {
	version  int
	name     string
	upFile   string // path inside embedded FS
	downFile string // path inside embedded FS
}

var migFileRe = regexp.MustCompile(`^([0-9]{4})_(.+)\.(up|down)\.sql$`)

// Run brings the schema up to date and seeds the default templates when the
// catalog is empty. It is safe to call on every startup.
func Run(ctx context.Context, s *db.Store) error {
	if err := Migrate(ctx, s); err != nil {
		return err
	}
	n, err := SeedDefaultTemplates(ctx, s)
	if err != nil {
		return fmt.Errorf("seed templates: %w", err)
	}
	if n > 0 {
		slog.Info("default templates inserted", "component", "bootstrap", "count", n)
	}
	return nil
}

// Migrate applies every embedded migration that has not been applied yet.
// Each migration and its bookkeeping row are one atomic unit.
func Migrate(ctx context.Context, s *db.Store) error {
	migs, err := loadMigrations()
	if err != nil {
		return err
	}
	if len(migs) == 0 {
		return nil
	}
	if err := ensureMigrationsTable(ctx, s); err != nil {
		return err
	}
	applied, err := appliedVersions(ctx, s)
	if err != nil {
		return err
	}
	versions := make([]int, 0, len(migs))
	for v := range migs {
		versions = append(versions, v)
	}
	sort.Ints(versions)

	for _, v := range versions {
		if applied[v] {
			continue
		}
		m := migs[v]
		if strings.TrimSpace(m.upFile) == "" {
			return fmt.Errorf("missing up migration for version %04d", v)
		}
		sqlText, err := migrationsFS.ReadFile(m.upFile)
		if err != nil {
			return err
		}
		err = s.Tx(ctx, func(tx *db.Tx) error {
			// A racing startup may have applied it while we waited for the lock.
			row, err := tx.Prepare(`SELECT version FROM schema_migrations WHERE version = ?`).Get(ctx, v)
			if err != nil || row != nil {
				return err
			}
			if err := tx.Exec(ctx, string(sqlText)); err != nil {
				return err
			}
			_, err = tx.Prepare(`INSERT INTO schema_migrations(version) VALUES(?)`).Run(ctx, v)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %04d failed: %w", v, err)
		}
		slog.Info("migration applied", "component", "bootstrap", "version", v, "name", m.name)
	}
	return nil
}

// RollbackLast reverts the most recently applied migration, if its down
// script exists.
func RollbackLast(ctx context.Context, s *db.Store) error {
	if err := ensureMigrationsTable(ctx, s); err != nil {
		return err
	}
	row, err := s.Prepare(`SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1`).Get(ctx)
	if err != nil {
		return err
	}
	if row == nil {
		return nil // nothing to rollback
	}
	version := int(row.Int64("version"))
	migs, err := loadMigrations()
	if err != nil {
		return err
	}
	m, ok := migs[version]
	if !ok || m.downFile == "" {
		return fmt.Errorf("no down migration found for version %d", version)
	}
	sqlText, err := migrationsFS.ReadFile(m.downFile)
	if err != nil {
		return err
	}
	return s.Tx(ctx, func(tx *db.Tx) error {
		if err := tx.Exec(ctx, string(sqlText)); err != nil {
			return err
		}
		_, err := tx.Prepare(`DELETE FROM schema_migrations WHERE version = ?`).Run(ctx, version)
		return err
	})
}

func loadMigrations() (map[int]migration, error) {
	entries := map[int]migration{}
	list, err := stdfs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}
	for _, de := range list {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		m := migFileRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		verStr, migName, kind := m[1], m[2], m[3]
		var ver int
		if _, err := fmt.Sscanf(verStr, "%04d", &ver); err != nil {
			continue
		}
		item := entries[ver]
		item.version = ver
		item.name = migName
		p := "migrations/" + name
		if kind == "up" {
			item.upFile = p
		} else {
			item.downFile = p
		}
		entries[ver] = item
	}
	return entries, nil
}

func ensureMigrationsTable(ctx context.Context, s *db.Store) error {
	row, err := s.Prepare(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'`).Get(ctx)
	if err != nil || row != nil {
		return err
	}
	return s.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
        version INTEGER PRIMARY KEY,
        applied_at TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
    )`)
}

func appliedVersions(ctx context.Context, s *db.Store) (map[int]bool, error) {
	rows, err := s.Prepare(`SELECT version FROM schema_migrations`).All(ctx)
	if err != nil {
		return nil, err
	}
	got := make(map[int]bool, len(rows))
	for _, r := range rows {
		got[int(r.Int64("version"))] = true
	}
	return got, nil
}
