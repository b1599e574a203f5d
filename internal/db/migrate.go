package db

import (
	"database/sql"
	"embed"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sbvh/collegematch/internal/matcherr"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies all pending migrations in lexical order. Each migration
// is wrapped in its own transaction and recorded in schema_migrations so
// reruns are idempotent.
func Migrate(conn *sql.DB, log *zap.SugaredLogger) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return matcherr.Wrap(err, "read migrations")
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, filename := range files {
		version := strings.SplitN(filename, "_", 2)[0]

		var applied bool
		err := conn.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)", version).Scan(&applied)
		if err != nil {
			if version != "000" {
				return matcherr.Newf("schema_migrations missing but migration is not 000: %s", filename)
			}
		} else if applied {
			if log != nil {
				log.Debugw("skipping migration", "migration", filename)
			}
			continue
		}

		sqlBytes, err := migrations.ReadFile(filepath.Join("migrations", filename))
		if err != nil {
			return matcherr.Wrapf(err, "read %s", filename)
		}

		if log != nil {
			log.Infow("applying migration", "migration", filename)
		}

		tx, err := conn.Begin()
		if err != nil {
			return matcherr.Wrapf(err, "begin tx for %s", filename)
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			tx.Rollback()
			return matcherr.Wrapf(err, "execute %s", filename)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return matcherr.Wrapf(err, "record %s", filename)
		}
		if err := tx.Commit(); err != nil {
			return matcherr.Wrapf(err, "commit %s", filename)
		}
	}

	if log != nil {
		log.Infow("migrations complete", "total", len(files))
	}
	return nil
}
