package migrate

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Runner applies the embedded schema migrations to a DuckDB cache database.
// Files are named NNN_description.sql and applied in ascending order; each
// applied version is recorded in schema_migrations so reopening an existing
// cache file only runs what is new.
type Runner struct{ db *sql.DB }

func NewRunner(db *sql.DB) *Runner {
	return &Runner{db: db}
}

type step struct {
	version int
	name    string
	stmt    string
}

// Run applies all pending migrations, one transaction per file.
func (r *Runner) Run() error {
	if _, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       VARCHAR NOT NULL,
		applied_at TIMESTAMP DEFAULT current_timestamp
	)`); err != nil {
		return fmt.Errorf("bootstrap schema_migrations: %w", err)
	}

	steps, err := loadSteps()
	if err != nil {
		return err
	}

	var applied sql.NullInt64
	if err := r.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&applied); err != nil {
		return fmt.Errorf("reading applied version: %w", err)
	}

	for _, s := range steps {
		if applied.Valid && s.version <= int(applied.Int64) {
			continue
		}
		if err := r.apply(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) apply(s step) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx for %s: %w", s.name, err)
	}
	if _, err := tx.Exec(s.stmt); err != nil {
		tx.Rollback()
		return fmt.Errorf("executing %s: %w", s.name, err)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", s.version, s.name); err != nil {
		tx.Rollback()
		return fmt.Errorf("recording %s: %w", s.name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", s.name, err)
	}
	return nil
}

func loadSteps() ([]step, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("reading embedded migrations: %w", err)
	}

	var steps []step
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			continue
		}
		ver, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("parsing version from %s: %w", e.Name(), err)
		}
		data, err := migrationFS.ReadFile("migrations/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		steps = append(steps, step{version: ver, name: e.Name(), stmt: string(data)})
	}

	sort.Slice(steps, func(i, j int) bool { return steps[i].version < steps[j].version })
	return steps, nil
}
