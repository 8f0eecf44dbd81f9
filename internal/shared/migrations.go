package shared

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// ErrInvalidMigrations reports a migration directory that cannot be applied as a whole.
var ErrInvalidMigrations = errors.New("invalid migration set")

// migrationName matches "0001_create_search_index_up.sql".
var migrationName = regexp.MustCompile(`^(\d{4})_([a-z0-9_]+)_(up|down)\.sql$`)

// Migration is one versioned schema change with its inverse.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Migrator applies the migrations found in a directory of paired up/down SQL files.
type Migrator struct {
	db     *sql.DB
	fsys   fs.FS
	dir    string
	logger *log.Logger
}

// NewMigrator returns a Migrator over the embedded lyric cache schema. A nil logger discards output.
func NewMigrator(db *sql.DB, logger *log.Logger) *Migrator {
	return newMigrator(db, migrationFiles, "sql", logger)
}

func newMigrator(db *sql.DB, fsys fs.FS, dir string, logger *log.Logger) *Migrator {
	if logger == nil {
		logger = NewLogger(io.Discard)
	}
	return &Migrator{db: db, fsys: fsys, dir: dir, logger: logger}
}

// RunMigrations applies every pending embedded migration.
func RunMigrations(db *sql.DB) error {
	_, err := NewMigrator(db, nil).Up()
	return err
}

// RollbackMigration reverts the most recently applied embedded migration.
func RollbackMigration(db *sql.DB) error {
	_, err := NewMigrator(db, nil).Down()
	return err
}

// Load reads and validates the migration set.
//
// Every file must be named NNNN_name_up.sql or NNNN_name_down.sql, each version needs both halves under the
// same name, and versions must run from 0 without gaps.
func (m *Migrator) Load() ([]Migration, error) {
	entries, err := fs.ReadDir(m.fsys, m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	byVersion := map[int]*Migration{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		match := migrationName.FindStringSubmatch(entry.Name())
		if match == nil {
			return nil, fmt.Errorf("%w: unexpected file %s", ErrInvalidMigrations, entry.Name())
		}
		version, _ := strconv.Atoi(match[1])
		name, direction := match[2], match[3]

		content, err := fs.ReadFile(m.fsys, path.Join(m.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		mig, ok := byVersion[version]
		if !ok {
			mig = &Migration{Version: version, Name: name}
			byVersion[version] = mig
		} else if mig.Name != name {
			return nil, fmt.Errorf("%w: version %04d is named both %s and %s", ErrInvalidMigrations, version, mig.Name, name)
		}

		if direction == "up" {
			mig.Up = string(content)
		} else {
			mig.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		if strings.TrimSpace(mig.Up) == "" {
			return nil, fmt.Errorf("%w: %04d_%s has no up script", ErrInvalidMigrations, mig.Version, mig.Name)
		}
		if strings.TrimSpace(mig.Down) == "" {
			return nil, fmt.Errorf("%w: %04d_%s has no down script", ErrInvalidMigrations, mig.Version, mig.Name)
		}
		migrations = append(migrations, *mig)
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	for i, mig := range migrations {
		if mig.Version != i {
			return nil, fmt.Errorf("%w: expected version %04d, found %04d_%s", ErrInvalidMigrations, i, mig.Version, mig.Name)
		}
	}

	return migrations, nil
}

// Up applies every migration newer than the recorded version and returns how many ran.
func (m *Migrator) Up() (int, error) {
	migrations, err := m.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load migrations: %w", err)
	}

	if _, err := m.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, _, err := m.Version()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, mig := range migrations {
		if mig.Version <= current {
			continue
		}
		err := m.inTx(mig.Up, func(tx *sql.Tx) error {
			_, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", mig.Version)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("failed to apply migration %04d_%s: %w", mig.Version, mig.Name, err)
		}
		m.logger.Debug("migration applied", "version", mig.Version, "name", mig.Name)
		applied++
	}

	if applied > 0 {
		m.logger.Info("schema migrated", "applied", applied, "version", migrations[len(migrations)-1].Version)
	}
	return applied, nil
}

// Down reverts the most recently applied migration and returns its version.
func (m *Migrator) Down() (int, error) {
	migrations, err := m.Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load migrations: %w", err)
	}

	current, ok, err := m.Version()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("no migrations to rollback")
	}
	if current >= len(migrations) {
		return 0, fmt.Errorf("migration version %d not found", current)
	}

	mig := migrations[current]
	err = m.inTx(mig.Down, func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM schema_migrations WHERE version = ?", mig.Version)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to rollback migration %04d_%s: %w", mig.Version, mig.Name, err)
	}

	m.logger.Info("migration rolled back", "version", mig.Version, "name", mig.Name)
	return mig.Version, nil
}

// Version returns the highest applied migration. ok is false when nothing has been applied, in which case
// version is -1.
func (m *Migrator) Version() (version int, ok bool, err error) {
	var v sql.NullInt64
	err = m.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&v)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return -1, false, nil
		}
		return -1, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	if !v.Valid {
		return -1, false, nil
	}
	return int(v.Int64), true, nil
}

// inTx runs every statement of script and then record inside one transaction.
func (m *Migrator) inTx(script string, record func(*sql.Tx) error) error {
	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(script) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("%w\nStatement: %s", err, stmt)
		}
	}
	if err := record(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// splitStatements drops "--" comments and blank lines, then splits on semicolons.
func splitStatements(script string) []string {
	var kept []string
	for _, line := range strings.Split(script, "\n") {
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = line[:idx]
		}
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}

	var stmts []string
	for _, stmt := range strings.Split(strings.Join(kept, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
