// Package migrate runs versioned SQL schema migrations against the towqa
// configuration (SQLite) and observation (TimescaleDB) databases.
package migrate

import (
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// Supported database dialects. The dialect only affects the bookkeeping
// table; migration SQL itself is written per-database.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Migration is one versioned schema change with its up and down SQL.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// DB covers both *sql.DB and *sql.Tx.
type DB interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Source supplies the known migrations in any order.
type Source interface {
	Migrations() ([]Migration, error)
}

// Migrator applies migrations to one database, tracking the applied version
// in a bookkeeping table.
type Migrator struct {
	db      *sql.DB
	source  Source
	table   string
	dialect string
}

// NewMigrator creates a migrator for the given database. An empty table name
// defaults to schema_migrations.
func NewMigrator(db *sql.DB, source Source, table, dialect string) *Migrator {
	if table == "" {
		table = "schema_migrations"
	}
	return &Migrator{
		db:      db,
		source:  source,
		table:   table,
		dialect: dialect,
	}
}

// Up applies all pending migrations.
func (m *Migrator) Up() error {
	return m.To(-1)
}

// To migrates up or down to reach the target version. A target of -1 means
// the latest known version.
func (m *Migrator) To(target int) error {
	if err := m.ensureVersionTable(); err != nil {
		return err
	}

	current, err := m.currentVersion()
	if err != nil {
		return err
	}

	migrations, err := m.source.Migrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	if target == -1 {
		target = 0
		if len(migrations) > 0 {
			target = migrations[len(migrations)-1].Version
		}
	}

	if target < current {
		return m.Down(target)
	}

	for _, migration := range migrations {
		if migration.Version > current && migration.Version <= target {
			if err := m.apply(migration, true); err != nil {
				return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
			}
		}
	}

	return nil
}

// Down rolls back to the target version, which must be below the current one.
func (m *Migrator) Down(target int) error {
	if err := m.ensureVersionTable(); err != nil {
		return err
	}

	current, err := m.currentVersion()
	if err != nil {
		return err
	}
	if target >= current {
		return fmt.Errorf("target version %d must be less than current version %d", target, current)
	}

	migrations, err := m.source.Migrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version > migrations[j].Version
	})

	for _, migration := range migrations {
		if migration.Version > target && migration.Version <= current {
			if err := m.apply(migration, false); err != nil {
				return fmt.Errorf("failed to roll back migration %d: %w", migration.Version, err)
			}
		}
	}

	return nil
}

// Version returns the currently applied migration version.
func (m *Migrator) Version() (int, error) {
	if err := m.ensureVersionTable(); err != nil {
		return 0, err
	}
	return m.currentVersion()
}

// Pending returns the migrations above the current version, lowest first.
func (m *Migrator) Pending() ([]Migration, error) {
	current, err := m.Version()
	if err != nil {
		return nil, err
	}

	migrations, err := m.source.Migrations()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	var pending []Migration
	for _, migration := range migrations {
		if migration.Version > current {
			pending = append(pending, migration)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Version < pending[j].Version
	})

	return pending, nil
}

// apply runs a single migration inside a transaction, moving the recorded
// version with it.
func (m *Migrator) apply(migration Migration, up bool) error {
	direction := "up"
	sqlText := migration.Up
	newVersion := migration.Version
	if !up {
		direction = "down"
		sqlText = migration.Down
		newVersion = migration.Version - 1
	}
	if sqlText == "" {
		return fmt.Errorf("migration %d has no %s SQL", migration.Version, direction)
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(sqlText); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}
	if err := m.setVersion(tx, newVersion); err != nil {
		return fmt.Errorf("failed to update migration version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration transaction: %w", err)
	}

	fmt.Printf("Applied migration %d (%s) %s at %s\n", migration.Version, migration.Name, direction, time.Now().Format(time.RFC3339))
	return nil
}

func (m *Migrator) ensureVersionTable() error {
	appliedType := "DATETIME"
	if m.dialect == DialectPostgres {
		appliedType = "TIMESTAMP"
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			applied_at %s DEFAULT CURRENT_TIMESTAMP
		)
	`, m.table, appliedType)

	if _, err := m.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}
	return nil
}

func (m *Migrator) currentVersion() (int, error) {
	var version int
	query := fmt.Sprintf("SELECT COALESCE(MAX(version), 0) FROM %s", m.table)
	if err := m.db.QueryRow(query).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, nil
}

func (m *Migrator) setVersion(db DB, version int) error {
	// Clear rows above the target so MAX(version) tracks rollbacks.
	if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s WHERE version > %d", m.table, version)); err != nil {
		return fmt.Errorf("failed to clear version rows: %w", err)
	}
	if version == 0 {
		return nil
	}

	var err error
	if m.dialect == DialectPostgres {
		query := fmt.Sprintf(`
			INSERT INTO %s (version, applied_at)
			VALUES ($1, CURRENT_TIMESTAMP)
			ON CONFLICT (version) DO UPDATE SET applied_at = CURRENT_TIMESTAMP
		`, m.table)
		_, err = db.Exec(query, version)
	} else {
		query := fmt.Sprintf(`
			INSERT OR REPLACE INTO %s (version, applied_at)
			VALUES (?, CURRENT_TIMESTAMP)
		`, m.table)
		_, err = db.Exec(query, version)
	}

	if err != nil {
		return fmt.Errorf("failed to set version: %w", err)
	}
	return nil
}
