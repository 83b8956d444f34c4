package migrate

import (
	"database/sql"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func testSource() *FSSource {
	return NewFSSource(fstest.MapFS{
		"001_create_widgets.up.sql":   {Data: []byte("CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT);")},
		"001_create_widgets.down.sql": {Data: []byte("DROP TABLE widgets;")},
		"002_create_gadgets.up.sql":   {Data: []byte("CREATE TABLE gadgets (id INTEGER PRIMARY KEY, widget_id INTEGER);")},
		"002_create_gadgets.down.sql": {Data: []byte("DROP TABLE gadgets;")},
	})
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	// A pooled second connection would see a different empty in-memory
	// database, so pin everything to one connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	if err != nil {
		t.Fatalf("checking for table %s: %v", name, err)
	}
	return count == 1
}

func TestSourceMigrations(t *testing.T) {
	migrations, err := testSource().Migrations()
	if err != nil {
		t.Fatalf("Migrations() error: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("got %d migrations, want 2", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Errorf("versions = %d, %d, want 1, 2", migrations[0].Version, migrations[1].Version)
	}
	if migrations[0].Name != "create widgets" {
		t.Errorf("name = %q, want %q", migrations[0].Name, "create widgets")
	}
	for _, m := range migrations {
		if m.Up == "" || m.Down == "" {
			t.Errorf("migration %d missing up or down SQL", m.Version)
		}
	}
}

func TestMigratorUp(t *testing.T) {
	db := testDB(t)
	m := NewMigrator(db, testSource(), "", DialectSQLite)

	if err := m.Up(); err != nil {
		t.Fatalf("Up() error: %v", err)
	}

	version, err := m.Version()
	if err != nil {
		t.Fatalf("Version() error: %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}
	if !tableExists(t, db, "widgets") || !tableExists(t, db, "gadgets") {
		t.Error("expected both migrated tables to exist")
	}

	// Up is idempotent once at the latest version.
	if err := m.Up(); err != nil {
		t.Fatalf("second Up() error: %v", err)
	}
}

func TestMigratorDown(t *testing.T) {
	db := testDB(t)
	m := NewMigrator(db, testSource(), "", DialectSQLite)

	if err := m.Up(); err != nil {
		t.Fatalf("Up() error: %v", err)
	}

	if err := m.Down(1); err != nil {
		t.Fatalf("Down(1) error: %v", err)
	}
	if tableExists(t, db, "gadgets") {
		t.Error("gadgets should be dropped at version 1")
	}
	if !tableExists(t, db, "widgets") {
		t.Error("widgets should survive rollback to version 1")
	}

	if err := m.Down(0); err != nil {
		t.Fatalf("Down(0) error: %v", err)
	}
	version, err := m.Version()
	if err != nil {
		t.Fatalf("Version() error: %v", err)
	}
	if version != 0 {
		t.Errorf("version = %d, want 0", version)
	}

	if err := m.Down(0); err == nil {
		t.Error("Down below the current version should error")
	}
}

func TestMigratorTo(t *testing.T) {
	db := testDB(t)
	m := NewMigrator(db, testSource(), "", DialectSQLite)

	if err := m.To(1); err != nil {
		t.Fatalf("To(1) error: %v", err)
	}
	if tableExists(t, db, "gadgets") {
		t.Error("gadgets should not exist at version 1")
	}

	if err := m.To(2); err != nil {
		t.Fatalf("To(2) error: %v", err)
	}
	version, err := m.Version()
	if err != nil {
		t.Fatalf("Version() error: %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}

	// Moving to a lower version delegates to Down.
	if err := m.To(1); err != nil {
		t.Fatalf("To(1) from 2 error: %v", err)
	}
	if tableExists(t, db, "gadgets") {
		t.Error("gadgets should be dropped after migrating back down")
	}
}

func TestMigratorPending(t *testing.T) {
	db := testDB(t)
	m := NewMigrator(db, testSource(), "", DialectSQLite)

	pending, err := m.Pending()
	if err != nil {
		t.Fatalf("Pending() error: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending migrations, want 2", len(pending))
	}

	if err := m.To(1); err != nil {
		t.Fatalf("To(1) error: %v", err)
	}
	pending, err = m.Pending()
	if err != nil {
		t.Fatalf("Pending() error: %v", err)
	}
	if len(pending) != 1 || pending[0].Version != 2 {
		t.Errorf("pending after To(1) = %+v, want just version 2", pending)
	}
}
