package config

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/chrissnell/towqa/pkg/migrate"
	_ "modernc.org/sqlite"
)

// migratedDB creates a fresh config database using the shipped migrations.
func migratedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	source := migrate.NewDirSource(filepath.Join("..", "..", "migrations", "config"))
	if err := migrate.NewMigrator(db, source, "", migrate.DialectSQLite).Up(); err != nil {
		t.Fatalf("migrating schema: %v", err)
	}
	return path
}

func TestSQLiteProviderRoundTrip(t *testing.T) {
	provider, err := NewSQLiteProvider(migratedDB(t))
	if err != nil {
		t.Fatalf("NewSQLiteProvider() error: %v", err)
	}
	defer provider.Close()

	in := &ConfigData{
		Stations: []StationData{
			{Name: "ridgetop", Type: "campbellscientific", Latitude: 46.8, Longitude: -121.7, Altitude: 1650},
			{Name: "valley", Type: "davis"},
		},
		Storage: StorageData{
			TimescaleDB: &TimescaleDBData{ConnectionString: "host=localhost dbname=towqa"},
		},
		ReportServer: &ReportServerData{
			Port:             8080,
			ListenAddr:       "127.0.0.1",
			DefaultEvaluator: "coverage",
			CacheMaxAge:      600,
			QA: QAData{
				SeasonalThresholdPct: 80,
				MaxGapDays:           45,
			},
		},
	}

	if err := provider.SaveConfig(in); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	out, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if len(out.Stations) != 2 {
		t.Fatalf("got %d stations, want 2", len(out.Stations))
	}
	first := out.Stations[0]
	if first.Name != "ridgetop" || first.Type != "campbellscientific" {
		t.Errorf("first station = %+v", first)
	}
	if first.Latitude != 46.8 || first.Longitude != -121.7 || first.Altitude != 1650 {
		t.Errorf("first station position = %+v", first)
	}

	if out.Storage.TimescaleDB == nil || out.Storage.TimescaleDB.ConnectionString != "host=localhost dbname=towqa" {
		t.Errorf("storage = %+v", out.Storage.TimescaleDB)
	}

	rs := out.ReportServer
	if rs == nil {
		t.Fatal("report server config missing after round trip")
	}
	if rs.Port != 8080 || rs.ListenAddr != "127.0.0.1" || rs.DefaultEvaluator != "coverage" || rs.CacheMaxAge != 600 {
		t.Errorf("report server = %+v", rs)
	}
	if rs.QA.SeasonalThresholdPct != 80 || rs.QA.MaxGapDays != 45 {
		t.Errorf("QA overrides = %+v", rs.QA)
	}
	if rs.QA.MonthlyThresholdPct != 0 || rs.QA.DensityThreshold != 0 {
		t.Errorf("unset QA fields should stay zero: %+v", rs.QA)
	}
	if rs.Cert != "" || rs.Key != "" {
		t.Errorf("unset TLS fields should stay empty: cert=%q key=%q", rs.Cert, rs.Key)
	}

	// Saving again replaces the config set instead of appending to it.
	in.Stations = in.Stations[:1]
	if err := provider.SaveConfig(in); err != nil {
		t.Fatalf("second SaveConfig() error: %v", err)
	}
	out, err = provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() after replace error: %v", err)
	}
	if len(out.Stations) != 1 {
		t.Errorf("got %d stations after replace, want 1", len(out.Stations))
	}
}

func TestSQLiteProviderEmptyDatabase(t *testing.T) {
	provider, err := NewSQLiteProvider(migratedDB(t))
	if err != nil {
		t.Fatalf("NewSQLiteProvider() error: %v", err)
	}
	defer provider.Close()

	stations, err := provider.GetStations()
	if err != nil {
		t.Fatalf("GetStations() error: %v", err)
	}
	if len(stations) != 0 {
		t.Errorf("got %d stations from empty database", len(stations))
	}

	storage, err := provider.GetStorageConfig()
	if err != nil {
		t.Fatalf("GetStorageConfig() error: %v", err)
	}
	if storage.TimescaleDB != nil {
		t.Errorf("unexpected storage config: %+v", storage.TimescaleDB)
	}

	rs, err := provider.GetReportServer()
	if err != nil {
		t.Fatalf("GetReportServer() error: %v", err)
	}
	if rs != nil {
		t.Errorf("unexpected report server config: %+v", rs)
	}

	if provider.IsReadOnly() {
		t.Error("SQLite provider should be writable")
	}
}
