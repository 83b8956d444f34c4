package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	// Load stations
	stations, err := s.GetStations()
	if err != nil {
		return nil, fmt.Errorf("failed to load stations: %w", err)
	}
	config.Stations = stations

	// Load storage
	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	// Load report server
	reportServer, err := s.GetReportServer()
	if err != nil {
		return nil, fmt.Errorf("failed to load report server config: %w", err)
	}
	config.ReportServer = reportServer

	return config, nil
}

// GetStations returns station configurations from the database
func (s *SQLiteProvider) GetStations() ([]StationData, error) {
	query := `
		SELECT name, type, latitude, longitude, altitude
		FROM stations
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
		ORDER BY name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	var stations []StationData
	for rows.Next() {
		var station StationData
		var stationType sql.NullString
		var latitude, longitude, altitude sql.NullFloat64

		err := rows.Scan(&station.Name, &stationType, &latitude, &longitude, &altitude)
		if err != nil {
			return nil, fmt.Errorf("failed to scan station row: %w", err)
		}

		if stationType.Valid {
			station.Type = stationType.String
		}
		if latitude.Valid {
			station.Latitude = latitude.Float64
		}
		if longitude.Valid {
			station.Longitude = longitude.Float64
		}
		if altitude.Valid {
			station.Altitude = altitude.Float64
		}

		stations = append(stations, station)
	}

	return stations, nil
}

// GetStorageConfig returns storage configuration from the database
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	query := `
		SELECT backend_type, timescale_connection_string
		FROM storage_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default') AND enabled = 1
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query storage configs: %w", err)
	}
	defer rows.Close()

	storage := &StorageData{}

	for rows.Next() {
		var backendType string
		var timescaleConnectionString sql.NullString

		err := rows.Scan(&backendType, &timescaleConnectionString)
		if err != nil {
			return nil, fmt.Errorf("failed to scan storage config row: %w", err)
		}

		if backendType == "timescaledb" && timescaleConnectionString.Valid {
			storage.TimescaleDB = &TimescaleDBData{
				ConnectionString: timescaleConnectionString.String,
			}
		}
	}

	return storage, nil
}

// GetReportServer returns the report server configuration from the database
func (s *SQLiteProvider) GetReportServer() (*ReportServerData, error) {
	query := `
		SELECT cert, key, port, listen_addr, default_evaluator, cache_max_age,
		       seasonal_threshold_pct, monthly_threshold_pct, max_gap_days,
		       min_overall_score, season_day_fraction, density_threshold
		FROM report_server_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default') AND enabled = 1
		LIMIT 1
	`

	row := s.db.QueryRow(query)

	var cert, key, listenAddr, defaultEvaluator sql.NullString
	var port, cacheMaxAge, maxGapDays sql.NullInt64
	var seasonalPct, monthlyPct, minScore, seasonDayFraction, densityThreshold sql.NullFloat64

	err := row.Scan(
		&cert, &key, &port, &listenAddr, &defaultEvaluator, &cacheMaxAge,
		&seasonalPct, &monthlyPct, &maxGapDays,
		&minScore, &seasonDayFraction, &densityThreshold,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to scan report server config row: %w", err)
	}

	rs := &ReportServerData{}
	if cert.Valid {
		rs.Cert = cert.String
	}
	if key.Valid {
		rs.Key = key.String
	}
	if port.Valid {
		rs.Port = int(port.Int64)
	}
	if listenAddr.Valid {
		rs.ListenAddr = listenAddr.String
	}
	if defaultEvaluator.Valid {
		rs.DefaultEvaluator = defaultEvaluator.String
	}
	if cacheMaxAge.Valid {
		rs.CacheMaxAge = int(cacheMaxAge.Int64)
	}
	if seasonalPct.Valid {
		rs.QA.SeasonalThresholdPct = seasonalPct.Float64
	}
	if monthlyPct.Valid {
		rs.QA.MonthlyThresholdPct = monthlyPct.Float64
	}
	if maxGapDays.Valid {
		rs.QA.MaxGapDays = int(maxGapDays.Int64)
	}
	if minScore.Valid {
		rs.QA.MinOverallScore = minScore.Float64
	}
	if seasonDayFraction.Valid {
		rs.QA.SeasonDayFraction = seasonDayFraction.Float64
	}
	if densityThreshold.Valid {
		rs.QA.DensityThreshold = densityThreshold.Float64
	}

	return rs, nil
}

// SaveConfig writes a complete configuration into the database, replacing
// the current contents of the default config set.
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO configs (name)
		SELECT 'default'
		WHERE NOT EXISTS (SELECT 1 FROM configs WHERE name = 'default')
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure default config: %w", err)
	}

	var configID int64
	if err := tx.QueryRow(`SELECT id FROM configs WHERE name = 'default'`).Scan(&configID); err != nil {
		return fmt.Errorf("failed to look up default config: %w", err)
	}

	for _, table := range []string{"stations", "storage_configs", "report_server_configs"} {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE config_id = ?", table), configID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, station := range configData.Stations {
		_, err := tx.Exec(`
			INSERT INTO stations (config_id, name, type, latitude, longitude, altitude)
			VALUES (?, ?, ?, ?, ?, ?)
		`, configID, station.Name, nullString(station.Type), station.Latitude, station.Longitude, station.Altitude)
		if err != nil {
			return fmt.Errorf("failed to insert station %s: %w", station.Name, err)
		}
	}

	if configData.Storage.TimescaleDB != nil {
		_, err := tx.Exec(`
			INSERT INTO storage_configs (config_id, backend_type, enabled, timescale_connection_string)
			VALUES (?, 'timescaledb', 1, ?)
		`, configID, configData.Storage.TimescaleDB.ConnectionString)
		if err != nil {
			return fmt.Errorf("failed to insert storage config: %w", err)
		}
	}

	if rs := configData.ReportServer; rs != nil {
		_, err := tx.Exec(`
			INSERT INTO report_server_configs (
				config_id, enabled, cert, key, port, listen_addr, default_evaluator, cache_max_age,
				seasonal_threshold_pct, monthly_threshold_pct, max_gap_days,
				min_overall_score, season_day_fraction, density_threshold
			) VALUES (?, 1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, configID,
			nullString(rs.Cert), nullString(rs.Key), nullInt(rs.Port), nullString(rs.ListenAddr),
			nullString(rs.DefaultEvaluator), nullInt(rs.CacheMaxAge),
			nullFloat(rs.QA.SeasonalThresholdPct), nullFloat(rs.QA.MonthlyThresholdPct), nullInt(rs.QA.MaxGapDays),
			nullFloat(rs.QA.MinOverallScore), nullFloat(rs.QA.SeasonDayFraction), nullFloat(rs.QA.DensityThreshold))
		if err != nil {
			return fmt.Errorf("failed to insert report server config: %w", err)
		}
	}

	return tx.Commit()
}

// The null helpers keep unset optional fields as SQL NULLs so the loader can
// tell them apart from explicit zero values.

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullFloat(v float64) any {
	if v == 0 {
		return nil
	}
	return v
}

// IsReadOnly returns false since SQLite configurations can be modified
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
