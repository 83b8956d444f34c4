package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetStations() ([]StationData, error)
	GetStorageConfig() (*StorageData, error)
	GetReportServer() (*ReportServerData, error)

	// Configuration management (for future SQLite-specific operations)
	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Stations     []StationData     `json:"stations"`
	Storage      StorageData       `json:"storage,omitempty"`
	ReportServer *ReportServerData `json:"report_server,omitempty"`
}

// StationData holds configuration for one observation station whose data
// this service reports on
type StationData struct {
	Name      string  `json:"name"`
	Type      string  `json:"type,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Altitude  float64 `json:"altitude,omitempty"`
}

// StorageData holds the configuration for storage backends
type StorageData struct {
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty"`
}

type TimescaleDBData struct {
	ConnectionString string `json:"connection_string"`
}

// ReportServerData holds the configuration for the HTTP report server
type ReportServerData struct {
	Cert             string `json:"cert,omitempty"`
	Key              string `json:"key,omitempty"`
	Port             int    `json:"port,omitempty"`
	ListenAddr       string `json:"listen_addr,omitempty"`
	DefaultEvaluator string `json:"default_evaluator,omitempty"`
	CacheMaxAge      int    `json:"cache_max_age,omitempty"` // seconds; 0 uses the default
	QA               QAData `json:"qa,omitempty"`
}

// QAData holds threshold overrides for the coverage analysis. Zero-valued
// fields fall back to the engine defaults.
type QAData struct {
	SeasonalThresholdPct float64 `json:"seasonal_threshold_pct,omitempty"`
	MonthlyThresholdPct  float64 `json:"monthly_threshold_pct,omitempty"`
	MaxGapDays           int     `json:"max_gap_days,omitempty"`
	MinOverallScore      float64 `json:"min_overall_score,omitempty"`
	SeasonDayFraction    float64 `json:"season_day_fraction,omitempty"`
	DensityThreshold     float64 `json:"density_threshold,omitempty"`
}
