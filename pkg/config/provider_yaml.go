package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Stations     []StationYAML     `yaml:"stations"`
		Storage      StorageYAML       `yaml:"storage,omitempty"`
		ReportServer *ReportServerYAML `yaml:"report-server,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Stations: make([]StationData, len(yamlConfig.Stations)),
	}

	// Convert stations
	for i, station := range yamlConfig.Stations {
		config.Stations[i] = StationData{
			Name:      station.Name,
			Type:      station.Type,
			Latitude:  station.Latitude,
			Longitude: station.Longitude,
			Altitude:  station.Altitude,
		}
	}

	// Convert storage
	config.Storage = StorageData{}
	if yamlConfig.Storage.TimescaleDB != nil {
		config.Storage.TimescaleDB = &TimescaleDBData{
			ConnectionString: yamlConfig.Storage.TimescaleDB.ConnectionString,
		}
	}

	// Convert report server
	if yamlConfig.ReportServer != nil {
		config.ReportServer = &ReportServerData{
			Cert:             yamlConfig.ReportServer.Cert,
			Key:              yamlConfig.ReportServer.Key,
			Port:             yamlConfig.ReportServer.Port,
			ListenAddr:       yamlConfig.ReportServer.ListenAddr,
			DefaultEvaluator: yamlConfig.ReportServer.DefaultEvaluator,
			CacheMaxAge:      yamlConfig.ReportServer.CacheMaxAge,
			QA: QAData{
				SeasonalThresholdPct: yamlConfig.ReportServer.QA.SeasonalThresholdPct,
				MonthlyThresholdPct:  yamlConfig.ReportServer.QA.MonthlyThresholdPct,
				MaxGapDays:           yamlConfig.ReportServer.QA.MaxGapDays,
				MinOverallScore:      yamlConfig.ReportServer.QA.MinOverallScore,
				SeasonDayFraction:    yamlConfig.ReportServer.QA.SeasonDayFraction,
				DensityThreshold:     yamlConfig.ReportServer.QA.DensityThreshold,
			},
		}
	}

	y.config = config
	return config, nil
}

// GetStations returns station configurations
func (y *YAMLProvider) GetStations() ([]StationData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return y.config.Stations, nil
}

// GetStorageConfig returns storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Storage, nil
}

// GetReportServer returns the report server configuration
func (y *YAMLProvider) GetReportServer() (*ReportServerData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return y.config.ReportServer, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with proper YAML tags for parsing the on-disk format
type StationYAML struct {
	Name      string  `yaml:"name"`
	Type      string  `yaml:"type,omitempty"`
	Latitude  float64 `yaml:"latitude,omitempty"`
	Longitude float64 `yaml:"longitude,omitempty"`
	Altitude  float64 `yaml:"altitude,omitempty"`
}

type StorageYAML struct {
	TimescaleDB *TimescaleDBYAML `yaml:"timescaledb,omitempty"`
}

type TimescaleDBYAML struct {
	ConnectionString string `yaml:"connection-string"`
}

type ReportServerYAML struct {
	Cert             string `yaml:"cert,omitempty"`
	Key              string `yaml:"key,omitempty"`
	Port             int    `yaml:"port,omitempty"`
	ListenAddr       string `yaml:"listen-addr,omitempty"`
	DefaultEvaluator string `yaml:"default-evaluator,omitempty"`
	CacheMaxAge      int    `yaml:"cache-max-age,omitempty"`
	QA               QAYAML `yaml:"qa,omitempty"`
}

type QAYAML struct {
	SeasonalThresholdPct float64 `yaml:"seasonal-threshold-pct,omitempty"`
	MonthlyThresholdPct  float64 `yaml:"monthly-threshold-pct,omitempty"`
	MaxGapDays           int     `yaml:"max-gap-days,omitempty"`
	MinOverallScore      float64 `yaml:"min-overall-score,omitempty"`
	SeasonDayFraction    float64 `yaml:"season-day-fraction,omitempty"`
	DensityThreshold     float64 `yaml:"density-threshold,omitempty"`
}
