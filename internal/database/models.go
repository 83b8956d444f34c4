package database

import (
	"time"

	"github.com/jackc/pgtype"
)

// Observation is one raw sensor reading as stored in the observations
// hypertable. Either variable may be NULL when the sensor dropped out.
type Observation struct {
	StationName string    `gorm:"column:station_name;not null;index:idx_observations_station_time"`
	ObservedAt  time.Time `gorm:"column:observed_at;not null;index:idx_observations_station_time"`
	Temperature *float64  `gorm:"column:temperature"`
	Humidity    *float64  `gorm:"column:humidity"`
}

// TableName specifies the table name for Observation
func (Observation) TableName() string {
	return "observations"
}

// CoverageReportRecord caches one computed coverage report so repeated
// requests for the same station and year skip the full analysis
type CoverageReportRecord struct {
	ID          string       `gorm:"primaryKey;column:id"`
	StationName string       `gorm:"column:station_name;not null;uniqueIndex:idx_report_station_year_eval"`
	Year        int          `gorm:"column:year;not null;uniqueIndex:idx_report_station_year_eval"`
	Evaluator   string       `gorm:"column:evaluator;not null;uniqueIndex:idx_report_station_year_eval"`
	Payload     pgtype.JSONB `gorm:"type:jsonb;not null"`
	GeneratedAt time.Time    `gorm:"column:generated_at;not null"`
}

// TableName specifies the table name for CoverageReportRecord
func (CoverageReportRecord) TableName() string {
	return "coverage_reports"
}
