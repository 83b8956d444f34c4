package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chrissnell/towqa/internal/coverage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaveCoverageReport upserts a computed coverage report for a station, year,
// and evaluator combination
func (c *Client) SaveCoverageReport(station string, year int, evaluator string, report coverage.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("error encoding coverage report: %v", err)
	}

	var existing CoverageReportRecord
	err = c.DB.Where("station_name = ? AND year = ? AND evaluator = ?", station, year, evaluator).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		record := CoverageReportRecord{
			ID:          uuid.New().String(),
			StationName: station,
			Year:        year,
			Evaluator:   evaluator,
			GeneratedAt: time.Now().UTC(),
		}
		record.Payload.Set(payload)
		if err := c.DB.Create(&record).Error; err != nil {
			return fmt.Errorf("error saving coverage report for %s/%d: %v", station, year, err)
		}
		return nil
	} else if err != nil {
		return fmt.Errorf("error looking up cached coverage report for %s/%d: %v", station, year, err)
	}

	existing.Payload.Set(payload)
	existing.GeneratedAt = time.Now().UTC()
	if err := c.DB.Save(&existing).Error; err != nil {
		return fmt.Errorf("error updating coverage report for %s/%d: %v", station, year, err)
	}
	return nil
}

// GetCachedCoverageReport fetches a previously saved coverage report. A miss
// returns a nil report and no error.
func (c *Client) GetCachedCoverageReport(station string, year int, evaluator string) (*coverage.Report, time.Time, error) {
	var record CoverageReportRecord
	err := c.DB.Where("station_name = ? AND year = ? AND evaluator = ?", station, year, evaluator).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, time.Time{}, nil
	} else if err != nil {
		return nil, time.Time{}, fmt.Errorf("error fetching cached coverage report for %s/%d: %v", station, year, err)
	}

	var report coverage.Report
	if err := json.Unmarshal(record.Payload.Bytes, &report); err != nil {
		return nil, time.Time{}, fmt.Errorf("error decoding cached coverage report for %s/%d: %v", station, year, err)
	}

	return &report, record.GeneratedAt, nil
}
