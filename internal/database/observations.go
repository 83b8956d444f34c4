package database

import (
	"fmt"
	"time"
)

// observationColumn maps a variable name onto its observations column,
// guarding the query against arbitrary identifiers.
func observationColumn(variable string) (string, error) {
	switch variable {
	case "temperature":
		return "temperature", nil
	case "humidity":
		return "humidity", nil
	default:
		return "", fmt.Errorf("unknown observation variable: %s", variable)
	}
}

// yearBounds returns the UTC half-open interval covering one calendar year.
func yearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// FetchObservations retrieves every observation for a station in one
// calendar year, ordered by time
func (c *Client) FetchObservations(station string, year int) ([]Observation, error) {
	start, end := yearBounds(year)

	var obs []Observation
	err := c.DB.
		Where("station_name = ? AND observed_at >= ? AND observed_at < ?", station, start, end).
		Order("observed_at").
		Find(&obs).Error
	if err != nil {
		return nil, fmt.Errorf("error querying observations for %s/%d: %v", station, year, err)
	}

	return obs, nil
}

// FetchAllObservations retrieves every observation for a station across all
// years, ordered by time
func (c *Client) FetchAllObservations(station string) ([]Observation, error) {
	var obs []Observation
	err := c.DB.
		Where("station_name = ?", station).
		Order("observed_at").
		Find(&obs).Error
	if err != nil {
		return nil, fmt.Errorf("error querying observations for %s: %v", station, err)
	}

	return obs, nil
}

// FetchObservationTimes retrieves the timestamps at which one variable was
// actually recorded for a station in one calendar year
func (c *Client) FetchObservationTimes(station string, variable string, year int) ([]time.Time, error) {
	column, err := observationColumn(variable)
	if err != nil {
		return nil, err
	}
	start, end := yearBounds(year)

	var times []time.Time
	err = c.DB.
		Model(&Observation{}).
		Where("station_name = ? AND observed_at >= ? AND observed_at < ? AND "+column+" IS NOT NULL", station, start, end).
		Order("observed_at").
		Pluck("observed_at", &times).Error
	if err != nil {
		return nil, fmt.Errorf("error querying %s observation times for %s/%d: %v", variable, station, year, err)
	}

	return times, nil
}

// YearsWithObservations returns the calendar years for which a station has
// at least one observation, ascending
func (c *Client) YearsWithObservations(station string) ([]int, error) {
	var years []int
	err := c.DB.
		Raw("SELECT DISTINCT EXTRACT(YEAR FROM observed_at)::int AS year FROM observations WHERE station_name = ? ORDER BY year", station).
		Scan(&years).Error
	if err != nil {
		return nil, fmt.Errorf("error querying observation years for %s: %v", station, err)
	}

	return years, nil
}
