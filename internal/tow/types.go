package tow

import (
	"github.com/chrissnell/towqa/internal/coverage"
)

// Variable identifies one of the two measured quantities a calculator
// accumulates.
type Variable string

const (
	VariableTemperature Variable = "temperature"
	VariableHumidity    Variable = "humidity"
)

// QA states reported by the traditional hour-density check.
const (
	QAStatePass = "PASS"
	QAStateFail = "FAIL"
)

// YearTOW summarizes one calendar year of time-of-wetness accumulation.
// TimeOfWetness is the wet-hour count projected over the full year; it is
// nil when the traditional QA fails, because projecting from too few hours
// produces garbage.
type YearTOW struct {
	MaxHours      int      `json:"max_hours"`
	TotalHours    int      `json:"total_hours"`
	TimeOfWetness *float64 `json:"time_of_wetness"`
	QAState       string   `json:"qa_state"`
	PercentValid  float64  `json:"percent_valid"`
}

// YearCoverage is a YearTOW with the coverage engine's report attached.
// The report's verdict is independent of the traditional QA state carried
// in the embedded payload.
type YearCoverage struct {
	YearTOW
	CoverageAnalysis coverage.Report `json:"coverage_analysis"`
}
