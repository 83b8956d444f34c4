package coverage

import (
	"errors"
	"fmt"
)

// ErrInvalidThresholds marks a threshold configuration that would make
// adequacy logically unsatisfiable or trivially satisfiable. Rejected at
// configuration time, never during analysis.
var ErrInvalidThresholds = errors.New("invalid coverage thresholds")

// Thresholds configures the adequacy rules for one analysis context. Each
// analyzer owns its own copy, so concurrent analyses with different
// sensitivity settings cannot interfere.
type Thresholds struct {
	// SeasonalThresholdPct is the minimum seasonal coverage percentage.
	SeasonalThresholdPct float64

	// MonthlyThresholdPct is the minimum monthly coverage percentage.
	MonthlyThresholdPct float64

	// MaxGapDays is the largest tolerated run of consecutive empty days.
	MaxGapDays int

	// MinOverallScore is the minimum composite score.
	MinOverallScore float64

	// SeasonDayFraction is the fraction of a season's days that must have
	// data for the season to count toward seasonal coverage.
	SeasonDayFraction float64

	// DensityThreshold is the hourly-density fraction the legacy density
	// evaluator requires. Ignored by the coverage evaluator.
	DensityThreshold float64
}

// DefaultThresholds returns the standard adequacy thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SeasonalThresholdPct: 75,
		MonthlyThresholdPct:  75,
		MaxGapDays:           60,
		MinOverallScore:      70,
		SeasonDayFraction:    0.5,
		DensityThreshold:     0.75,
	}
}

// Validate rejects threshold values outside their usable ranges.
func (t Thresholds) Validate() error {
	if t.SeasonalThresholdPct < 0 || t.SeasonalThresholdPct > 100 {
		return fmt.Errorf("%w: seasonal threshold %.2f outside [0,100]", ErrInvalidThresholds, t.SeasonalThresholdPct)
	}
	if t.MonthlyThresholdPct < 0 || t.MonthlyThresholdPct > 100 {
		return fmt.Errorf("%w: monthly threshold %.2f outside [0,100]", ErrInvalidThresholds, t.MonthlyThresholdPct)
	}
	if t.MaxGapDays < 0 {
		return fmt.Errorf("%w: max gap days %d is negative", ErrInvalidThresholds, t.MaxGapDays)
	}
	if t.MinOverallScore < 0 || t.MinOverallScore > 100 {
		return fmt.Errorf("%w: minimum overall score %.2f outside [0,100]", ErrInvalidThresholds, t.MinOverallScore)
	}
	if t.SeasonDayFraction <= 0 || t.SeasonDayFraction > 1 {
		return fmt.Errorf("%w: season day fraction %.2f outside (0,1]", ErrInvalidThresholds, t.SeasonDayFraction)
	}
	if t.DensityThreshold <= 0 || t.DensityThreshold >= 1 {
		return fmt.Errorf("%w: density threshold %.2f outside (0,1)", ErrInvalidThresholds, t.DensityThreshold)
	}
	return nil
}
