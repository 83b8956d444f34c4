package coverage

import "time"

// Composite score weights. They sum to 1.0, and every term is bounded to
// [0,100], so the score needs no explicit clamp.
const (
	seasonalWeight = 0.4
	monthlyWeight  = 0.3
	gapWeight      = 0.2
	daysWeight     = 0.1
)

// fullCoverageDays is the day count treated as near-daily coverage for a
// year when normalizing the day-count term. Fixed, not configurable.
const fullCoverageDays = 300.0

// Metrics holds the coverage measurements for one variable over one analysis
// year. A Metrics value is computed fresh per call and never mutated after.
type Metrics struct {
	// SeasonalCoverage is the percentage of seasons with adequate data,
	// always one of 0, 25, 50, 75, 100.
	SeasonalCoverage float64

	// MonthlyCoverage is the percentage of months with at least one day of
	// data, in steps of 100/12.
	MonthlyCoverage float64

	// DaysWithData counts the unique calendar days with at least one reading.
	DaysWithData int

	// LargestGapDays is the longest run of empty days strictly between two
	// observed days.
	LargestGapDays int

	// OverallScore is the weighted composite of the other metrics, 0-100.
	OverallScore float64
}

// ComputeMetrics derives the coverage metrics for one variable from its raw
// observation times. seasonDayFraction is the fraction of a season's actual
// days (leap-aware) that must carry data before the season counts toward
// seasonal coverage. Empty input returns the zero Metrics without error.
func ComputeMetrics(year int, times []time.Time, seasonDayFraction float64) Metrics {
	idx := newDayIndex(year, times)
	if len(idx.days) == 0 {
		return Metrics{}
	}

	totals := seasonDayTotals(year)
	adequateSeasons := 0
	for s := SeasonWinter; s <= SeasonFall; s++ {
		if float64(idx.seasonDays[s]) >= seasonDayFraction*float64(totals[s]) {
			adequateSeasons++
		}
	}

	m := Metrics{
		SeasonalCoverage: float64(adequateSeasons) * 25.0,
		MonthlyCoverage:  float64(idx.monthsWithData()) * 100.0 / 12.0,
		DaysWithData:     len(idx.days),
		LargestGapDays:   largestGapDays(idx.days),
	}

	gapPenalty := float64(m.LargestGapDays * 2)
	if gapPenalty > 100 {
		gapPenalty = 100
	}
	daysScore := float64(m.DaysWithData) / fullCoverageDays * 100.0
	if daysScore > 100 {
		daysScore = 100
	}

	m.OverallScore = m.SeasonalCoverage*seasonalWeight +
		m.MonthlyCoverage*monthlyWeight +
		(100-gapPenalty)*gapWeight +
		daysScore*daysWeight

	return m
}
