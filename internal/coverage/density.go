package coverage

import "time"

// DensityEvaluator is the deprecated strategy that predates coverage scoring:
// it judges a year only by how many of its hourly slots carry data, blind to
// how those hours are distributed. Selectable for backward compatibility with
// reports written by older versions; new analyses should use
// CoverageEvaluator.
type DensityEvaluator struct {
	thresholds Thresholds
}

// NewDensityEvaluator creates a density evaluator with its own copy of
// thresholds.
func NewDensityEvaluator(thresholds Thresholds) *DensityEvaluator {
	return &DensityEvaluator{thresholds: thresholds}
}

// Evaluate fills the usual per-variable coverage blocks but derives verdicts
// from hourly density alone. A variable is adequate when its observed hours
// exceed the threshold fraction of the year's hours (strictly, matching the
// traditional calculator), and the combined state is PASS only when the hours
// carrying both variables exceed it; otherwise FAIL_DENSITY.
func (e *DensityEvaluator) Evaluate(year int, temperature, humidity []time.Time) Report {
	temp := ComputeMetrics(year, temperature, e.thresholds.SeasonDayFraction)
	hum := ComputeMetrics(year, humidity, e.thresholds.SeasonDayFraction)

	maxHours := float64(DaysInYear(year) * 24)
	tempHours := uniqueHours(temperature)
	humHours := uniqueHours(humidity)

	joint := 0
	for h := range tempHours {
		if _, ok := humHours[h]; ok {
			joint++
		}
	}

	tempAdequate := float64(len(tempHours))/maxHours > e.thresholds.DensityThreshold
	humAdequate := float64(len(humHours))/maxHours > e.thresholds.DensityThreshold

	state := StateFailDensity
	if float64(joint)/maxHours > e.thresholds.DensityThreshold {
		state = StatePass
	}
	return assembleReport(state, temp, hum, tempAdequate, humAdequate)
}

// hourSlot identifies one hour of one calendar day.
type hourSlot struct {
	year  int
	month time.Month
	day   int
	hour  int
}

func uniqueHours(times []time.Time) map[hourSlot]struct{} {
	hours := make(map[hourSlot]struct{}, len(times))
	for _, t := range times {
		hours[hourSlot{t.Year(), t.Month(), t.Day(), t.Hour()}] = struct{}{}
	}
	return hours
}
