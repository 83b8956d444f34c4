package coverage

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

// dailyNoon returns one noon timestamp per day for count consecutive days
// starting at the given date.
func dailyNoon(year int, month time.Month, day, count int) []time.Time {
	times := make([]time.Time, 0, count)
	start := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		times = append(times, start.AddDate(0, 0, i))
	}
	return times
}

// everyNthDayNoon returns noon timestamps stepping n days from start through
// end inclusive.
func everyNthDayNoon(start, end time.Time, n int) []time.Time {
	var times []time.Time
	for t := start; !t.After(end); t = t.AddDate(0, 0, n) {
		times = append(times, time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC))
	}
	return times
}

// fullMonthsNoon returns one noon timestamp per day of each listed month.
func fullMonthsNoon(year int, months ...time.Month) []time.Time {
	var times []time.Time
	for _, m := range months {
		times = append(times, dailyNoon(year, m, 1, daysInMonth(year, m))...)
	}
	return times
}

// hourlyTimes returns one timestamp per hour for count days starting Jan 1.
func hourlyTimes(year, count int) []time.Time {
	times := make([]time.Time, 0, count*24)
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < count*24; i++ {
		times = append(times, start.Add(time.Duration(i)*time.Hour))
	}
	return times
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestNewAnalyzerStrategySelection(t *testing.T) {
	thresholds := DefaultThresholds()
	year := 2021
	daily := dailyNoon(year, time.January, 1, 365)

	tests := []struct {
		name          string
		evaluatorType EvaluatorType
		expectedState State
	}{
		{
			name:          "coverage evaluator passes well-spread daily data",
			evaluatorType: EvaluatorTypeCoverage,
			expectedState: StatePass,
		},
		{
			name:          "density evaluator fails the same data on hourly density",
			evaluatorType: EvaluatorTypeDensity,
			expectedState: StateFailDensity,
		},
		{
			name:          "unknown type falls back to coverage",
			evaluatorType: EvaluatorType("bogus"),
			expectedState: StatePass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := NewAnalyzer(thresholds, testLogger(), tt.evaluatorType)
			report := analyzer.AnalyzeYear(year, daily, daily)
			if report.EnhancedQAState != tt.expectedState {
				t.Errorf("expected state %s, got %s", tt.expectedState, report.EnhancedQAState)
			}
		})
	}
}

func TestAnalyzerSetEvaluator(t *testing.T) {
	year := 2021
	daily := dailyNoon(year, time.January, 1, 365)

	analyzer := NewAnalyzer(DefaultThresholds(), testLogger(), EvaluatorTypeCoverage)
	if state := analyzer.AnalyzeYear(year, daily, daily).EnhancedQAState; state != StatePass {
		t.Fatalf("expected PASS from coverage evaluator, got %s", state)
	}

	analyzer.SetEvaluator(NewDensityEvaluator(DefaultThresholds()))
	if state := analyzer.AnalyzeYear(year, daily, daily).EnhancedQAState; state != StateFailDensity {
		t.Errorf("expected FAIL_DENSITY after switching evaluator, got %s", state)
	}
}

func TestAnalyzeYearIdempotent(t *testing.T) {
	year := 2021
	temp := everyNthDayNoon(
		time.Date(year, time.January, 3, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC),
		5,
	)
	hum := dailyNoon(year, time.February, 1, 200)

	analyzer := NewAnalyzer(DefaultThresholds(), testLogger(), EvaluatorTypeCoverage)
	first := analyzer.AnalyzeYear(year, temp, hum)
	second := analyzer.AnalyzeYear(year, temp, hum)

	if first != second {
		t.Errorf("repeated analysis differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAnalyzeYearDoesNotMutateInput(t *testing.T) {
	year := 2021
	// Deliberately unsorted input.
	times := []time.Time{
		time.Date(year, time.June, 15, 9, 0, 0, 0, time.UTC),
		time.Date(year, time.January, 2, 9, 0, 0, 0, time.UTC),
		time.Date(year, time.March, 20, 9, 0, 0, 0, time.UTC),
	}
	original := make([]time.Time, len(times))
	copy(original, times)

	analyzer := NewAnalyzer(DefaultThresholds(), testLogger(), EvaluatorTypeCoverage)
	analyzer.AnalyzeYear(year, times, times)

	for i := range times {
		if !times[i].Equal(original[i]) {
			t.Fatalf("input slice mutated at %d: %s != %s", i, times[i], original[i])
		}
	}
}
