package coverage

import (
	"math"
	"testing"
	"time"
)

func TestAdequateBoundaries(t *testing.T) {
	thresholds := DefaultThresholds()

	base := Metrics{
		SeasonalCoverage: 75,
		MonthlyCoverage:  75,
		LargestGapDays:   60,
		OverallScore:     70,
	}

	tests := []struct {
		name     string
		mutate   func(m Metrics) Metrics
		expected bool
	}{
		{
			name:     "every threshold exactly at its boundary passes",
			mutate:   func(m Metrics) Metrics { return m },
			expected: true,
		},
		{
			name: "seasonal just below threshold fails",
			mutate: func(m Metrics) Metrics {
				m.SeasonalCoverage = 50
				return m
			},
			expected: false,
		},
		{
			name: "monthly just below threshold fails",
			mutate: func(m Metrics) Metrics {
				m.MonthlyCoverage = 74.99
				return m
			},
			expected: false,
		},
		{
			name: "gap one day over threshold fails",
			mutate: func(m Metrics) Metrics {
				m.LargestGapDays = 61
				return m
			},
			expected: false,
		},
		{
			name: "score just below threshold fails",
			mutate: func(m Metrics) Metrics {
				m.OverallScore = 69.9
				return m
			},
			expected: false,
		},
		{
			name: "perfect metrics pass",
			mutate: func(m Metrics) Metrics {
				return Metrics{SeasonalCoverage: 100, MonthlyCoverage: 100, DaysWithData: 365, OverallScore: 100}
			},
			expected: true,
		},
		{
			name: "zero metrics fail",
			mutate: func(m Metrics) Metrics {
				return Metrics{}
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Adequate(tt.mutate(base), thresholds); got != tt.expected {
				t.Errorf("expected adequate=%t, got %t", tt.expected, got)
			}
		})
	}
}

func TestCoverageEvaluatorStates(t *testing.T) {
	year := 2021

	fullYear := dailyNoon(year, time.January, 1, 365)
	halfYear := dailyNoon(year, time.January, 1, 182)
	clustered := fullMonthsNoon(year, time.January, time.April, time.July)

	tests := []struct {
		name                 string
		temperature          []time.Time
		humidity             []time.Time
		expectedState        State
		expectedTempAdequate bool
		expectedHumAdequate  bool
	}{
		{
			name:                 "both variables covered all year",
			temperature:          fullYear,
			humidity:             fullYear,
			expectedState:        StatePass,
			expectedTempAdequate: true,
			expectedHumAdequate:  true,
		},
		{
			name:                 "one inadequate variable fails the pair",
			temperature:          fullYear,
			humidity:             halfYear,
			expectedState:        StateFailCoverage,
			expectedTempAdequate: true,
			expectedHumAdequate:  false,
		},
		{
			name:                 "clustered data fails both",
			temperature:          clustered,
			humidity:             clustered,
			expectedState:        StateFailCoverage,
			expectedTempAdequate: false,
			expectedHumAdequate:  false,
		},
		{
			name:                 "empty input fails without error",
			temperature:          nil,
			humidity:             nil,
			expectedState:        StateFailCoverage,
			expectedTempAdequate: false,
			expectedHumAdequate:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := NewCoverageEvaluator(DefaultThresholds()).Evaluate(year, tt.temperature, tt.humidity)

			if report.EnhancedQAState != tt.expectedState {
				t.Errorf("expected state %s, got %s", tt.expectedState, report.EnhancedQAState)
			}
			if report.Temperature.AdequateCoverage != tt.expectedTempAdequate {
				t.Errorf("expected temperature adequate=%t, got %t",
					tt.expectedTempAdequate, report.Temperature.AdequateCoverage)
			}
			if report.Humidity.AdequateCoverage != tt.expectedHumAdequate {
				t.Errorf("expected humidity adequate=%t, got %t",
					tt.expectedHumAdequate, report.Humidity.AdequateCoverage)
			}
		})
	}
}

func TestCoverageEvaluatorDenseThenSparseYearPasses(t *testing.T) {
	year := 2021
	times := append(
		dailyNoon(year, time.January, 1, 181),
		everyNthDayNoon(
			time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC),
			time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
			3,
		)...,
	)

	report := NewCoverageEvaluator(DefaultThresholds()).Evaluate(year, times, times)

	if report.EnhancedQAState != StatePass {
		t.Fatalf("expected PASS, got %s", report.EnhancedQAState)
	}
	if !report.Temperature.AdequateCoverage {
		t.Error("expected adequate temperature coverage")
	}
	if report.Temperature.LargestGapDays > 3 {
		t.Errorf("expected small gaps, got %d", report.Temperature.LargestGapDays)
	}
	if report.Temperature.OverallScore < 70 {
		t.Errorf("expected score >= 70, got %.1f", report.Temperature.OverallScore)
	}
}

func TestCoverageEvaluatorClusteredMonthsDetail(t *testing.T) {
	// Full data for January, April, and July only. At a relaxed season
	// fraction three seasons still count; at the default none do.
	year := 2021
	clustered := fullMonthsNoon(year, time.January, time.April, time.July)

	relaxed := DefaultThresholds()
	relaxed.SeasonDayFraction = 0.3

	report := NewCoverageEvaluator(relaxed).Evaluate(year, clustered, clustered)
	temp := report.Temperature

	if temp.SeasonalCoverage != 75 {
		t.Errorf("expected seasonal 75, got %.1f", temp.SeasonalCoverage)
	}
	if math.Abs(temp.MonthlyCoverage-25) > 0.01 {
		t.Errorf("expected monthly 25, got %.2f", temp.MonthlyCoverage)
	}
	if temp.LargestGapDays != 61 {
		t.Errorf("expected gap 61, got %d", temp.LargestGapDays)
	}
	if temp.OverallScore < 40 || temp.OverallScore > 50 {
		t.Errorf("expected score in [40,50], got %.1f", temp.OverallScore)
	}
	if temp.AdequateCoverage {
		t.Error("clustered months must stay inadequate")
	}
	if report.EnhancedQAState != StateFailCoverage {
		t.Errorf("expected FAIL_COVERAGE, got %s", report.EnhancedQAState)
	}

	report = NewCoverageEvaluator(DefaultThresholds()).Evaluate(year, clustered, clustered)
	if report.Temperature.SeasonalCoverage != 0 {
		t.Errorf("default fraction: expected seasonal 0, got %.1f", report.Temperature.SeasonalCoverage)
	}
	if report.EnhancedQAState != StateFailCoverage {
		t.Errorf("default fraction: expected FAIL_COVERAGE, got %s", report.EnhancedQAState)
	}
}
