package tow

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/chrissnell/towqa/internal/coverage"
	"go.uber.org/zap"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// feedHourlyBoth feeds one temperature and one humidity reading at every
// hour for count consecutive hours starting at midnight Jan 1.
func feedHourlyBoth(c *Calculator, year, count int, temp, rh float64) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for h := 0; h < count; h++ {
		ts := start.Add(time.Duration(h) * time.Hour)
		c.AddTemperature(temp, ts)
		c.AddHumidity(rh, ts)
	}
}

func TestYears(t *testing.T) {
	tests := []struct {
		name          string
		hours         int
		temp          float64
		rh            float64
		wantState     string
		wantProjected bool
		wantTOW       float64
	}{
		{
			name:          "wet full year passes QA",
			hours:         8760,
			temp:          12.0,
			rh:            90.0,
			wantState:     QAStatePass,
			wantProjected: true,
			wantTOW:       8760.0,
		},
		{
			name:          "dry full year passes QA with zero wetness",
			hours:         8760,
			temp:          25.0,
			rh:            40.0,
			wantState:     QAStatePass,
			wantProjected: true,
			wantTOW:       0.0,
		},
		{
			name:          "humid but freezing stays dry",
			hours:         8760,
			temp:          -5.0,
			rh:            95.0,
			wantState:     QAStatePass,
			wantProjected: true,
			wantTOW:       0.0,
		},
		{
			name:          "humidity at exactly 80 percent stays dry",
			hours:         8760,
			temp:          10.0,
			rh:            80.0,
			wantState:     QAStatePass,
			wantProjected: true,
			wantTOW:       0.0,
		},
		{
			name:      "half year fails QA",
			hours:     4368,
			temp:      12.0,
			rh:        90.0,
			wantState: QAStateFail,
		},
		{
			name:      "exactly three quarters fails strict threshold",
			hours:     6570,
			temp:      12.0,
			rh:        90.0,
			wantState: QAStateFail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCalculator(testLogger())
			feedHourlyBoth(c, 2021, tt.hours, tt.temp, tt.rh)

			years := c.Years()
			y, ok := years[2021]
			if !ok {
				t.Fatalf("Years() missing 2021, got keys %v", len(years))
			}
			if y.MaxHours != 8760 {
				t.Errorf("MaxHours = %d, want 8760", y.MaxHours)
			}
			if y.TotalHours != tt.hours {
				t.Errorf("TotalHours = %d, want %d", y.TotalHours, tt.hours)
			}
			if y.QAState != tt.wantState {
				t.Errorf("QAState = %q, want %q", y.QAState, tt.wantState)
			}
			wantValid := float64(tt.hours) / 8760.0
			if math.Abs(y.PercentValid-wantValid) > 1e-9 {
				t.Errorf("PercentValid = %v, want %v", y.PercentValid, wantValid)
			}
			if tt.wantProjected {
				if y.TimeOfWetness == nil {
					t.Fatal("TimeOfWetness = nil, want projection")
				}
				if math.Abs(*y.TimeOfWetness-tt.wantTOW) > 1e-9 {
					t.Errorf("TimeOfWetness = %v, want %v", *y.TimeOfWetness, tt.wantTOW)
				}
			} else if y.TimeOfWetness != nil {
				t.Errorf("TimeOfWetness = %v, want nil on QA failure", *y.TimeOfWetness)
			}
		})
	}
}

func TestYearsEmptyCalculator(t *testing.T) {
	c := NewCalculator(testLogger())
	if got := c.Years(); len(got) != 0 {
		t.Errorf("Years() on empty calculator = %v, want empty map", got)
	}
	if got := c.YearsWithCoverage(); len(got) != 0 {
		t.Errorf("YearsWithCoverage() on empty calculator = %v, want empty map", got)
	}
}

func TestYearsLeapYear(t *testing.T) {
	c := NewCalculator(testLogger())
	feedHourlyBoth(c, 2020, 8784, 15.0, 92.0)

	y := c.Years()[2020]
	if y.MaxHours != 8784 {
		t.Errorf("MaxHours = %d, want 8784", y.MaxHours)
	}
	if y.TotalHours != 8784 {
		t.Errorf("TotalHours = %d, want 8784", y.TotalHours)
	}
	if y.QAState != QAStatePass {
		t.Errorf("QAState = %q, want %q", y.QAState, QAStatePass)
	}
	if y.TimeOfWetness == nil || *y.TimeOfWetness != 8784.0 {
		t.Errorf("TimeOfWetness = %v, want 8784", y.TimeOfWetness)
	}
}

func TestYearsMultipleYears(t *testing.T) {
	c := NewCalculator(testLogger())
	feedHourlyBoth(c, 2020, 240, 10.0, 85.0)
	feedHourlyBoth(c, 2021, 240, 10.0, 85.0)

	years := c.Years()
	if len(years) != 2 {
		t.Fatalf("Years() returned %d years, want 2", len(years))
	}
	for _, year := range []int{2020, 2021} {
		y, ok := years[year]
		if !ok {
			t.Fatalf("Years() missing %d", year)
		}
		if y.TotalHours != 240 {
			t.Errorf("year %d TotalHours = %d, want 240", year, y.TotalHours)
		}
		if y.QAState != QAStateFail {
			t.Errorf("year %d QAState = %q, want %q", year, y.QAState, QAStateFail)
		}
	}
}

// Hours carrying only one of the two variables never count toward QA or
// wetness.
func TestYearsRequiresBothVariables(t *testing.T) {
	c := NewCalculator(testLogger())
	start := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 100; h++ {
		ts := start.Add(time.Duration(h) * time.Hour)
		c.AddTemperature(10.0, ts)
		if h < 50 {
			c.AddHumidity(90.0, ts)
		}
	}

	y := c.Years()[2021]
	if y.TotalHours != 50 {
		t.Errorf("TotalHours = %d, want 50", y.TotalHours)
	}
}

// Wetness is decided by the slot means, not by any individual reading.
func TestYearsWetnessUsesSlotMeans(t *testing.T) {
	c := NewCalculatorWithThreshold(0.0001, testLogger())
	jan1 := func(hour int) time.Time {
		return time.Date(2021, time.January, 1, hour, 0, 0, 0, time.UTC)
	}

	// Hour 0: one warm and one very cold reading average below freezing.
	c.AddTemperature(10.0, jan1(0))
	c.AddTemperature(-20.0, jan1(0))
	c.AddHumidity(95.0, jan1(0))

	// Hour 1: readings straddle the humidity line but average above it.
	c.AddTemperature(1.0, jan1(1))
	c.AddTemperature(2.0, jan1(1))
	c.AddHumidity(79.0, jan1(1))
	c.AddHumidity(84.0, jan1(1))

	// Hour 2: warm but the mean humidity sits exactly on the line.
	c.AddTemperature(5.0, jan1(2))
	c.AddHumidity(80.0, jan1(2))

	y := c.Years()[2021]
	if y.TotalHours != 3 {
		t.Fatalf("TotalHours = %d, want 3", y.TotalHours)
	}
	if y.QAState != QAStatePass {
		t.Fatalf("QAState = %q, want %q under lowered threshold", y.QAState, QAStatePass)
	}
	// One wet hour of three projects to a third of the year.
	want := math.Round(1.0/3.0*8760.0*100) / 100
	if y.TimeOfWetness == nil || math.Abs(*y.TimeOfWetness-want) > 1e-9 {
		t.Errorf("TimeOfWetness = %v, want %v", y.TimeOfWetness, want)
	}
}

func TestProjectTOW(t *testing.T) {
	tests := []struct {
		name       string
		wetHours   int
		totalHours int
		maxHours   int
		want       float64
	}{
		{"no wet hours", 0, 10, 8760, 0.0},
		{"all hours wet", 10, 10, 8760, 8760.0},
		{"one third wet", 1, 3, 8760, 2920.0},
		{"rounds to two decimals", 1, 7, 8760, 1251.43},
		{"rounds up", 3, 7, 8760, 3754.29},
		{"leap year projection", 2, 3, 8784, 5856.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := projectTOW(tt.wetHours, tt.totalHours, tt.maxHours)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("projectTOW(%d, %d, %d) = %v, want %v",
					tt.wetHours, tt.totalHours, tt.maxHours, got, tt.want)
			}
		})
	}
}

func TestObservationTimes(t *testing.T) {
	c := NewCalculator(testLogger())

	// Out-of-order readings, a duplicate hour, and sub-hour offsets.
	c.AddTemperature(5.0, time.Date(2021, time.March, 10, 5, 15, 0, 0, time.UTC))
	c.AddTemperature(6.0, time.Date(2021, time.March, 10, 3, 0, 0, 0, time.UTC))
	c.AddTemperature(7.0, time.Date(2021, time.March, 10, 3, 45, 0, 0, time.UTC))
	c.AddTemperature(8.0, time.Date(2021, time.March, 10, 7, 59, 0, 0, time.UTC))

	got := c.ObservationTimes(2021, VariableTemperature)
	want := []time.Time{
		time.Date(2021, time.March, 10, 3, 0, 0, 0, time.UTC),
		time.Date(2021, time.March, 10, 5, 0, 0, 0, time.UTC),
		time.Date(2021, time.March, 10, 7, 0, 0, 0, time.UTC),
	}
	if len(got) != len(want) {
		t.Fatalf("ObservationTimes returned %d times, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("ObservationTimes[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if got := c.ObservationTimes(2021, VariableHumidity); len(got) != 0 {
		t.Errorf("ObservationTimes(humidity) = %v, want none", got)
	}
	if got := c.ObservationTimes(2020, VariableTemperature); len(got) != 0 {
		t.Errorf("ObservationTimes(2020) = %v, want none", got)
	}
}

func TestYearsWithCoverage(t *testing.T) {
	t.Run("full year passes both verdicts", func(t *testing.T) {
		c := NewCalculator(testLogger())
		feedHourlyBoth(c, 2021, 8760, 12.0, 90.0)

		y, ok := c.YearsWithCoverage()[2021]
		if !ok {
			t.Fatal("YearsWithCoverage() missing 2021")
		}
		if y.QAState != QAStatePass {
			t.Errorf("QAState = %q, want %q", y.QAState, QAStatePass)
		}
		if y.CoverageAnalysis.EnhancedQAState != coverage.StatePass {
			t.Errorf("EnhancedQAState = %q, want %q", y.CoverageAnalysis.EnhancedQAState, coverage.StatePass)
		}
		if !y.CoverageAnalysis.Temperature.AdequateCoverage || !y.CoverageAnalysis.Humidity.AdequateCoverage {
			t.Error("both variables should have adequate coverage")
		}
		if y.CoverageAnalysis.Temperature.OverallScore < 95.0 {
			t.Errorf("temperature OverallScore = %v, want >= 95", y.CoverageAnalysis.Temperature.OverallScore)
		}
	})

	t.Run("clustered quarter passes traditional QA but fails coverage", func(t *testing.T) {
		// Under a lowered density threshold, 90 days of hourly data clear
		// the traditional check while the distribution check still fails.
		c := NewCalculatorWithThreshold(0.1, testLogger())
		feedHourlyBoth(c, 2021, 90*24, 12.0, 90.0)

		y := c.YearsWithCoverage()[2021]
		if y.QAState != QAStatePass {
			t.Fatalf("QAState = %q, want %q", y.QAState, QAStatePass)
		}
		if y.TimeOfWetness == nil {
			t.Fatal("TimeOfWetness = nil, want projection when traditional QA passes")
		}
		if y.CoverageAnalysis.EnhancedQAState != coverage.StateFailCoverage {
			t.Errorf("EnhancedQAState = %q, want %q", y.CoverageAnalysis.EnhancedQAState, coverage.StateFailCoverage)
		}
		if y.CoverageAnalysis.Temperature.AdequateCoverage {
			t.Error("clustered temperature data should not count as adequate coverage")
		}
	})

	t.Run("half year fails both verdicts", func(t *testing.T) {
		c := NewCalculator(testLogger())
		feedHourlyBoth(c, 2021, 4368, 12.0, 90.0)

		y := c.YearsWithCoverage()[2021]
		if y.QAState != QAStateFail {
			t.Errorf("QAState = %q, want %q", y.QAState, QAStateFail)
		}
		if y.TimeOfWetness != nil {
			t.Errorf("TimeOfWetness = %v, want nil", *y.TimeOfWetness)
		}
		if y.CoverageAnalysis.EnhancedQAState != coverage.StateFailCoverage {
			t.Errorf("EnhancedQAState = %q, want %q", y.CoverageAnalysis.EnhancedQAState, coverage.StateFailCoverage)
		}
	})
}

func TestAssessYearCoveragePerVariable(t *testing.T) {
	c := NewCalculator(testLogger())

	// Temperature every six hours all year; humidity every six hours for
	// only the first half.
	for d := 0; d < 365; d++ {
		day := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
		for _, h := range []int{0, 6, 12, 18} {
			ts := day.Add(time.Duration(h) * time.Hour)
			c.AddTemperature(10.0, ts)
			if d < 181 {
				c.AddHumidity(85.0, ts)
			}
		}
	}

	tempMetrics, tempAdequate := c.AssessYearCoverage(2021, VariableTemperature)
	humMetrics, humAdequate := c.AssessYearCoverage(2021, VariableHumidity)

	if !tempAdequate {
		t.Error("full-year temperature coverage should be adequate")
	}
	if humAdequate {
		t.Error("half-year humidity coverage should not be adequate")
	}
	if tempMetrics.DaysWithData != 365 {
		t.Errorf("temperature DaysWithData = %d, want 365", tempMetrics.DaysWithData)
	}
	if humMetrics.DaysWithData != 181 {
		t.Errorf("humidity DaysWithData = %d, want 181", humMetrics.DaysWithData)
	}
	if tempMetrics.OverallScore <= humMetrics.OverallScore {
		t.Errorf("temperature score %v should exceed humidity score %v",
			tempMetrics.OverallScore, humMetrics.OverallScore)
	}

	if got := c.AdequateYearCoverage(2021, VariableTemperature); !got {
		t.Error("AdequateYearCoverage(temperature) = false, want true")
	}
	if got := c.AdequateYearCoverage(2021, VariableHumidity); got {
		t.Error("AdequateYearCoverage(humidity) = true, want false")
	}
}

func TestYearCoverageJSONShape(t *testing.T) {
	c := NewCalculator(testLogger())
	feedHourlyBoth(c, 2021, 4368, 12.0, 90.0)

	raw, err := json.Marshal(c.YearsWithCoverage()[2021])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"max_hours", "total_hours", "time_of_wetness", "qa_state", "percent_valid", "coverage_analysis"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("payload missing key %q", key)
		}
	}
	if decoded["time_of_wetness"] != nil {
		t.Errorf("time_of_wetness = %v, want null on QA failure", decoded["time_of_wetness"])
	}
	analysis, ok := decoded["coverage_analysis"].(map[string]any)
	if !ok {
		t.Fatalf("coverage_analysis has type %T, want object", decoded["coverage_analysis"])
	}
	if _, ok := analysis["enhanced_qa_state"]; !ok {
		t.Error("coverage_analysis missing enhanced_qa_state")
	}
}
