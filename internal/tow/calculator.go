// Package tow computes annual time-of-wetness from temperature and relative
// humidity readings bucketed into hourly slots. A slot counts as wet when its
// mean temperature is above freezing and its mean relative humidity exceeds
// 80%, the standard corrosion-exposure criterion. Two QA verdicts ride along
// with every year: the traditional hour-density check and the coverage
// engine's distribution analysis.
package tow

import (
	"math"
	"sort"
	"time"

	"github.com/chrissnell/towqa/internal/coverage"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// Wet-hour criterion: mean temperature above freezing and mean relative
// humidity above 80%, both strict.
const (
	wetTempCelsius = 0.0
	wetHumidityPct = 80.0
)

// DefaultQAThreshold is the fraction of a year's hours that must carry both
// variables for the traditional QA to pass.
const DefaultQAThreshold = 0.75

// hourSlot addresses one clock hour within a year.
type hourSlot struct {
	month time.Month
	day   int
	hour  int
}

// hourReadings collects every reading that landed in one slot. Slots with
// only one variable never contribute hours.
type hourReadings struct {
	temperatures []float64
	humidities   []float64
}

// Calculator accumulates readings into hourly slots per calendar year and
// summarizes each year on demand. It is not safe for concurrent mutation;
// feed it from a single goroutine.
type Calculator struct {
	years       map[int]map[hourSlot]*hourReadings
	qaThreshold float64
	analyzer    *coverage.Analyzer
	logger      *zap.SugaredLogger
}

// NewCalculator creates a Calculator with the default traditional QA
// threshold.
func NewCalculator(logger *zap.SugaredLogger) *Calculator {
	return NewCalculatorWithThreshold(DefaultQAThreshold, logger)
}

// NewCalculatorWithThreshold creates a Calculator whose traditional QA
// passes when the fraction of hours carrying both variables strictly
// exceeds qaThreshold.
func NewCalculatorWithThreshold(qaThreshold float64, logger *zap.SugaredLogger) *Calculator {
	return &Calculator{
		years:       make(map[int]map[hourSlot]*hourReadings),
		qaThreshold: qaThreshold,
		analyzer:    coverage.NewAnalyzer(coverage.DefaultThresholds(), logger, coverage.EvaluatorTypeCoverage),
		logger:      logger,
	}
}

// AddTemperature records a temperature reading in °C at its hour slot.
func (c *Calculator) AddTemperature(value float64, t time.Time) {
	r := c.slot(t)
	r.temperatures = append(r.temperatures, value)
}

// AddHumidity records a relative humidity reading in percent at its hour
// slot.
func (c *Calculator) AddHumidity(value float64, t time.Time) {
	r := c.slot(t)
	r.humidities = append(r.humidities, value)
}

func (c *Calculator) slot(t time.Time) *hourReadings {
	year := t.Year()
	slots := c.years[year]
	if slots == nil {
		slots = make(map[hourSlot]*hourReadings)
		c.years[year] = slots
	}
	key := hourSlot{month: t.Month(), day: t.Day(), hour: t.Hour()}
	r := slots[key]
	if r == nil {
		r = &hourReadings{}
		slots[key] = r
	}
	return r
}

// Years summarizes every year that has received at least one reading. Wet
// hours are projected over the hours without data so the estimate covers
// the whole year; no projection is made for years that fail QA.
func (c *Calculator) Years() map[int]YearTOW {
	years := make(map[int]YearTOW, len(c.years))
	for year, slots := range c.years {
		years[year] = c.yearTOW(year, slots)
	}
	return years
}

// YearsWithCoverage returns the same summaries as Years with the coverage
// engine's per-variable report attached to each year.
func (c *Calculator) YearsWithCoverage() map[int]YearCoverage {
	years := make(map[int]YearCoverage, len(c.years))
	for year, slots := range c.years {
		report := c.analyzer.AnalyzeYear(year,
			c.observationTimes(year, VariableTemperature),
			c.observationTimes(year, VariableHumidity))
		years[year] = YearCoverage{
			YearTOW:          c.yearTOW(year, slots),
			CoverageAnalysis: report,
		}
	}
	return years
}

func (c *Calculator) yearTOW(year int, slots map[hourSlot]*hourReadings) YearTOW {
	maxHours := coverage.DaysInYear(year) * 24

	var totalHours, wetHours int
	for _, r := range slots {
		if len(r.temperatures) == 0 || len(r.humidities) == 0 {
			continue
		}
		totalHours++
		if stat.Mean(r.temperatures, nil) > wetTempCelsius && stat.Mean(r.humidities, nil) > wetHumidityPct {
			wetHours++
		}
	}

	y := YearTOW{
		MaxHours:     maxHours,
		TotalHours:   totalHours,
		QAState:      QAStateFail,
		PercentValid: float64(totalHours) / float64(maxHours),
	}
	if y.PercentValid > c.qaThreshold {
		y.QAState = QAStatePass
		projected := projectTOW(wetHours, totalHours, maxHours)
		y.TimeOfWetness = &projected
	}
	return y
}

// projectTOW extrapolates the observed wet fraction over the full year,
// rounded to two decimals.
func projectTOW(wetHours, totalHours, maxHours int) float64 {
	projected := float64(wetHours) / float64(totalHours) * float64(maxHours)
	return math.Round(projected*100) / 100
}

// ObservationTimes returns the hour timestamps carrying at least one reading
// of the given variable in the given year, sorted ascending.
func (c *Calculator) ObservationTimes(year int, variable Variable) []time.Time {
	return c.observationTimes(year, variable)
}

func (c *Calculator) observationTimes(year int, variable Variable) []time.Time {
	slots := c.years[year]
	times := make([]time.Time, 0, len(slots))
	for key, r := range slots {
		values := r.temperatures
		if variable == VariableHumidity {
			values = r.humidities
		}
		if len(values) == 0 {
			continue
		}
		times = append(times, time.Date(year, key.month, key.day, key.hour, 0, 0, 0, time.UTC))
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times
}

// AssessYearCoverage computes one variable's coverage metrics and whether
// they clear every adequacy threshold.
func (c *Calculator) AssessYearCoverage(year int, variable Variable) (coverage.Metrics, bool) {
	thresholds := c.analyzer.Thresholds()
	m := coverage.ComputeMetrics(year, c.observationTimes(year, variable), thresholds.SeasonDayFraction)
	return m, coverage.Adequate(m, thresholds)
}

// AdequateYearCoverage reports whether one variable's observations are
// distributed well enough across the year to trust an annual estimate.
func (c *Calculator) AdequateYearCoverage(year int, variable Variable) bool {
	_, adequate := c.AssessYearCoverage(year, variable)
	return adequate
}
