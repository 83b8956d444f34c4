package coverage

import (
	"sync"
	"time"
)

// State is the terminal QA verdict for one analysis year.
type State string

const (
	// StatePass means both variables have adequate temporal coverage.
	StatePass State = "PASS"

	// StateFailCoverage means at least one variable's coverage is inadequate.
	StateFailCoverage State = "FAIL_COVERAGE"

	// StateFailDensity is produced only by the deprecated density evaluator,
	// kept so reports written by older versions can be regenerated.
	StateFailDensity State = "FAIL_DENSITY"
)

// Evaluator defines the interface for QA evaluation strategies.
// Implementations take the raw observation times of both variables for one
// analysis year and produce the full coverage report. Evaluation is a pure
// function of its inputs: no state is carried between calls.
type Evaluator interface {
	// Evaluate produces the coverage report for one analysis year
	Evaluate(year int, temperature, humidity []time.Time) Report
}

// EvaluatorType identifies the evaluation strategy
type EvaluatorType string

const (
	// EvaluatorTypeCoverage scores temporal distribution across seasons,
	// months, gaps, and day counts
	EvaluatorTypeCoverage EvaluatorType = "coverage"

	// EvaluatorTypeDensity is the deprecated hourly-density check
	EvaluatorTypeDensity EvaluatorType = "density"
)

// CoverageEvaluator is the default strategy: per-variable coverage metrics,
// conjunctive adequacy thresholds, and a PASS/FAIL_COVERAGE verdict.
type CoverageEvaluator struct {
	thresholds Thresholds
}

// NewCoverageEvaluator creates a coverage evaluator with its own copy of
// thresholds.
func NewCoverageEvaluator(thresholds Thresholds) *CoverageEvaluator {
	return &CoverageEvaluator{thresholds: thresholds}
}

// Evaluate computes both variables' metrics and combines their adequacy
// verdicts. The variables are independent, so their metrics are computed
// concurrently; each goroutine writes only its own slot.
func (e *CoverageEvaluator) Evaluate(year int, temperature, humidity []time.Time) Report {
	var temp, hum Metrics
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		temp = ComputeMetrics(year, temperature, e.thresholds.SeasonDayFraction)
	}()
	go func() {
		defer wg.Done()
		hum = ComputeMetrics(year, humidity, e.thresholds.SeasonDayFraction)
	}()
	wg.Wait()

	tempAdequate := Adequate(temp, e.thresholds)
	humAdequate := Adequate(hum, e.thresholds)

	state := StateFailCoverage
	if tempAdequate && humAdequate {
		state = StatePass
	}
	return assembleReport(state, temp, hum, tempAdequate, humAdequate)
}

// Adequate reports whether metrics clear every adequacy threshold. All four
// conditions are conjunctive and boundary-inclusive; a dataset failing any
// one axis is inadequate regardless of its aggregate score.
func Adequate(m Metrics, t Thresholds) bool {
	return m.SeasonalCoverage >= t.SeasonalThresholdPct &&
		m.MonthlyCoverage >= t.MonthlyThresholdPct &&
		m.LargestGapDays <= t.MaxGapDays &&
		m.OverallScore >= t.MinOverallScore
}
