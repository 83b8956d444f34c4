// Package coverage scores how well a year of environmental measurements is
// spread across seasons, months, and days, and turns that score into the QA
// verdict attached to Time-of-Wetness reports. Evaluation strategies are
// pluggable: coverage scoring is the default, with the traditional density
// check selectable for backward compatibility.
package coverage

import (
	"time"

	"go.uber.org/zap"
)

// Analyzer runs coverage QA over station years using a pluggable evaluation
// strategy. An Analyzer is cheap to construct; callers needing different
// thresholds per request should build one per analysis context rather than
// mutating a shared instance.
type Analyzer struct {
	evaluator  Evaluator
	thresholds Thresholds
	logger     *zap.SugaredLogger
}

// NewAnalyzer creates an Analyzer with the specified evaluation strategy.
// evaluatorType selects the verdict logic (coverage, density); unknown types
// fall back to coverage.
func NewAnalyzer(thresholds Thresholds, logger *zap.SugaredLogger, evaluatorType EvaluatorType) *Analyzer {
	var evaluator Evaluator

	switch evaluatorType {
	case EvaluatorTypeCoverage:
		evaluator = NewCoverageEvaluator(thresholds)
	case EvaluatorTypeDensity:
		evaluator = NewDensityEvaluator(thresholds)
	default:
		evaluator = NewCoverageEvaluator(thresholds)
	}

	return &Analyzer{
		evaluator:  evaluator,
		thresholds: thresholds,
		logger:     logger,
	}
}

// AnalyzeYear produces the coverage report for one analysis year from the raw
// observation times of both variables. Running it twice on the same input
// yields identical output.
func (a *Analyzer) AnalyzeYear(year int, temperature, humidity []time.Time) Report {
	report := a.evaluator.Evaluate(year, temperature, humidity)
	a.logger.Debugf("coverage analysis %d: state=%s temp_days=%d hum_days=%d",
		year, report.EnhancedQAState, report.Temperature.DaysWithData, report.Humidity.DaysWithData)
	return report
}

// SetEvaluator allows runtime switching of evaluation strategy
func (a *Analyzer) SetEvaluator(evaluator Evaluator) {
	a.evaluator = evaluator
}

// Thresholds returns a copy of the analyzer's threshold configuration.
func (a *Analyzer) Thresholds() Thresholds {
	return a.thresholds
}
