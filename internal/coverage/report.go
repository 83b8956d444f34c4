package coverage

import "math"

// VariableCoverage is the per-variable block of a coverage report.
type VariableCoverage struct {
	AdequateCoverage bool    `json:"adequate_coverage"`
	SeasonalCoverage float64 `json:"seasonal_coverage"`
	MonthlyCoverage  float64 `json:"monthly_coverage"`
	DaysWithData     int     `json:"days_with_data"`
	LargestGapDays   int     `json:"largest_gap_days"`
	OverallScore     float64 `json:"overall_score"`
}

// Report is the coverage_analysis record consumed by the TOW reporting
// pipeline. The field names are a persisted contract and must not change.
type Report struct {
	EnhancedQAState State            `json:"enhanced_qa_state"`
	Temperature     VariableCoverage `json:"temperature"`
	Humidity        VariableCoverage `json:"humidity"`
}

// assembleReport packages both variables' metrics and verdicts with the
// combined state. Inputs are copied, never mutated. The overall score is
// rounded to one decimal here; Metrics keeps full precision.
func assembleReport(state State, temperature, humidity Metrics, temperatureAdequate, humidityAdequate bool) Report {
	return Report{
		EnhancedQAState: state,
		Temperature:     variableBlock(temperature, temperatureAdequate),
		Humidity:        variableBlock(humidity, humidityAdequate),
	}
}

func variableBlock(m Metrics, adequate bool) VariableCoverage {
	return VariableCoverage{
		AdequateCoverage: adequate,
		SeasonalCoverage: m.SeasonalCoverage,
		MonthlyCoverage:  m.MonthlyCoverage,
		DaysWithData:     m.DaysWithData,
		LargestGapDays:   m.LargestGapDays,
		OverallScore:     math.Round(m.OverallScore*10) / 10,
	}
}
