package reportserver

import (
	"net/http"
	"time"

	"github.com/chrissnell/towqa/internal/coverage"
	"github.com/chrissnell/towqa/internal/database"
	"github.com/chrissnell/towqa/internal/log"
	"github.com/chrissnell/towqa/internal/tow"
)

// ObservationSource provides the observation series the report handlers
// analyze. *database.Client satisfies it; tests substitute fixtures.
type ObservationSource interface {
	FetchObservations(station string, year int) ([]database.Observation, error)
	FetchAllObservations(station string) ([]database.Observation, error)
	FetchObservationTimes(station string, variable string, year int) ([]time.Time, error)
}

// CoverageResponse is the payload served by the coverage report endpoint
type CoverageResponse struct {
	Station          string          `json:"station"`
	Year             int             `json:"year"`
	Evaluator        string          `json:"evaluator"`
	CoverageAnalysis coverage.Report `json:"coverage_analysis"`
}

// TOWResponse is the payload served by the single-year TOW endpoint
type TOWResponse struct {
	Station string `json:"station"`
	Year    int    `json:"year"`
	tow.YearCoverage
}

// TOWYearsResponse is the payload served by the all-years TOW endpoint
type TOWYearsResponse struct {
	Station string                   `json:"station"`
	Years   map[int]tow.YearCoverage `json:"years"`
}

// HealthResponse is the payload served by the health endpoint
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// RequestLogResponse is the payload served by the request debug endpoint
type RequestLogResponse struct {
	Count    int            `json:"count"`
	Requests []log.LogEntry `json:"requests"`
}

// statusRecorder captures the status code and bytes written so the request
// log middleware can report them
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}
