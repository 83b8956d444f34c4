package reportserver

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/chrissnell/towqa/internal/constants"
	"github.com/chrissnell/towqa/internal/coverage"
	"github.com/chrissnell/towqa/internal/database"
	"github.com/chrissnell/towqa/internal/log"
	"github.com/chrissnell/towqa/internal/tow"
	"github.com/chrissnell/towqa/pkg/responseformat"
	"github.com/gorilla/mux"
)

// Handlers contains all HTTP handlers for the report server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// stationAndYear extracts and validates the station and year path variables,
// writing the error response itself when the request is rejected
func (h *Handlers) stationAndYear(w http.ResponseWriter, req *http.Request) (string, int, bool) {
	vars := mux.Vars(req)

	station := vars["station"]
	if !h.controller.StationNames[station] {
		http.Error(w, "station not found", http.StatusNotFound)
		return "", 0, false
	}

	year, err := strconv.Atoi(vars["year"])
	if err != nil {
		h.controller.logger.Errorf("invalid request: unable to parse year: %v", vars["year"])
		http.Error(w, "error: invalid year", http.StatusBadRequest)
		return "", 0, false
	}
	if year < 1800 || year > 2200 {
		http.Error(w, "error: year out of range", http.StatusBadRequest)
		return "", 0, false
	}

	return station, year, true
}

// evaluatorFromRequest resolves the coverage evaluator for a request,
// falling back to the configured default
func (h *Handlers) evaluatorFromRequest(w http.ResponseWriter, req *http.Request) (coverage.EvaluatorType, bool) {
	name := req.URL.Query().Get("evaluator")
	if name == "" {
		name = h.controller.cfg.DefaultEvaluator
	}

	switch coverage.EvaluatorType(name) {
	case coverage.EvaluatorTypeCoverage, coverage.EvaluatorTypeDensity:
		return coverage.EvaluatorType(name), true
	}

	http.Error(w, "error: unknown evaluator", http.StatusBadRequest)
	return "", false
}

// Query parameters that override individual QA thresholds for one request
var thresholdParams = []string{"seasonal", "monthly", "max_gap", "min_score", "season_day_fraction", "density"}

// thresholdsFromRequest applies per-request threshold overrides onto the
// controller's configured thresholds
func (h *Handlers) thresholdsFromRequest(req *http.Request) (coverage.Thresholds, bool, error) {
	t := h.controller.thresholds
	overridden := false

	q := req.URL.Query()
	for _, param := range thresholdParams {
		raw := q.Get(param)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return t, overridden, fmt.Errorf("invalid %s value %q", param, raw)
		}
		overridden = true
		switch param {
		case "seasonal":
			t.SeasonalThresholdPct = value
		case "monthly":
			t.MonthlyThresholdPct = value
		case "max_gap":
			t.MaxGapDays = int(value)
		case "min_score":
			t.MinOverallScore = value
		case "season_day_fraction":
			t.SeasonDayFraction = value
		case "density":
			t.DensityThreshold = value
		}
	}

	if err := t.Validate(); err != nil {
		return t, overridden, err
	}
	return t, overridden, nil
}

// GetCoverageReport handles requests for a station's annual coverage report
func (h *Handlers) GetCoverageReport(w http.ResponseWriter, req *http.Request) {
	c := h.controller

	station, year, ok := h.stationAndYear(w, req)
	if !ok {
		return
	}

	evaluator, ok := h.evaluatorFromRequest(w, req)
	if !ok {
		return
	}

	thresholds, overridden, err := h.thresholdsFromRequest(req)
	if err != nil {
		http.Error(w, fmt.Sprintf("error: %v", err), http.StatusBadRequest)
		return
	}

	if c.observations == nil {
		http.Error(w, "database not enabled", http.StatusInternalServerError)
		return
	}

	// Serve the cached report when nothing about this request deviates from
	// the configured analysis
	cacheable := c.DBEnabled && !overridden && req.URL.Query().Get("refresh") != "1"
	if cacheable {
		cached, generatedAt, err := c.DB.GetCachedCoverageReport(station, year, string(evaluator))
		if err != nil {
			c.logger.Warnf("coverage report cache lookup failed: %v", err)
		} else if cached != nil && time.Since(generatedAt) < time.Duration(c.cfg.CacheMaxAge)*time.Second {
			h.writeCoverageResponse(w, req, station, year, evaluator, *cached, true)
			return
		}
	}

	temperature, err := c.observations.FetchObservationTimes(station, "temperature", year)
	if err != nil {
		c.logger.Errorf("error fetching temperature observation times: %v", err)
		http.Error(w, "error fetching observation data", http.StatusInternalServerError)
		return
	}
	humidity, err := c.observations.FetchObservationTimes(station, "humidity", year)
	if err != nil {
		c.logger.Errorf("error fetching humidity observation times: %v", err)
		http.Error(w, "error fetching observation data", http.StatusInternalServerError)
		return
	}

	analyzer := coverage.NewAnalyzer(thresholds, c.logger, evaluator)
	report := analyzer.AnalyzeYear(year, temperature, humidity)

	if cacheable {
		if err := c.DB.SaveCoverageReport(station, year, string(evaluator), report); err != nil {
			c.logger.Warnf("unable to cache coverage report: %v", err)
		}
	}

	h.writeCoverageResponse(w, req, station, year, evaluator, report, false)
}

func (h *Handlers) writeCoverageResponse(w http.ResponseWriter, req *http.Request, station string, year int, evaluator coverage.EvaluatorType, report coverage.Report, fromCache bool) {
	headers := map[string]string{
		"Cache-Control": fmt.Sprintf("max-age=%d", h.controller.cfg.CacheMaxAge),
	}
	if fromCache {
		headers["X-Report-Cache"] = "hit"
	}

	resp := CoverageResponse{
		Station:          station,
		Year:             year,
		Evaluator:        string(evaluator),
		CoverageAnalysis: report,
	}
	if err := h.formatter.WriteResponse(w, req, resp, headers); err != nil {
		h.controller.logger.Errorf("error encoding coverage report response: %v", err)
	}
}

// qaThresholdFromRequest parses the traditional QA threshold override for
// the TOW endpoints
func (h *Handlers) qaThresholdFromRequest(w http.ResponseWriter, req *http.Request) (float64, bool) {
	raw := req.URL.Query().Get("threshold")
	if raw == "" {
		return tow.DefaultQAThreshold, true
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 || value >= 1 {
		http.Error(w, "error: threshold must be a number between 0 and 1", http.StatusBadRequest)
		return 0, false
	}
	return value, true
}

// GetTOWReport handles requests for a station's annual time-of-wetness report
func (h *Handlers) GetTOWReport(w http.ResponseWriter, req *http.Request) {
	c := h.controller

	station, year, ok := h.stationAndYear(w, req)
	if !ok {
		return
	}

	threshold, ok := h.qaThresholdFromRequest(w, req)
	if !ok {
		return
	}

	if c.observations == nil {
		http.Error(w, "database not enabled", http.StatusInternalServerError)
		return
	}

	obs, err := c.observations.FetchObservations(station, year)
	if err != nil {
		c.logger.Errorf("error fetching observations: %v", err)
		http.Error(w, "error fetching observation data", http.StatusInternalServerError)
		return
	}

	calc := tow.NewCalculatorWithThreshold(threshold, c.logger)
	feedObservations(calc, obs)

	yearReport, ok := calc.YearsWithCoverage()[year]
	if !ok {
		http.Error(w, "no observations for station and year", http.StatusNotFound)
		return
	}

	resp := TOWResponse{
		Station:      station,
		Year:         year,
		YearCoverage: yearReport,
	}
	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		c.logger.Errorf("error encoding TOW response: %v", err)
	}
}

// GetTOWAllYears handles requests for every year of a station's
// time-of-wetness history
func (h *Handlers) GetTOWAllYears(w http.ResponseWriter, req *http.Request) {
	c := h.controller

	station := mux.Vars(req)["station"]
	if !c.StationNames[station] {
		http.Error(w, "station not found", http.StatusNotFound)
		return
	}

	threshold, ok := h.qaThresholdFromRequest(w, req)
	if !ok {
		return
	}

	if c.observations == nil {
		http.Error(w, "database not enabled", http.StatusInternalServerError)
		return
	}

	obs, err := c.observations.FetchAllObservations(station)
	if err != nil {
		c.logger.Errorf("error fetching observations: %v", err)
		http.Error(w, "error fetching observation data", http.StatusInternalServerError)
		return
	}

	calc := tow.NewCalculatorWithThreshold(threshold, c.logger)
	feedObservations(calc, obs)

	resp := TOWYearsResponse{
		Station: station,
		Years:   calc.YearsWithCoverage(),
	}
	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		c.logger.Errorf("error encoding TOW years response: %v", err)
	}
}

// feedObservations loads raw observation rows into a TOW calculator
func feedObservations(calc *tow.Calculator, obs []database.Observation) {
	for _, o := range obs {
		if o.Temperature != nil {
			calc.AddTemperature(*o.Temperature, o.ObservedAt)
		}
		if o.Humidity != nil {
			calc.AddHumidity(*o.Humidity, o.ObservedAt)
		}
	}
}

// GetHealth handles liveness requests
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	c := h.controller

	health := HealthResponse{
		Status:   "ok",
		Version:  constants.Version,
		Database: "disabled",
	}

	if c.DBEnabled {
		if err := c.DB.Ping(); err != nil {
			health.Status = "degraded"
			health.Database = "unreachable"
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			health.Database = "ok"
		}
	}

	if err := h.formatter.WriteResponse(w, req, health, nil); err != nil {
		c.logger.Errorf("error encoding health response: %v", err)
	}
}

// GetRecentRequests serves the buffered HTTP request log
func (h *Handlers) GetRecentRequests(w http.ResponseWriter, req *http.Request) {
	entries := log.GetHTTPLogBuffer().Entries()

	resp := RequestLogResponse{
		Count:    len(entries),
		Requests: entries,
	}
	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		h.controller.logger.Errorf("error encoding request log response: %v", err)
	}
}
