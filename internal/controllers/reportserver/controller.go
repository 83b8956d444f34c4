package reportserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/towqa/internal/controllers"
	"github.com/chrissnell/towqa/internal/coverage"
	"github.com/chrissnell/towqa/internal/database"
	"github.com/chrissnell/towqa/internal/log"
	"github.com/chrissnell/towqa/pkg/config"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Controller represents the report server controller
type Controller struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	cfg            config.ReportServerData
	Server         http.Server
	DB             *database.Client
	DBEnabled      bool
	StationNames   map[string]bool
	thresholds     coverage.Thresholds
	observations   ObservationSource
	logger         *zap.SugaredLogger
	handlers       *Handlers
}

// NewController creates a new report server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, rc config.ReportServerData, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		cfg:            rc,
		logger:         logger,
	}

	// Load station configuration
	stations, err := configProvider.GetStations()
	if err != nil {
		return nil, fmt.Errorf("error loading station configuration: %v", err)
	}

	if len(stations) == 0 {
		return nil, fmt.Errorf("no stations configured - at least one station must be configured for the report server")
	}

	ctrl.StationNames = make(map[string]bool, len(stations))
	for _, station := range stations {
		ctrl.StationNames[station.Name] = true
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if ctrl.cfg.ListenAddr == "" {
		logger.Info("report-server.listen-addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		ctrl.cfg.ListenAddr = "0.0.0.0"
	}

	// Set default HTTP port if not specified
	if ctrl.cfg.Port == 0 {
		logger.Info("report-server.port not provided; defaulting to 8080")
		ctrl.cfg.Port = 8080
	}

	if ctrl.cfg.DefaultEvaluator == "" {
		ctrl.cfg.DefaultEvaluator = string(coverage.EvaluatorTypeCoverage)
	}
	switch coverage.EvaluatorType(ctrl.cfg.DefaultEvaluator) {
	case coverage.EvaluatorTypeCoverage, coverage.EvaluatorTypeDensity:
	default:
		return nil, fmt.Errorf("unknown default evaluator: %s", ctrl.cfg.DefaultEvaluator)
	}

	if ctrl.cfg.CacheMaxAge == 0 {
		ctrl.cfg.CacheMaxAge = 3600
	}

	// Merge configured QA thresholds onto the engine defaults and reject
	// impossible combinations up front
	ctrl.thresholds = baseThresholds(ctrl.cfg.QA)
	if err := ctrl.thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid QA configuration: %v", err)
	}

	// If a TimescaleDB database was configured, set up a database client so
	// the handlers can retrieve observations and cache reports
	storage, err := configProvider.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading storage configuration: %v", err)
	}
	if storage.TimescaleDB != nil && storage.TimescaleDB.ConnectionString != "" {
		db, err := controllers.SetupDatabaseConnection(configProvider, logger)
		if err != nil {
			return nil, fmt.Errorf("report server could not connect to database: %v", err)
		}
		if err := db.CreateTables(); err != nil {
			return nil, err
		}
		ctrl.DB = db
		ctrl.DBEnabled = true
		ctrl.observations = db
	}

	// Create handlers
	ctrl.handlers = NewHandlers(ctrl)

	// Set up router
	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", ctrl.cfg.ListenAddr, ctrl.cfg.Port)
	ctrl.Server.Handler = router

	return ctrl, nil
}

// StartController starts the report server
func (c *Controller) StartController() error {
	log.Info("Starting report server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.cfg.Cert != "" && c.cfg.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.cfg.Cert, c.cfg.Key); err != http.ErrServerClosed {
				log.Errorf("report server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("report server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the report server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.Use(c.requestLogMiddleware)

	// Report endpoints
	router.HandleFunc("/coverage/{station}/{year}", c.handlers.GetCoverageReport)
	router.HandleFunc("/tow/{station}/{year}", c.handlers.GetTOWReport)
	router.HandleFunc("/tow/{station}", c.handlers.GetTOWAllYears)

	// Operational endpoints
	router.HandleFunc("/healthz", c.handlers.GetHealth)
	router.HandleFunc("/debug/requests", c.handlers.GetRecentRequests)

	return router
}

// requestLogMiddleware records every request in the HTTP log buffer and the
// debug log
func (c *Controller) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		duration := time.Since(start)
		station := mux.Vars(r)["station"]
		log.LogHTTPRequest(r.Method, r.URL.Path, recorder.status, duration, recorder.size,
			r.RemoteAddr, r.UserAgent(), station, nil)
		c.logger.Debugw("handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration", duration,
		)
	})
}

// baseThresholds merges configured QA overrides onto the engine defaults.
// Zero-valued fields keep the default.
func baseThresholds(qa config.QAData) coverage.Thresholds {
	t := coverage.DefaultThresholds()
	if qa.SeasonalThresholdPct != 0 {
		t.SeasonalThresholdPct = qa.SeasonalThresholdPct
	}
	if qa.MonthlyThresholdPct != 0 {
		t.MonthlyThresholdPct = qa.MonthlyThresholdPct
	}
	if qa.MaxGapDays != 0 {
		t.MaxGapDays = qa.MaxGapDays
	}
	if qa.MinOverallScore != 0 {
		t.MinOverallScore = qa.MinOverallScore
	}
	if qa.SeasonDayFraction != 0 {
		t.SeasonDayFraction = qa.SeasonDayFraction
	}
	if qa.DensityThreshold != 0 {
		t.DensityThreshold = qa.DensityThreshold
	}
	return t
}
