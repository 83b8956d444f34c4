package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/towqa/internal/log"
	"github.com/chrissnell/towqa/pkg/config"
	"go.uber.org/zap"
)

// Client holds the connection to a TimescaleDB database
type Client struct {
	configProvider config.ConfigProvider
	DB             *gorm.DB // Exported so it can be accessed from other packages
	logger         *zap.SugaredLogger
}

// NewClient creates a new database client
func NewClient(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *Client {
	return &Client{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Connect connects to the TimescaleDB database
func (c *Client) Connect() error {
	storage, err := c.configProvider.GetStorageConfig()
	if err != nil {
		return fmt.Errorf("error loading storage configuration: %v", err)
	}
	if storage.TimescaleDB == nil || storage.TimescaleDB.ConnectionString == "" {
		return fmt.Errorf("no TimescaleDB connection string configured")
	}

	c.DB, err = CreateConnection(storage.TimescaleDB.ConnectionString)
	return err
}

// Ping verifies the underlying database connection is alive
func (c *Client) Ping() error {
	if c.DB == nil {
		return fmt.Errorf("database not connected")
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateTables creates or migrates the tables this client writes
func (c *Client) CreateTables() error {
	if err := c.DB.AutoMigrate(CoverageReportRecord{}); err != nil {
		return fmt.Errorf("error creating or migrating coverage report table: %v", err)
	}
	return nil
}

// CreateConnection is a helper function to create a database connection with standard GORM configuration
func CreateConnection(connectionString string) (*gorm.DB, error) {
	// Create a logger for gorm
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  logger.Warn, // Log level
			IgnoreRecordNotFoundError: true,        // Ignore ErrRecordNotFound error for logger
			Colorful:                  true,
		},
	)

	log.Info("connecting to TimescaleDB...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		log.Warn("warning: unable to create a TimescaleDB connection:", err)
		return nil, err
	}
	log.Info("TimescaleDB connection successful")

	return db, nil
}
