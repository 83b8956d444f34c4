package controllers

import (
	"fmt"

	"github.com/chrissnell/towqa/internal/database"
	"github.com/chrissnell/towqa/pkg/config"
	"go.uber.org/zap"
)

// SetupDatabaseConnection creates and connects to TimescaleDB database
func SetupDatabaseConnection(configProvider config.ConfigProvider, logger *zap.SugaredLogger) (*database.Client, error) {
	db := database.NewClient(configProvider, logger)

	err := db.Connect()
	if err != nil {
		return nil, fmt.Errorf("could not connect to TimescaleDB: %v", err)
	}

	return db, nil
}
