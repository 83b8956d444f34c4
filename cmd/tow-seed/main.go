package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Synthetic climate parameters, roughly a cool temperate site. Seasonal and
// diurnal cycles plus noise, with humidity running inverse to temperature so
// wet hours cluster in the cool damp parts of the year.
const (
	meanTempC        = 10.0
	seasonalAmpC     = 12.0
	diurnalAmpC      = 4.0
	tempNoiseC       = 1.5
	meanHumidityPct  = 78.0
	humidityTempSlop = -0.8
	humidityNoisePct = 5.0
)

type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	Station  string
	Year     int
	Interval time.Duration
	Seed     int64
	GapDays  int
	DropPct  float64
	Batch    int
}

func main() {
	var cfg Config

	// Parse command line flags
	flag.StringVar(&cfg.Host, "host", "localhost", "Database host")
	flag.IntVar(&cfg.Port, "port", 5432, "Database port")
	flag.StringVar(&cfg.Database, "database", "towqa", "Database name")
	flag.StringVar(&cfg.User, "user", "postgres", "Database user")
	flag.StringVar(&cfg.Password, "password", "", "Database password")
	flag.StringVar(&cfg.SSLMode, "sslmode", "disable", "SSL mode (disable, require, etc)")
	flag.StringVar(&cfg.Station, "station", "", "Station name to seed (required)")
	flag.IntVar(&cfg.Year, "year", time.Now().Year()-1, "Calendar year to seed")
	flag.DurationVar(&cfg.Interval, "interval", time.Hour, "Sampling interval between readings")
	flag.Int64Var(&cfg.Seed, "seed", 1, "Random seed for reproducible data")
	flag.IntVar(&cfg.GapDays, "gap-days", 0, "Length of a contiguous data gap starting July 1")
	flag.Float64Var(&cfg.DropPct, "drop-pct", 0, "Percentage of readings to drop at random")
	flag.IntVar(&cfg.Batch, "batch", 5000, "Number of rows to insert per batch")
	flag.Parse()

	if cfg.Station == "" {
		log.Fatal("Station name is required. Use -station flag")
	}
	if cfg.Interval <= 0 {
		log.Fatal("Interval must be positive")
	}

	// Build connection string
	connStr := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password, cfg.SSLMode)

	// Connect to database
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	log.Printf("Connected to database %s@%s:%d", cfg.Database, cfg.Host, cfg.Port)
	log.Printf("Seeding station %s for %d at %s intervals", cfg.Station, cfg.Year, cfg.Interval)

	rows, wetCount := generateReadings(cfg)
	log.Printf("Generated %d readings (%d wet)", len(rows), wetCount)

	if err := insertReadings(ctx, pool, rows, cfg.Batch); err != nil {
		log.Fatalf("Failed to insert readings: %v", err)
	}

	log.Printf("Seed completed successfully")
}

// generateReadings builds one synthetic reading per interval across the year,
// honoring the configured gap and random drop rate.
func generateReadings(cfg Config) ([][]any, int) {
	rng := rand.New(rand.NewSource(cfg.Seed))

	start := time.Date(cfg.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	gapStart := time.Date(cfg.Year, time.July, 1, 0, 0, 0, 0, time.UTC)
	gapEnd := gapStart.AddDate(0, 0, cfg.GapDays)

	var rows [][]any
	wetCount := 0
	for ts := start; ts.Before(end); ts = ts.Add(cfg.Interval) {
		if cfg.GapDays > 0 && !ts.Before(gapStart) && ts.Before(gapEnd) {
			continue
		}
		if cfg.DropPct > 0 && rng.Float64()*100 < cfg.DropPct {
			continue
		}

		dayOfYear := float64(ts.YearDay())
		hourOfDay := float64(ts.Hour())

		seasonal := -seasonalAmpC * math.Cos(2*math.Pi*(dayOfYear-15)/365)
		diurnal := diurnalAmpC * math.Sin(2*math.Pi*(hourOfDay-9)/24)
		temp := meanTempC + seasonal + diurnal + rng.NormFloat64()*tempNoiseC

		humidity := meanHumidityPct + humidityTempSlop*(temp-meanTempC) + rng.NormFloat64()*humidityNoisePct
		if humidity > 100 {
			humidity = 100
		}
		if humidity < 25 {
			humidity = 25
		}

		if temp > 0 && humidity > 80 {
			wetCount++
		}
		rows = append(rows, []any{cfg.Station, ts, temp, humidity})
	}

	return rows, wetCount
}

// insertReadings copies the generated rows into the observations table in
// batches inside a single transaction.
func insertReadings(ctx context.Context, pool *pgxpool.Pool, rows [][]any, batchSize int) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	columns := []string{"station_name", "observed_at", "temperature", "humidity"}

	inserted := 0
	for inserted < len(rows) {
		batchEnd := inserted + batchSize
		if batchEnd > len(rows) {
			batchEnd = len(rows)
		}

		_, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"observations"},
			columns,
			pgx.CopyFromRows(rows[inserted:batchEnd]),
		)
		if err != nil {
			return fmt.Errorf("failed to copy batch: %w", err)
		}

		inserted = batchEnd
		log.Printf("Inserted %d/%d rows", inserted, len(rows))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
