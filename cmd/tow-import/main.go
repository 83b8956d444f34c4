package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Timestamp formats accepted in the observed_at column. Covers our own CSV
// exports plus the common Postgres text renderings.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05",
}

type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	File     string
	Batch    int
}

// progressReader wraps the input file and logs import progress at 10%
// increments as the CSV reader consumes it.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	lastPct  int
	progress func(pct int)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.read += int64(n)
	if p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if pct >= p.lastPct+10 {
			p.lastPct = pct - pct%10
			p.progress(p.lastPct)
		}
	}
	return n, err
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
	flag.StringVar(&cfg.File, "file", "", "CSV file to import (required)")
	flag.IntVar(&cfg.Batch, "batch", 1000, "Number of rows to insert per batch")
	flag.Parse()

	if cfg.File == "" {
		log.Fatal("Input file is required. Use -file flag")
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

	count, err := importCSV(ctx, pool, cfg)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Import completed successfully: %d rows", count)
}

func importCSV(ctx context.Context, pool *pgxpool.Pool, cfg Config) (int, error) {
	file, err := os.Open(cfg.File)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat file: %w", err)
	}

	log.Printf("Importing %s (%d bytes)", cfg.File, info.Size())

	reader := csv.NewReader(&progressReader{
		r:     file,
		total: info.Size(),
		progress: func(pct int) {
			log.Printf("Progress: %d%%", pct)
		},
	})

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"station_name", "observed_at"} {
		if _, ok := colIndex[required]; !ok {
			return 0, fmt.Errorf("CSV is missing required column %q", required)
		}
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	columns := []string{"station_name", "observed_at", "temperature", "humidity"}

	total := 0
	line := 1
	batch := make([][]any, 0, cfg.Batch)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("failed to read CSV record: %w", err)
		}
		line++

		row, err := parseRecord(record, colIndex)
		if err != nil {
			return total, fmt.Errorf("line %d: %w", line, err)
		}
		batch = append(batch, row)

		if len(batch) >= cfg.Batch {
			if err := copyBatch(ctx, tx, columns, batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := copyBatch(ctx, tx, columns, batch); err != nil {
			return total, err
		}
		total += len(batch)
	}

	if err := tx.Commit(ctx); err != nil {
		return total, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return total, nil
}

// parseRecord converts one CSV record into an observations row. Empty
// temperature and humidity cells become SQL NULLs.
func parseRecord(record []string, colIndex map[string]int) ([]any, error) {
	field := func(name string) string {
		i, ok := colIndex[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	station := field("station_name")
	if station == "" {
		return nil, fmt.Errorf("empty station_name")
	}

	observedAt, err := parseTimestamp(field("observed_at"))
	if err != nil {
		return nil, err
	}

	temperature, err := parseNullableFloat(field("temperature"))
	if err != nil {
		return nil, fmt.Errorf("invalid temperature: %w", err)
	}
	humidity, err := parseNullableFloat(field("humidity"))
	if err != nil {
		return nil, fmt.Errorf("invalid humidity: %w", err)
	}

	return []any{station, observedAt, temperature, humidity}, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty observed_at")
	}
	for _, format := range timestampFormats {
		if ts, err := time.Parse(format, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func parseNullableFloat(value string) (any, error) {
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func copyBatch(ctx context.Context, tx pgx.Tx, columns []string, rows [][]any) error {
	_, err := tx.CopyFrom(ctx, pgx.Identifier{"observations"}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy batch: %w", err)
	}
	return nil
}
