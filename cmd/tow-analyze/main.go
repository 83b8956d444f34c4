package main

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/chrissnell/towqa/internal/coverage"
	_ "github.com/lib/pq"
	"gonum.org/v1/gonum/stat"
)

// Wetness rule thresholds (ISO 9223 time of wetness)
const (
	wetTempCelsius = 0.0
	wetHumidityPct = 80.0
)

// HourlyReading represents one hour of averaged temperature and humidity
type HourlyReading struct {
	Hour        time.Time
	Temperature float64
	Humidity    float64
	Wet         bool
}

// YearSummary contains the annual time-of-wetness results
type YearSummary struct {
	Year         int
	MaxHours     int
	TotalHours   int
	WetHours     int
	PercentValid float64
	ProjectedTOW float64
	QAState      string
}

// MonthStats aggregates wetness per calendar month
type MonthStats struct {
	Month    time.Month
	Hours    int
	WetHours int
	MeanTemp float64
	MeanRH   float64
}

func main() {
	// Command line flags
	var (
		dbHost    = flag.String("db-host", "localhost", "Database host")
		dbPort    = flag.Int("db-port", 5432, "Database port")
		dbUser    = flag.String("db-user", "postgres", "Database user")
		dbPass    = flag.String("db-pass", "", "Database password")
		dbName    = flag.String("db-name", "towqa", "Database name")
		station   = flag.String("station", "CSI", "Station name to analyze")
		year      = flag.Int("year", time.Now().Year()-1, "Calendar year to analyze")
		threshold = flag.Float64("threshold", 0.75, "QA data-completeness threshold (fraction of the year's hours)")
		csvOutput = flag.String("csv", "", "Optional CSV output file path")
	)
	flag.Parse()

	if *threshold <= 0 || *threshold >= 1 {
		fmt.Fprintf(os.Stderr, "Error: threshold %.2f must be between 0 and 1\n", *threshold)
		os.Exit(1)
	}

	// Connect to database
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		*dbHost, *dbPort, *dbUser, *dbPass, *dbName)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// Test connection
	if err := db.Ping(); err != nil {
		fmt.Fprintf(os.Stderr, "Error pinging database: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Time of Wetness Analysis\n")
	fmt.Printf("========================\n\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Station: %s\n", *station)
	fmt.Printf("  Year: %d\n", *year)
	fmt.Printf("  QA Threshold: %.0f%% of %d hours\n\n", *threshold*100, coverage.DaysInYear(*year)*24)

	// Fetch hourly-averaged data
	readings := fetchHourlyReadings(db, *station, *year)

	if len(readings) < 24 {
		fmt.Fprintf(os.Stderr, "Error: Not enough data points (%d hours). Need at least one full day.\n", len(readings))
		os.Exit(1)
	}

	fmt.Printf("Collected %d hourly readings\n\n", len(readings))

	summary := summarizeYear(readings, *year, *threshold)

	displaySummary(summary, *threshold)
	displayMonthlyBreakdown(readings)
	displayCorrelation(readings)
	displayCoverage(readings, *year)

	// Optionally export to CSV
	if *csvOutput != "" {
		if err := exportCSV(*csvOutput, readings); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
		} else {
			fmt.Printf("\nData exported to: %s\n", *csvOutput)
		}
	}
}

func fetchHourlyReadings(db *sql.DB, station string, year int) []HourlyReading {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	query := `
		SELECT
			date_trunc('hour', observed_at) AS hour,
			AVG(temperature) AS temperature,
			AVG(humidity) AS humidity
		FROM observations
		WHERE station_name = $1
		  AND observed_at >= $2
		  AND observed_at < $3
		  AND temperature IS NOT NULL
		  AND humidity IS NOT NULL
		GROUP BY 1
		ORDER BY 1
	`

	rows, err := db.Query(query, station, start, end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying data: %v\n", err)
		os.Exit(1)
	}
	defer rows.Close()

	var readings []HourlyReading
	for rows.Next() {
		var r HourlyReading
		if err := rows.Scan(&r.Hour, &r.Temperature, &r.Humidity); err != nil {
			fmt.Fprintf(os.Stderr, "Error scanning row: %v\n", err)
			continue
		}
		r.Wet = r.Temperature > wetTempCelsius && r.Humidity > wetHumidityPct
		readings = append(readings, r)
	}

	return readings
}

func summarizeYear(readings []HourlyReading, year int, threshold float64) YearSummary {
	summary := YearSummary{
		Year:       year,
		MaxHours:   coverage.DaysInYear(year) * 24,
		TotalHours: len(readings),
	}

	for _, r := range readings {
		if r.Wet {
			summary.WetHours++
		}
	}

	summary.PercentValid = float64(summary.TotalHours) / float64(summary.MaxHours)
	summary.ProjectedTOW = float64(summary.WetHours) / float64(summary.TotalHours) * float64(summary.MaxHours)

	summary.QAState = "FAIL"
	if summary.PercentValid > threshold {
		summary.QAState = "PASS"
	}

	return summary
}

func displaySummary(summary YearSummary, threshold float64) {
	fmt.Printf("Annual Summary\n")
	fmt.Printf("==============\n\n")

	fmt.Printf("  Hours in year: %d\n", summary.MaxHours)
	fmt.Printf("  Hours observed: %d (%.1f%%)\n", summary.TotalHours, summary.PercentValid*100)
	fmt.Printf("  Wet hours observed: %d (%.1f%% of observed)\n",
		summary.WetHours, float64(summary.WetHours)/float64(summary.TotalHours)*100)
	fmt.Printf("  Projected TOW: %.2f hours/year\n", summary.ProjectedTOW)
	fmt.Printf("  QA state: %s (completeness %.1f%% vs threshold %.0f%%)\n\n",
		summary.QAState, summary.PercentValid*100, threshold*100)

	if summary.QAState == "FAIL" {
		fmt.Printf("  ⚠ WARNING: Completeness below threshold - projection is not publishable\n")
	} else if summary.TotalHours < summary.MaxHours {
		fmt.Printf("  ℹ Projection extrapolates %d observed hours to the full year\n", summary.TotalHours)
	} else {
		fmt.Printf("  ✓ Full year of hourly data - TOW is a direct count\n")
	}
	fmt.Println()
}

func displayMonthlyBreakdown(readings []HourlyReading) {
	fmt.Printf("Monthly Breakdown\n")
	fmt.Printf("=================\n\n")

	var months [13]MonthStats
	var tempSums, rhSums [13]float64
	for _, r := range readings {
		m := r.Hour.Month()
		months[m].Month = m
		months[m].Hours++
		if r.Wet {
			months[m].WetHours++
		}
		tempSums[m] += r.Temperature
		rhSums[m] += r.Humidity
	}

	fmt.Printf("%-9s | %6s | %6s | %6s | %8s | %8s\n", "Month", "Hours", "Wet", "Wet%", "Mean T", "Mean RH")
	fmt.Printf("----------+--------+--------+--------+----------+---------\n")

	for m := time.January; m <= time.December; m++ {
		stats := months[m]
		if stats.Hours == 0 {
			fmt.Printf("%-9s | %6d | %6s | %6s | %8s | %8s\n", m.String(), 0, "-", "-", "-", "-")
			continue
		}
		stats.MeanTemp = tempSums[m] / float64(stats.Hours)
		stats.MeanRH = rhSums[m] / float64(stats.Hours)
		fmt.Printf("%-9s | %6d | %6d | %5.1f%% | %6.1f°C | %7.1f%%\n",
			m.String(), stats.Hours, stats.WetHours,
			float64(stats.WetHours)/float64(stats.Hours)*100, stats.MeanTemp, stats.MeanRH)
	}
	fmt.Println()
}

func displayCorrelation(readings []HourlyReading) {
	fmt.Printf("Temperature / Humidity Statistics\n")
	fmt.Printf("=================================\n\n")

	n := len(readings)
	temps := make([]float64, n)
	humidities := make([]float64, n)
	for i, r := range readings {
		temps[i] = r.Temperature
		humidities[i] = r.Humidity
	}

	fmt.Printf("  Temperature: mean %.2f°C, stddev %.2f°C\n",
		stat.Mean(temps, nil), stat.StdDev(temps, nil))
	fmt.Printf("  Humidity: mean %.2f%%, stddev %.2f%%\n",
		stat.Mean(humidities, nil), stat.StdDev(humidities, nil))

	correlation := stat.Correlation(temps, humidities, nil)
	slope, intercept := stat.LinearRegression(temps, humidities, nil, false)

	fmt.Printf("  Correlation (T vs RH): %.4f\n", correlation)
	fmt.Printf("  Linear fit: RH = %.4f + %.4f × T\n\n", intercept, slope)

	if math.Abs(correlation) > 0.7 {
		fmt.Printf("  ✓ Strong temperature/humidity coupling - wet hours cluster with weather regimes\n")
	} else if math.Abs(correlation) > 0.3 {
		fmt.Printf("  ℹ Moderate temperature/humidity coupling\n")
	} else {
		fmt.Printf("  ℹ Weak temperature/humidity coupling - wetness driven by independent swings\n")
	}
	fmt.Println()
}

func displayCoverage(readings []HourlyReading, year int) {
	fmt.Printf("Coverage Quality\n")
	fmt.Printf("================\n\n")

	times := make([]time.Time, len(readings))
	for i, r := range readings {
		times[i] = r.Hour
	}

	thresholds := coverage.DefaultThresholds()
	metrics := coverage.ComputeMetrics(year, times, thresholds.SeasonDayFraction)

	fmt.Printf("  Seasonal coverage: %.0f%%\n", metrics.SeasonalCoverage)
	fmt.Printf("  Monthly coverage: %.1f%%\n", metrics.MonthlyCoverage)
	fmt.Printf("  Days with data: %d\n", metrics.DaysWithData)
	fmt.Printf("  Largest gap: %d days\n", metrics.LargestGapDays)
	fmt.Printf("  Overall score: %.1f\n\n", metrics.OverallScore)

	if coverage.Adequate(metrics, thresholds) {
		fmt.Printf("  ✓ Coverage is adequate for an annual TOW estimate\n")
	} else {
		fmt.Printf("  ⚠ WARNING: Coverage is inadequate - the annual projection is biased toward\n")
		fmt.Printf("  the sampled seasons. Collect data across more of the year before publishing.\n")
	}
	fmt.Println()
}

func exportCSV(filename string, readings []HourlyReading) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{"Hour", "Temperature_C", "Humidity_pct", "Wet"}
	if err := writer.Write(header); err != nil {
		return err
	}

	// Write data
	for _, r := range readings {
		wet := "0"
		if r.Wet {
			wet = "1"
		}
		record := []string{
			r.Hour.Format(time.RFC3339),
			fmt.Sprintf("%.2f", r.Temperature),
			fmt.Sprintf("%.2f", r.Humidity),
			wet,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}
