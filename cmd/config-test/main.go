package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"

	"github.com/chrissnell/towqa/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite configuration file")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Comparison Test")
	fmt.Println("===========================")

	// Load YAML configuration
	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	yamlProvider := config.NewYAMLProvider(*yamlFile)
	yamlConfig, err := yamlProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML config: %v\n", err)
		os.Exit(1)
	}

	// Load SQLite configuration
	fmt.Printf("Loading SQLite configuration: %s\n", *sqliteFile)
	sqliteProvider, err := config.NewSQLiteProvider(*sqliteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SQLite provider: %v\n", err)
		os.Exit(1)
	}
	defer sqliteProvider.Close()

	sqliteConfig, err := sqliteProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading SQLite config: %v\n", err)
		os.Exit(1)
	}

	// Compare configurations
	fmt.Println("\nComparison Results:")
	fmt.Println("==================")

	// Compare stations
	fmt.Printf("Stations - YAML: %d, SQLite: %d\n", len(yamlConfig.Stations), len(sqliteConfig.Stations))
	if len(yamlConfig.Stations) == len(sqliteConfig.Stations) {
		fmt.Println("✓ Station count matches")
		for i, yamlStation := range yamlConfig.Stations {
			sqliteStation := sqliteConfig.Stations[i]
			if compareStations(yamlStation, sqliteStation) {
				fmt.Printf("✓ Station %s matches\n", yamlStation.Name)
			} else {
				fmt.Printf("✗ Station %s differs\n", yamlStation.Name)
				printStationDiff(yamlStation, sqliteStation)
			}
		}
	} else {
		fmt.Println("✗ Station count mismatch")
	}

	// Compare storage
	fmt.Println("\nStorage Configuration:")
	compareStorage(yamlConfig.Storage, sqliteConfig.Storage)

	// Compare report server
	fmt.Println("\nReport Server Configuration:")
	compareReportServer(yamlConfig.ReportServer, sqliteConfig.ReportServer)

	fmt.Println("\nTest completed!")
}

func compareStations(yaml, sqlite config.StationData) bool {
	tolerance := 0.000001
	return yaml.Name == sqlite.Name &&
		yaml.Type == sqlite.Type &&
		abs(yaml.Latitude-sqlite.Latitude) < tolerance &&
		abs(yaml.Longitude-sqlite.Longitude) < tolerance &&
		abs(yaml.Altitude-sqlite.Altitude) < tolerance
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func printStationDiff(yaml, sqlite config.StationData) {
	if yaml.Name != sqlite.Name {
		fmt.Printf("  Name: YAML='%s', SQLite='%s'\n", yaml.Name, sqlite.Name)
	}
	if yaml.Type != sqlite.Type {
		fmt.Printf("  Type: YAML='%s', SQLite='%s'\n", yaml.Type, sqlite.Type)
	}
	if yaml.Latitude != sqlite.Latitude {
		fmt.Printf("  Latitude: YAML=%f, SQLite=%f\n", yaml.Latitude, sqlite.Latitude)
	}
	if yaml.Longitude != sqlite.Longitude {
		fmt.Printf("  Longitude: YAML=%f, SQLite=%f\n", yaml.Longitude, sqlite.Longitude)
	}
	if yaml.Altitude != sqlite.Altitude {
		fmt.Printf("  Altitude: YAML=%f, SQLite=%f\n", yaml.Altitude, sqlite.Altitude)
	}
}

func compareStorage(yaml, sqlite config.StorageData) {
	if (yaml.TimescaleDB == nil) != (sqlite.TimescaleDB == nil) {
		fmt.Println("✗ TimescaleDB configuration presence mismatch")
	} else if yaml.TimescaleDB != nil && sqlite.TimescaleDB != nil {
		if reflect.DeepEqual(*yaml.TimescaleDB, *sqlite.TimescaleDB) {
			fmt.Println("✓ TimescaleDB configuration matches")
		} else {
			fmt.Println("✗ TimescaleDB configuration differs")
		}
	} else {
		fmt.Println("✓ TimescaleDB: both nil")
	}
}

func compareReportServer(yaml, sqlite *config.ReportServerData) {
	if (yaml == nil) != (sqlite == nil) {
		fmt.Println("✗ Report server configuration presence mismatch")
		return
	}
	if yaml == nil {
		fmt.Println("✓ Report server: both nil")
		return
	}

	if reflect.DeepEqual(*yaml, *sqlite) {
		fmt.Println("✓ Report server configuration matches")
		return
	}

	fmt.Println("✗ Report server configuration differs")
	if yaml.Port != sqlite.Port {
		fmt.Printf("  Port: YAML=%d, SQLite=%d\n", yaml.Port, sqlite.Port)
	}
	if yaml.ListenAddr != sqlite.ListenAddr {
		fmt.Printf("  ListenAddr: YAML='%s', SQLite='%s'\n", yaml.ListenAddr, sqlite.ListenAddr)
	}
	if yaml.DefaultEvaluator != sqlite.DefaultEvaluator {
		fmt.Printf("  DefaultEvaluator: YAML='%s', SQLite='%s'\n", yaml.DefaultEvaluator, sqlite.DefaultEvaluator)
	}
	if yaml.CacheMaxAge != sqlite.CacheMaxAge {
		fmt.Printf("  CacheMaxAge: YAML=%d, SQLite=%d\n", yaml.CacheMaxAge, sqlite.CacheMaxAge)
	}
	if !reflect.DeepEqual(yaml.QA, sqlite.QA) {
		fmt.Printf("  QA thresholds: YAML=%+v, SQLite=%+v\n", yaml.QA, sqlite.QA)
	}
}
