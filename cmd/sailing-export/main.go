// Package main exports stored sailings from PostgreSQL to CSV.
//
// Rows are written in curated port order: by trade region, then by the
// port's position in the alias asset, then by sailing date and vessel.
//
//	region,port_code,port,sailing_date,vessel,voyage,ship_type,carrier,capacity
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"shipping_schedule/internal/catalog"
	"shipping_schedule/internal/config"
	"shipping_schedule/internal/ordering"
	"shipping_schedule/internal/resolver"
	"shipping_schedule/internal/storage"
)

var header = []string{"region", "port_code", "port", "sailing_date", "vessel", "voyage", "ship_type", "carrier", "capacity"}

func main() {
	cfg := config.Default()
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error in environment: %v\n", err)
		os.Exit(1)
	}
	pgCfg := cfg.PostgresConfig()

	// PostgreSQL connection flags.
	pgHost := flag.String("pg-host", pgCfg.Host, "PostgreSQL host")
	pgPort := flag.Int("pg-port", pgCfg.Port, "PostgreSQL port")
	pgUser := flag.String("pg-user", pgCfg.User, "PostgreSQL user")
	pgPassword := flag.String("pg-password", pgCfg.Password, "PostgreSQL password")
	pgDB := flag.String("pg-db", pgCfg.Database, "PostgreSQL database")

	assetPath := flag.String("asset", "", "Alias asset file (default: embedded asset)")
	from := flag.String("from", "", "First sailing date, YYYY-MM-DD (default: open)")
	to := flag.String("to", "", "Last sailing date, YYYY-MM-DD (default: open)")
	output := flag.String("output", "", "Output CSV file (default: stdout)")
	noHeader := flag.Bool("no-header", false, "Omit the CSV header row")
	showStats := flag.Bool("stats", false, "Show statistics only, don't export")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Parse()

	ctx := context.Background()

	pg, err := storage.OpenPostgres(ctx, storage.PostgresConfig{
		Host:     *pgHost,
		Port:     *pgPort,
		Database: *pgDB,
		User:     *pgUser,
		Password: *pgPassword,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	// Show stats mode.
	if *showStats {
		showSailingStats(ctx, pg, cfg)
		return
	}

	var src catalog.Source = catalog.DefaultSource()
	if *assetPath != "" {
		src = catalog.FileSource{Path: *assetPath}
	}
	loader := catalog.NewLoader(src)
	if c := loader.Load(ctx); c.Degraded() {
		fmt.Fprintf(os.Stderr, "Warning: alias asset unavailable, exporting in raw order\n")
	}
	engine := ordering.New(resolver.New(loader))

	sailings, err := pg.ListSailings(ctx, *from, *to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying sailings: %v\n", err)
		os.Exit(1)
	}
	if len(sailings) == 0 {
		fmt.Fprintf(os.Stderr, "No sailings found matching criteria\n")
		os.Exit(0)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Exporting %d sailings to CSV\n", len(sailings))
	}

	// Write output.
	var writer *csv.Writer
	if *output != "" {
		file, err := os.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating file: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = file.Close() }()
		writer = csv.NewWriter(file)
	} else {
		writer = csv.NewWriter(os.Stdout)
	}

	if !*noHeader {
		_ = writer.Write(header)
	}
	for _, s := range orderSailings(engine, sailings) {
		if err := writer.Write(sailingRow(s)); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing row: %v\n", err)
			os.Exit(1)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		fmt.Fprintf(os.Stderr, "Error flushing CSV: %v\n", err)
		os.Exit(1)
	}

	if *verbose && *output != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d sailings to %s\n", len(sailings), *output)
	}
}

// sailingRow renders one sailing as a CSV row.
func sailingRow(s storage.Sailing) []string {
	return []string{
		s.Region,
		s.PortCode,
		s.PortDisplay,
		s.SailingDate,
		s.Vessel,
		s.Voyage,
		s.ShipType,
		s.Carrier,
		strconv.FormatInt(s.Capacity, 10),
	}
}

// showSailingStats displays counts from PostgreSQL and, when configured,
// ClickHouse.
func showSailingStats(ctx context.Context, pg *storage.PostgresDB, cfg config.Config) {
	pool := pg.Pool()

	var total, ports int
	var first, last string
	_ = pool.QueryRow(ctx, "SELECT COUNT(*), COUNT(DISTINCT port_code) FROM sailings").Scan(&total, &ports)
	_ = pool.QueryRow(ctx, "SELECT COALESCE(MIN(sailing_date), ''), COALESCE(MAX(sailing_date), '') FROM sailings").Scan(&first, &last)

	fmt.Println("Sailing Statistics")
	fmt.Println("──────────────────")
	fmt.Printf("Total sailings:  %d\n", total)
	fmt.Printf("Distinct ports:  %d\n", ports)
	if first != "" {
		fmt.Printf("Date range:      %s to %s\n", first, last)
	}

	if !cfg.Storage.ClickHouse.Enabled {
		return
	}
	ch, err := storage.OpenClickHouse(ctx, cfg.ClickHouseConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ClickHouse: %v\n", err)
		return
	}
	defer func() { _ = ch.Close() }()

	byRegion, err := ch.CountByRegion(ctx)
	if err == nil {
		fmt.Println("\nBatch rows by region:")
		for region, n := range byRegion {
			if region == "" {
				region = "(none)"
			}
			fmt.Printf("  %-12s %d\n", region, n)
		}
	}

	top, err := ch.TopUnresolved(ctx, "", 10)
	if err == nil && len(top) > 0 {
		fmt.Println("\nMost frequent unresolved ports:")
		for _, pc := range top {
			fmt.Printf("  %-30s %d\n", pc.Port, pc.Count)
		}
	}
}
