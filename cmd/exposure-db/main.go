// Command exposure-db administers an exposure.report database: schema
// migrations, bucket gap detection, and aggregation run history.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/facet-data/exposure.report/internal/config"
	"github.com/facet-data/exposure.report/internal/db"
	"github.com/facet-data/exposure.report/internal/version"
)

func main() {
	cfg, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("load env: %v", err)
	}

	var dbPath string
	var migrationsDir string

	flag.StringVar(&dbPath, "db", cfg.DBPath, "path to sqlite db")
	flag.StringVar(&migrationsDir, "migrations", cfg.MigrationsDir, "path to migrations directory")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "migrate":
		db.RunMigrateCommand(args[1:], dbPath, migrationsDir)

	case "gaps":
		runGaps(args[1:], dbPath, cfg.BucketMinutes)

	case "runs":
		runRuns(args[1:], dbPath)

	case "check":
		runCheck(dbPath, migrationsDir)

	case "version":
		fmt.Printf("exposure-db %s\n", version.String())

	case "help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func runGaps(args []string, dbPath string, defaultBucketMinutes int) {
	if len(args) < 1 {
		log.Fatal("Usage: exposure-db gaps <screen-id> [bucket-minutes]")
	}
	screenID := args[0]

	bucketMinutes := defaultBucketMinutes
	if len(args) > 1 {
		parsed, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("Invalid bucket minutes: %s", args[1])
		}
		bucketMinutes = parsed
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	gaps, err := database.FindBucketGaps(screenID, bucketMinutes)
	if err != nil {
		log.Fatalf("Failed to find bucket gaps: %v", err)
	}
	if len(gaps) == 0 {
		fmt.Printf("✓ No bucket gaps for screen %s at %d minutes\n", screenID, bucketMinutes)
		return
	}

	fmt.Printf("Found %d gap(s) for screen %s at %d minutes:\n", len(gaps), screenID, bucketMinutes)
	for _, gap := range gaps {
		fmt.Printf("  %s -> %s  (%d event(s))\n",
			formatMs(gap.BucketStartMs), formatMs(gap.BucketEndMs), gap.EventCount)
	}
	fmt.Println("\nRecompute with: kpi-backfill -venue <venue> -screen", screenID,
		"-start <RFC3339> -end <RFC3339>")
}

func runRuns(args []string, dbPath string) {
	screenID := ""
	if len(args) > 0 {
		screenID = args[0]
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	runs, err := database.RecentAggregationRuns(screenID, 20)
	if err != nil {
		log.Fatalf("Failed to list aggregation runs: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("No aggregation runs recorded")
		return
	}

	for _, run := range runs {
		fmt.Printf("%s  screen=%s  range=%s -> %s  buckets=%d resolved=%d\n",
			formatMs(run.StartedAtMs), run.ScreenID,
			formatMs(run.StartMs), formatMs(run.EndMs),
			run.BucketsWritten, run.ResolvedEvents)
	}
}

func runCheck(dbPath, migrationsDir string) {
	database, err := db.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.CheckMigrations(migrationsDir); err != nil {
		log.Fatalf("Migration check failed: %v", err)
	}
	fmt.Println("✓ Database is at the latest migration version")
}

func formatMs(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func printUsage() {
	fmt.Println("exposure-db: database administration for exposure.report")
	fmt.Println()
	fmt.Println("Usage: exposure-db [flags] <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate <action>              Manage schema migrations (see 'migrate help')")
	fmt.Println("  gaps <screen-id> [minutes]    List bucket periods with events but no KPI bucket")
	fmt.Println("  runs [screen-id]              Show recent aggregation runs")
	fmt.Println("  check                         Verify the database is at the latest migration")
	fmt.Println("  version                       Print build version information")
	fmt.Println("  help                          Show this help message")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
