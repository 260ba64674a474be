package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/facet-data/exposure.report/internal/config"
	"github.com/facet-data/exposure.report/internal/db"
	"github.com/facet-data/exposure.report/internal/journey"
	"github.com/facet-data/exposure.report/internal/kpi"
)

func main() {
	cfg, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("load env: %v", err)
	}

	var dbPath string
	var migrationsDir string
	var venueID string
	var screenID string
	var startStr string
	var endStr string
	var bucketMinutes int
	var resolve bool
	var checkMigrations bool

	flag.StringVar(&dbPath, "db", cfg.DBPath, "path to sqlite db")
	flag.StringVar(&migrationsDir, "migrations", cfg.MigrationsDir, "path to migrations directory")
	flag.StringVar(&venueID, "venue", "", "venue id owning the screen")
	flag.StringVar(&screenID, "screen", "", "screen id to aggregate")
	flag.StringVar(&startStr, "start", "", "start time (RFC3339)")
	flag.StringVar(&endStr, "end", "", "end time (RFC3339)")
	flag.IntVar(&bucketMinutes, "bucket", cfg.BucketMinutes, "bucket size in minutes (screen params may override)")
	flag.BoolVar(&resolve, "resolve", false, "resolve journey contexts before aggregating")
	flag.BoolVar(&checkMigrations, "check-migrations", false, "require the database to be at the latest migration")
	flag.Parse()

	if venueID == "" || screenID == "" {
		log.Fatalf("venue and screen must be provided")
	}
	if startStr == "" || endStr == "" {
		log.Fatalf("start and end must be provided")
	}

	startT, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		log.Fatalf("invalid start: %v", err)
	}
	endT, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		log.Fatalf("invalid end: %v", err)
	}

	dbConn, err := db.NewDB(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer dbConn.Close()

	if checkMigrations {
		if err := dbConn.CheckMigrations(migrationsDir); err != nil {
			log.Fatalf("migration check failed: %v", err)
		}
	}

	startMs := startT.UTC().UnixMilli()
	endMs := endT.UTC().UnixMilli()
	startedAt := time.Now()

	params, err := dbConn.ParamsForScreen(screenID)
	if err != nil {
		log.Fatalf("load screen params: %v", err)
	}

	resolved := 0
	if resolve {
		events, err := dbConn.EventsForScreenRange(screenID, startMs, endMs)
		if err != nil {
			log.Fatalf("load events: %v", err)
		}
		resolver := journey.NewResolver(dbConn, dbConn, dbConn)
		resolved, err = resolver.ResolveContextBatch(venueID, events, params)
		if err != nil {
			log.Fatalf("resolve failed after %d event(s): %v", resolved, err)
		}
		fmt.Printf("resolved %d context(s)\n", resolved)
	}

	aggregator := kpi.NewAggregator(dbConn, dbConn, dbConn)
	buckets, err := aggregator.AggregateForScreen(venueID, screenID, startMs, endMs, bucketMinutes)
	if err != nil {
		log.Fatalf("aggregate failed: %v", err)
	}
	for _, b := range buckets {
		fmt.Printf("bucket %s: %d impressions (%d qualified, %d premium)\n",
			b.BucketID, b.Impressions, b.QualifiedImpr, b.PremiumImpr)
	}

	run := &db.AggregationRun{
		VenueID:        venueID,
		ScreenID:       screenID,
		StartMs:        startMs,
		EndMs:          endMs,
		BucketMinutes:  params.GetReportIntervalMinutes(bucketMinutes),
		BucketsWritten: len(buckets),
		ResolvedEvents: resolved,
		StartedAtMs:    startedAt.UnixMilli(),
		FinishedAtMs:   time.Now().UnixMilli(),
	}
	if err := dbConn.RecordAggregationRun(run); err != nil {
		log.Fatalf("record run: %v", err)
	}

	fmt.Printf("backfill complete: run %s wrote %d bucket(s) in %s\n",
		run.RunID, len(buckets), time.Since(startedAt).Round(time.Millisecond))
}
