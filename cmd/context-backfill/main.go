package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/facet-data/exposure.report/internal/config"
	"github.com/facet-data/exposure.report/internal/db"
	"github.com/facet-data/exposure.report/internal/journey"
)

func main() {
	cfg, err := config.LoadEnv()
	if err != nil {
		log.Fatalf("load env: %v", err)
	}

	var dbPath string
	var venueID string
	var screenID string
	var startStr string
	var endStr string

	flag.StringVar(&dbPath, "db", cfg.DBPath, "path to sqlite db")
	flag.StringVar(&venueID, "venue", "", "venue id owning the regions")
	flag.StringVar(&screenID, "screen", "", "screen id whose events get contexts")
	flag.StringVar(&startStr, "start", "", "start time (RFC3339)")
	flag.StringVar(&endStr, "end", "", "end time (RFC3339)")
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

	params, err := dbConn.ParamsForScreen(screenID)
	if err != nil {
		log.Fatalf("load screen params: %v", err)
	}

	events, err := dbConn.EventsForScreenRange(screenID,
		startT.UTC().UnixMilli(), endT.UTC().UnixMilli())
	if err != nil {
		log.Fatalf("load events: %v", err)
	}
	if len(events) == 0 {
		fmt.Println("no events in range")
		return
	}
	fmt.Printf("resolving contexts for %d event(s) on screen %s\n", len(events), screenID)

	resolver := journey.NewResolver(dbConn, dbConn, dbConn)
	resolved, err := resolver.ResolveContextBatch(venueID, events, params)
	if err != nil {
		// Earlier events keep their persisted contexts; rerunning the same
		// range picks up where this left off.
		log.Fatalf("resolve failed after %d event(s): %v", resolved, err)
	}

	fmt.Printf("backfill complete: %d context(s) resolved\n", resolved)
}
