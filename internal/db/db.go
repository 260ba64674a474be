// Package db provides SQLite persistence for exposure.report: venue and
// screen registries, floor-plane regions, trajectory samples, exposure
// events, and computed KPI buckets.
//
// DB methods satisfy the source/sink interfaces declared by
// internal/journey and internal/kpi, so a *DB can back both the context
// resolver and the aggregator directly.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// OpenDB opens the SQLite database at path without touching the schema.
// Use this when migrations manage the schema (the exposure-db CLI does).
func OpenDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}
	return &DB{sqlDB}, nil
}

// NewDB opens the database and ensures the base schema exists. Embedded
// deployments call this directly; managed databases should prefer OpenDB
// plus migrations. The statements are idempotent, so running NewDB against
// a migrated database is harmless.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS venues (
			venue_id          TEXT PRIMARY KEY,
			name              TEXT NOT NULL DEFAULT '',
			timezone          TEXT NOT NULL DEFAULT 'UTC',
			created_at_ms     BIGINT NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS screens (
			screen_id         TEXT PRIMARY KEY,
			venue_id          TEXT NOT NULL,
			name              TEXT NOT NULL DEFAULT '',
			params_json       TEXT,
			created_at_ms     BIGINT NOT NULL DEFAULT 0,
			FOREIGN KEY(venue_id) REFERENCES venues(venue_id)
		);
		CREATE TABLE IF NOT EXISTS regions (
			region_id         TEXT PRIMARY KEY,
			venue_id          TEXT NOT NULL,
			name              TEXT NOT NULL DEFAULT '',
			vertices_json     TEXT,
			created_at_ms     BIGINT NOT NULL DEFAULT 0,
			updated_at_ms     BIGINT,
			FOREIGN KEY(venue_id) REFERENCES venues(venue_id)
		);
		CREATE INDEX IF NOT EXISTS idx_regions_venue ON regions(venue_id);
		CREATE TABLE IF NOT EXISTS trajectory_samples (
			venue_id          TEXT NOT NULL,
			track_key         TEXT NOT NULL,
			ts_ms             BIGINT NOT NULL,
			x                 DOUBLE NOT NULL,
			z                 DOUBLE NOT NULL,
			speed_mps         DOUBLE NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_samples_track_ts
			ON trajectory_samples(venue_id, track_key, ts_ms);
		CREATE TABLE IF NOT EXISTS exposure_events (
			event_id          TEXT PRIMARY KEY,
			screen_id         TEXT NOT NULL,
			track_key         TEXT NOT NULL,
			start_ms          BIGINT NOT NULL,
			end_ms            BIGINT NOT NULL,
			tier              TEXT NOT NULL DEFAULT 'standard',
			aqs               DOUBLE NOT NULL DEFAULT 0,
			effective_dwell_s DOUBLE NOT NULL DEFAULT 0,
			context_json      TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_events_screen_start
			ON exposure_events(screen_id, start_ms);
		CREATE TABLE IF NOT EXISTS kpi_buckets (
			bucket_id             TEXT PRIMARY KEY,
			venue_id              TEXT NOT NULL,
			screen_id             TEXT NOT NULL,
			bucket_start_ms       BIGINT NOT NULL,
			bucket_minutes        INTEGER NOT NULL,
			impressions           INTEGER NOT NULL DEFAULT 0,
			qualified_impressions INTEGER NOT NULL DEFAULT 0,
			premium_impressions   INTEGER NOT NULL DEFAULT 0,
			unique_visitors       INTEGER NOT NULL DEFAULT 0,
			session_visits        INTEGER NOT NULL DEFAULT 0,
			avg_aqs               DOUBLE,
			p75_aqs               DOUBLE,
			total_attention_s     DOUBLE NOT NULL DEFAULT 0,
			avg_attention_s       DOUBLE,
			freq_avg              DOUBLE NOT NULL DEFAULT 0,
			context_breakdown     TEXT,
			computed_at_ms        BIGINT NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_buckets_screen_start
			ON kpi_buckets(screen_id, bucket_start_ms);
		CREATE TABLE IF NOT EXISTS aggregation_runs (
			run_id            TEXT PRIMARY KEY,
			venue_id          TEXT NOT NULL,
			screen_id         TEXT NOT NULL,
			start_ms          BIGINT NOT NULL,
			end_ms            BIGINT NOT NULL,
			bucket_minutes    INTEGER NOT NULL,
			buckets_written   INTEGER NOT NULL DEFAULT 0,
			resolved_events   INTEGER NOT NULL DEFAULT 0,
			started_at_ms     BIGINT NOT NULL,
			finished_at_ms    BIGINT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
