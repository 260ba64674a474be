package db

import (
	"fmt"

	"github.com/google/uuid"
)

// AggregationRun is the audit record of one backfill or scheduled
// aggregation pass over a screen's range.
type AggregationRun struct {
	RunID          string `json:"run_id"`
	VenueID        string `json:"venue_id"`
	ScreenID       string `json:"screen_id"`
	StartMs        int64  `json:"start_ms"`
	EndMs          int64  `json:"end_ms"`
	BucketMinutes  int    `json:"bucket_minutes"`
	BucketsWritten int    `json:"buckets_written"`
	ResolvedEvents int    `json:"resolved_events"`
	StartedAtMs    int64  `json:"started_at_ms"`
	FinishedAtMs   int64  `json:"finished_at_ms"`
}

// RecordAggregationRun writes a run audit row. A missing RunID gets a
// generated UUID.
func (db *DB) RecordAggregationRun(run *AggregationRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}

	err := retryOnBusy(func() error {
		_, err := db.Exec(`
			INSERT INTO aggregation_runs (
				run_id, venue_id, screen_id, start_ms, end_ms,
				bucket_minutes, buckets_written, resolved_events,
				started_at_ms, finished_at_ms
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.RunID, run.VenueID, run.ScreenID, run.StartMs, run.EndMs,
			run.BucketMinutes, run.BucketsWritten, run.ResolvedEvents,
			run.StartedAtMs, run.FinishedAtMs,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("record aggregation run: %w", err)
	}
	return nil
}

// RecentAggregationRuns returns the most recent runs for a screen, newest
// first. Pass an empty screenID for runs across all screens.
func (db *DB) RecentAggregationRuns(screenID string, limit int) ([]AggregationRun, error) {
	query := `
		SELECT run_id, venue_id, screen_id, start_ms, end_ms,
		       bucket_minutes, buckets_written, resolved_events,
		       started_at_ms, finished_at_ms
		FROM aggregation_runs
	`
	args := []interface{}{}
	if screenID != "" {
		query += ` WHERE screen_id = ?`
		args = append(args, screenID)
	}
	query += ` ORDER BY started_at_ms DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query aggregation runs: %w", err)
	}
	defer rows.Close()

	var runs []AggregationRun
	for rows.Next() {
		var run AggregationRun
		if err := rows.Scan(
			&run.RunID,
			&run.VenueID,
			&run.ScreenID,
			&run.StartMs,
			&run.EndMs,
			&run.BucketMinutes,
			&run.BucketsWritten,
			&run.ResolvedEvents,
			&run.StartedAtMs,
			&run.FinishedAtMs,
		); err != nil {
			return nil, fmt.Errorf("scan aggregation run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query aggregation runs rows: %w", err)
	}
	return runs, nil
}
