package db

import (
	"fmt"

	"github.com/facet-data/exposure.report/internal/timeutil"
)

// BucketGap is an aligned bucket period that has exposure events but no
// stored KPI bucket of the given size. Gaps usually mean an aggregation
// run was missed or aborted for the period.
type BucketGap struct {
	BucketStartMs int64
	BucketEndMs   int64
	EventCount    int
}

// FindBucketGaps scans a screen's events for aligned periods missing a
// kpi_buckets row of the given bucket size.
func (db *DB) FindBucketGaps(screenID string, bucketMinutes int) ([]BucketGap, error) {
	width := timeutil.BucketWidthMs(bucketMinutes)
	if width <= 0 {
		return nil, fmt.Errorf("invalid bucket size: %d minutes", bucketMinutes)
	}

	query := `
	WITH event_periods AS (
		SELECT
			CAST(start_ms / ? AS INTEGER) * ? AS bucket_start_ms,
			COUNT(*) AS event_count
		FROM exposure_events
		WHERE screen_id = ?
		GROUP BY bucket_start_ms
	),
	stored_periods AS (
		SELECT bucket_start_ms
		FROM kpi_buckets
		WHERE screen_id = ? AND bucket_minutes = ?
	)
	SELECT
		ep.bucket_start_ms,
		ep.event_count
	FROM event_periods ep
	WHERE NOT EXISTS (
		SELECT 1 FROM stored_periods sp
		WHERE sp.bucket_start_ms = ep.bucket_start_ms
	)
	ORDER BY ep.bucket_start_ms
	`

	rows, err := db.Query(query, width, width, screenID, screenID, bucketMinutes)
	if err != nil {
		return nil, fmt.Errorf("query bucket gaps: %w", err)
	}
	defer rows.Close()

	var gaps []BucketGap
	for rows.Next() {
		var startMs int64
		var eventCount int64
		if err := rows.Scan(&startMs, &eventCount); err != nil {
			return nil, fmt.Errorf("scan bucket gap: %w", err)
		}
		gaps = append(gaps, BucketGap{
			BucketStartMs: startMs,
			BucketEndMs:   startMs + width,
			EventCount:    int(eventCount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query bucket gaps rows: %w", err)
	}
	return gaps, nil
}
