package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/facet-data/exposure.report/internal/exposure"
)

// InsertSamples writes a batch of trajectory samples in one transaction.
func (db *DB) InsertSamples(ctx context.Context, samples []exposure.TrajectorySample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin samples tx: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			log.Printf("warning: failed to rollback samples tx: %v", err)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trajectory_samples (venue_id, track_key, ts_ms, x, z, speed_mps)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare samples insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.ExecContext(ctx, s.VenueID, s.TrackKey, s.TSMs, s.X, s.Z, s.SpeedMps); err != nil {
			return fmt.Errorf("insert sample: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit samples tx: %w", err)
	}
	return nil
}

// SamplesForWindow returns one track's samples with ts_ms in [fromMs,
// toMs), ordered by timestamp. The half-open window lets callers tile
// adjacent windows without double counting.
func (db *DB) SamplesForWindow(venueID, trackKey string, fromMs, toMs int64) ([]exposure.TrajectorySample, error) {
	rows, err := db.Query(`
		SELECT venue_id, track_key, ts_ms, x, z, speed_mps
		FROM trajectory_samples
		WHERE venue_id = ? AND track_key = ? AND ts_ms >= ? AND ts_ms < ?
		ORDER BY ts_ms ASC
	`, venueID, trackKey, fromMs, toMs)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var samples []exposure.TrajectorySample
	for rows.Next() {
		var s exposure.TrajectorySample
		if err := rows.Scan(&s.VenueID, &s.TrackKey, &s.TSMs, &s.X, &s.Z, &s.SpeedMps); err != nil {
			return nil, fmt.Errorf("scan sample row: %w", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query samples rows: %w", err)
	}
	return samples, nil
}
