package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/facet-data/exposure.report/internal/exposure"
)

// InsertExposureEvent writes one exposure event. A missing EventID gets a
// generated UUID. Samples are not persisted on the event row; they live in
// trajectory_samples and are hydrated on demand.
func (db *DB) InsertExposureEvent(ev *exposure.Event) error {
	if ev.EventID == "" {
		ev.EventID = uuid.New().String()
	}

	var contextJSON interface{}
	if ev.Context != nil {
		encoded, err := json.Marshal(ev.Context)
		if err != nil {
			return fmt.Errorf("encode event context: %w", err)
		}
		contextJSON = string(encoded)
	}

	err := retryOnBusy(func() error {
		_, err := db.Exec(`
			INSERT INTO exposure_events (
				event_id, screen_id, track_key, start_ms, end_ms,
				tier, aqs, effective_dwell_s, context_json
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			ev.EventID, ev.ScreenID, ev.TrackKey, ev.StartMs, ev.EndMs,
			ev.Tier, ev.AQS, ev.EffectiveDwellS, contextJSON,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert exposure event: %w", err)
	}
	return nil
}

// EventsForScreenRange returns a screen's events with start_ms in
// [fromMs, toMs), ordered by start time. Malformed context_json comes back
// as a nil Context rather than failing the load.
func (db *DB) EventsForScreenRange(screenID string, fromMs, toMs int64) ([]*exposure.Event, error) {
	rows, err := db.Query(`
		SELECT event_id, screen_id, track_key, start_ms, end_ms,
		       tier, aqs, effective_dwell_s, context_json
		FROM exposure_events
		WHERE screen_id = ? AND start_ms >= ? AND start_ms < ?
		ORDER BY start_ms ASC
	`, screenID, fromMs, toMs)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []*exposure.Event
	for rows.Next() {
		var ev exposure.Event
		var contextJSON sql.NullString
		if err := rows.Scan(
			&ev.EventID,
			&ev.ScreenID,
			&ev.TrackKey,
			&ev.StartMs,
			&ev.EndMs,
			&ev.Tier,
			&ev.AQS,
			&ev.EffectiveDwellS,
			&contextJSON,
		); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		if contextJSON.Valid {
			ev.Context = exposure.ParseContext([]byte(contextJSON.String))
		}
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query events rows: %w", err)
	}
	return events, nil
}

// UpdateEventContext stores the resolved journey context on one event. A
// nil context clears the column.
func (db *DB) UpdateEventContext(eventID string, ctx *exposure.Context) error {
	var contextJSON interface{}
	if ctx != nil {
		encoded, err := json.Marshal(ctx)
		if err != nil {
			return fmt.Errorf("encode event context: %w", err)
		}
		contextJSON = string(encoded)
	}

	var result sql.Result
	err := retryOnBusy(func() error {
		var err error
		result, err = db.Exec(
			`UPDATE exposure_events SET context_json = ? WHERE event_id = ?`,
			contextJSON, eventID,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("update event context: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("event not found: %s", eventID)
	}
	return nil
}
