package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/facet-data/exposure.report/internal/exposure"
)

// Screen is a single display surface inside a venue. ParamsJSON carries
// the per-screen reporting configuration; absent or malformed values fall
// back to package defaults at read time.
type Screen struct {
	ScreenID    string          `json:"screen_id"`
	VenueID     string          `json:"venue_id"`
	Name        string          `json:"name"`
	ParamsJSON  json.RawMessage `json:"params_json,omitempty"`
	CreatedAtMs int64           `json:"created_at_ms"`
}

// CreateScreen inserts a screen.
func (db *DB) CreateScreen(s *Screen) error {
	if s.CreatedAtMs == 0 {
		s.CreatedAtMs = time.Now().UnixMilli()
	}
	err := retryOnBusy(func() error {
		_, err := db.Exec(
			`INSERT INTO screens (screen_id, venue_id, name, params_json, created_at_ms) VALUES (?, ?, ?, ?, ?)`,
			s.ScreenID, s.VenueID, s.Name, nullString(string(s.ParamsJSON)), s.CreatedAtMs,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	return nil
}

// GetScreen retrieves a screen by id.
func (db *DB) GetScreen(screenID string) (*Screen, error) {
	var s Screen
	var paramsJSON sql.NullString
	err := db.QueryRow(
		`SELECT screen_id, venue_id, name, params_json, created_at_ms FROM screens WHERE screen_id = ?`,
		screenID,
	).Scan(&s.ScreenID, &s.VenueID, &s.Name, &paramsJSON, &s.CreatedAtMs)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("screen not found: %s", screenID)
	}
	if err != nil {
		return nil, fmt.Errorf("get screen: %w", err)
	}
	if paramsJSON.Valid && paramsJSON.String != "" {
		s.ParamsJSON = json.RawMessage(paramsJSON.String)
	}
	return &s, nil
}

// ListScreens returns the screens for a venue ordered by name.
func (db *DB) ListScreens(venueID string) ([]Screen, error) {
	rows, err := db.Query(
		`SELECT screen_id, venue_id, name, params_json, created_at_ms FROM screens WHERE venue_id = ? ORDER BY name ASC`,
		venueID,
	)
	if err != nil {
		return nil, fmt.Errorf("list screens: %w", err)
	}
	defer rows.Close()

	var screens []Screen
	for rows.Next() {
		var s Screen
		var paramsJSON sql.NullString
		if err := rows.Scan(&s.ScreenID, &s.VenueID, &s.Name, &paramsJSON, &s.CreatedAtMs); err != nil {
			return nil, fmt.Errorf("scan screen row: %w", err)
		}
		if paramsJSON.Valid && paramsJSON.String != "" {
			s.ParamsJSON = json.RawMessage(paramsJSON.String)
		}
		screens = append(screens, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list screens rows: %w", err)
	}
	return screens, nil
}

// UpdateScreenParams replaces a screen's params_json.
func (db *DB) UpdateScreenParams(screenID string, paramsJSON json.RawMessage) error {
	var result sql.Result
	err := retryOnBusy(func() error {
		var err error
		result, err = db.Exec(
			`UPDATE screens SET params_json = ? WHERE screen_id = ?`,
			nullString(string(paramsJSON)), screenID,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("update screen params: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("screen not found: %s", screenID)
	}
	return nil
}

// ParamsForScreen loads and parses the reporting parameters for a screen.
// A missing screen or empty params column yields zero-value params, so
// every accessor falls back to its default; only query failures error.
func (db *DB) ParamsForScreen(screenID string) (exposure.ScreenParams, error) {
	var paramsJSON sql.NullString
	err := db.QueryRow(
		`SELECT params_json FROM screens WHERE screen_id = ?`,
		screenID,
	).Scan(&paramsJSON)
	if err == sql.ErrNoRows {
		return exposure.ScreenParams{}, nil
	}
	if err != nil {
		return exposure.ScreenParams{}, fmt.Errorf("load screen params: %w", err)
	}
	if !paramsJSON.Valid {
		return exposure.ScreenParams{}, nil
	}
	return exposure.ParseScreenParams([]byte(paramsJSON.String)), nil
}

// nullString converts empty strings to nil for nullable TEXT columns.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
