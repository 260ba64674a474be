package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/facet-data/exposure.report/internal/timeutil"
)

// Venue is a physical deployment location (store, mall concourse, transit
// hall). Regions and trajectory samples hang off the venue.
type Venue struct {
	VenueID     string `json:"venue_id"`
	Name        string `json:"name"`
	Timezone    string `json:"timezone"`
	CreatedAtMs int64  `json:"created_at_ms"`
}

// CreateVenue inserts a venue. Timezone defaults to UTC when empty and
// must name a tz database location otherwise.
func (db *DB) CreateVenue(v *Venue) error {
	if v.Timezone == "" {
		v.Timezone = "UTC"
	} else if !timeutil.ValidTimezone(v.Timezone) {
		return fmt.Errorf("invalid timezone: %s", v.Timezone)
	}
	if v.CreatedAtMs == 0 {
		v.CreatedAtMs = time.Now().UnixMilli()
	}
	err := retryOnBusy(func() error {
		_, err := db.Exec(
			`INSERT INTO venues (venue_id, name, timezone, created_at_ms) VALUES (?, ?, ?, ?)`,
			v.VenueID, v.Name, v.Timezone, v.CreatedAtMs,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("create venue: %w", err)
	}
	return nil
}

// GetVenue retrieves a venue by id.
func (db *DB) GetVenue(venueID string) (*Venue, error) {
	var v Venue
	err := db.QueryRow(
		`SELECT venue_id, name, timezone, created_at_ms FROM venues WHERE venue_id = ?`,
		venueID,
	).Scan(&v.VenueID, &v.Name, &v.Timezone, &v.CreatedAtMs)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("venue not found: %s", venueID)
	}
	if err != nil {
		return nil, fmt.Errorf("get venue: %w", err)
	}
	return &v, nil
}

// ListVenues returns all venues ordered by name.
func (db *DB) ListVenues() ([]Venue, error) {
	rows, err := db.Query(`SELECT venue_id, name, timezone, created_at_ms FROM venues ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	var venues []Venue
	for rows.Next() {
		var v Venue
		if err := rows.Scan(&v.VenueID, &v.Name, &v.Timezone, &v.CreatedAtMs); err != nil {
			return nil, fmt.Errorf("scan venue row: %w", err)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list venues rows: %w", err)
	}
	return venues, nil
}
