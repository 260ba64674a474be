package db

import (
	"encoding/json"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "exposure_test.db")
	db, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestVenueAndScreen seeds one venue with one screen and returns
// their ids.
func createTestVenueAndScreen(t *testing.T, db *DB, paramsJSON string) (venueID, screenID string) {
	t.Helper()

	venue := &Venue{VenueID: "venue-1", Name: "Test Venue"}
	if err := db.CreateVenue(venue); err != nil {
		t.Fatalf("CreateVenue failed: %v", err)
	}

	screen := &Screen{
		ScreenID: "screen-1",
		VenueID:  venue.VenueID,
		Name:     "Endcap Display",
	}
	if paramsJSON != "" {
		screen.ParamsJSON = json.RawMessage(paramsJSON)
	}
	if err := db.CreateScreen(screen); err != nil {
		t.Fatalf("CreateScreen failed: %v", err)
	}

	return venue.VenueID, screen.ScreenID
}

func floatPtr(f float64) *float64 {
	return &f
}
