package db

import (
	"path/filepath"
	"testing"
)

func TestNewDBCreatesSchema(t *testing.T) {
	db := newTestDB(t)

	tables := []string{
		"venues",
		"screens",
		"regions",
		"trajectory_samples",
		"exposure_events",
		"kpi_buckets",
		"aggregation_runs",
	}
	for _, table := range tables {
		var count int
		err := db.QueryRow(
			`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("check table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("Expected table %s to exist", table)
		}
	}
}

func TestNewDBIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")

	db, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("first NewDB failed: %v", err)
	}
	if err := db.CreateVenue(&Venue{VenueID: "venue-1"}); err != nil {
		t.Fatalf("CreateVenue failed: %v", err)
	}
	db.Close()

	// Reopening must keep existing data intact.
	db, err = NewDB(dbPath)
	if err != nil {
		t.Fatalf("second NewDB failed: %v", err)
	}
	defer db.Close()

	if _, err := db.GetVenue("venue-1"); err != nil {
		t.Errorf("venue lost across reopen: %v", err)
	}
}

func TestOpenDBAppliesPragmas(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pragmas.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	defer db.Close()

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %q, want wal", journalMode)
	}

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("read foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}
