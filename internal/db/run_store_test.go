package db

import "testing"

func TestRecordAggregationRun(t *testing.T) {
	db := newTestDB(t)
	venueID, screenID := createTestVenueAndScreen(t, db, "")

	run := &AggregationRun{
		VenueID:        venueID,
		ScreenID:       screenID,
		StartMs:        1700000100000,
		EndMs:          1700003700000,
		BucketMinutes:  15,
		BucketsWritten: 4,
		ResolvedEvents: 31,
		StartedAtMs:    1700003710000,
		FinishedAtMs:   1700003712500,
	}
	if err := db.RecordAggregationRun(run); err != nil {
		t.Fatalf("RecordAggregationRun failed: %v", err)
	}
	if run.RunID == "" {
		t.Fatal("Expected generated run id")
	}

	runs, err := db.RecentAggregationRuns(screenID, 10)
	if err != nil {
		t.Fatalf("RecentAggregationRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.RunID != run.RunID {
		t.Errorf("Expected run id %s, got %s", run.RunID, got.RunID)
	}
	if got.BucketsWritten != 4 || got.ResolvedEvents != 31 {
		t.Errorf("Expected counters 4/31, got %d/%d", got.BucketsWritten, got.ResolvedEvents)
	}
	if got.StartedAtMs != run.StartedAtMs || got.FinishedAtMs != run.FinishedAtMs {
		t.Errorf("run timestamps did not round-trip: %+v", got)
	}
}

func TestRecentAggregationRunsOrderAndLimit(t *testing.T) {
	db := newTestDB(t)
	venueID, screenID := createTestVenueAndScreen(t, db, "")

	for i := 0; i < 3; i++ {
		run := &AggregationRun{
			VenueID:       venueID,
			ScreenID:      screenID,
			StartMs:       1700000100000,
			EndMs:         1700000100000 + int64(i+1)*900000,
			BucketMinutes: 15,
			StartedAtMs:   1700003710000 + int64(i)*1000,
			FinishedAtMs:  1700003711000 + int64(i)*1000,
		}
		if err := db.RecordAggregationRun(run); err != nil {
			t.Fatalf("RecordAggregationRun failed: %v", err)
		}
	}

	runs, err := db.RecentAggregationRuns(screenID, 2)
	if err != nil {
		t.Fatalf("RecentAggregationRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected limit of 2 runs, got %d", len(runs))
	}
	if runs[0].StartedAtMs != 1700003712000 {
		t.Errorf("Expected newest run first, got started_at_ms %d", runs[0].StartedAtMs)
	}
	if runs[1].StartedAtMs != 1700003711000 {
		t.Errorf("Expected second-newest run next, got started_at_ms %d", runs[1].StartedAtMs)
	}
}

func TestRecentAggregationRunsAllScreens(t *testing.T) {
	db := newTestDB(t)
	venueID, screenID := createTestVenueAndScreen(t, db, "")

	other := &Screen{ScreenID: "screen-2", VenueID: venueID, Name: "Aisle Display"}
	if err := db.CreateScreen(other); err != nil {
		t.Fatalf("CreateScreen failed: %v", err)
	}

	for _, sid := range []string{screenID, other.ScreenID} {
		run := &AggregationRun{
			VenueID:       venueID,
			ScreenID:      sid,
			StartMs:       1700000100000,
			EndMs:         1700000100000 + 900000,
			BucketMinutes: 15,
			StartedAtMs:   1700003710000,
		}
		if err := db.RecordAggregationRun(run); err != nil {
			t.Fatalf("RecordAggregationRun failed: %v", err)
		}
	}

	runs, err := db.RecentAggregationRuns("", 10)
	if err != nil {
		t.Fatalf("RecentAggregationRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("Expected runs for both screens, got %d", len(runs))
	}

	runs, err = db.RecentAggregationRuns(other.ScreenID, 10)
	if err != nil {
		t.Fatalf("RecentAggregationRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ScreenID != other.ScreenID {
		t.Errorf("Expected only screen-2 runs, got %+v", runs)
	}
}
