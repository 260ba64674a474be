package db

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/facet-data/exposure.report/internal/exposure"
	"github.com/facet-data/exposure.report/internal/journey"
	"github.com/facet-data/exposure.report/internal/kpi"
)

// TestResolveThenAggregatePipeline drives the full path a backfill takes:
// seed regions, samples and raw events, resolve journey contexts through
// the store, then aggregate KPI buckets and read them back.
func TestResolveThenAggregatePipeline(t *testing.T) {
	db := newTestDB(t)
	venueID, screenID := createTestVenueAndScreen(t, db,
		`{"visitor_reset_minutes": 30, "pre_post_window_s": 10}`)

	for _, r := range []*exposure.Region{
		{RegionID: "region-queue", VenueID: venueID, Name: "Queue Lane A", Vertices: square(0, 0, 10)},
		{RegionID: "region-aisle", VenueID: venueID, Name: "Aisle 7", Vertices: square(20, 0, 10)},
		{RegionID: "region-entrance", VenueID: venueID, Name: "Entrance Lobby", Vertices: square(-20, 0, 10)},
	} {
		if err := db.CreateRegion(r); err != nil {
			t.Fatalf("CreateRegion failed: %v", err)
		}
	}

	bucketStart := int64(1700000100000) // aligned 15-minute boundary
	t1 := bucketStart + 60000           // event-1 start, track-1
	t2 := bucketStart + 120000          // event-2 start, track-2
	t3 := bucketStart + 240000          // event-3 start, track-2 again

	samples := []exposure.TrajectorySample{
		// track-1 walks entrance -> queue (with one aisle stray) -> aisle.
		{VenueID: venueID, TrackKey: "track-1", TSMs: t1 - 5000, X: -15, Z: 5},
		{VenueID: venueID, TrackKey: "track-1", TSMs: t1 + 1000, X: 5, Z: 5},
		{VenueID: venueID, TrackKey: "track-1", TSMs: t1 + 3000, X: 5, Z: 6},
		{VenueID: venueID, TrackKey: "track-1", TSMs: t1 + 5000, X: 25, Z: 5},
		{VenueID: venueID, TrackKey: "track-1", TSMs: t1 + 7000, X: 5, Z: 4},
		{VenueID: venueID, TrackKey: "track-1", TSMs: t1 + 11000, X: 25, Z: 5},
		// track-2 stays in the aisle during its first event.
		{VenueID: venueID, TrackKey: "track-2", TSMs: t2 + 1000, X: 25, Z: 5},
		{VenueID: venueID, TrackKey: "track-2", TSMs: t2 + 3000, X: 26, Z: 6},
	}
	if err := db.InsertSamples(context.Background(), samples); err != nil {
		t.Fatalf("InsertSamples failed: %v", err)
	}

	for _, ev := range []*exposure.Event{
		{EventID: "event-1", ScreenID: screenID, TrackKey: "track-1", StartMs: t1, EndMs: t1 + 8000,
			Tier: exposure.TierPremium, AQS: 0.875, EffectiveDwellS: 6.5},
		{EventID: "event-2", ScreenID: screenID, TrackKey: "track-2", StartMs: t2, EndMs: t2 + 5000,
			Tier: exposure.TierQualified, AQS: 0.5, EffectiveDwellS: 4.0},
		{EventID: "event-3", ScreenID: screenID, TrackKey: "track-2", StartMs: t3, EndMs: t3 + 4000,
			Tier: exposure.TierStandard, AQS: 0.125, EffectiveDwellS: 2.0},
	} {
		if err := db.InsertExposureEvent(ev); err != nil {
			t.Fatalf("InsertExposureEvent failed: %v", err)
		}
	}

	params, err := db.ParamsForScreen(screenID)
	if err != nil {
		t.Fatalf("ParamsForScreen failed: %v", err)
	}

	events, err := db.EventsForScreenRange(screenID, bucketStart, bucketStart+900000)
	if err != nil {
		t.Fatalf("EventsForScreenRange failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}

	resolver := journey.NewResolver(db, db, db)
	resolved, err := resolver.ResolveContextBatch(venueID, events, params)
	if err != nil {
		t.Fatalf("ResolveContextBatch failed: %v", err)
	}
	if resolved != 3 {
		t.Errorf("Expected 3 resolved events, got %d", resolved)
	}

	// Contexts must have been persisted through the sink.
	events, err = db.EventsForScreenRange(screenID, bucketStart, bucketStart+900000)
	if err != nil {
		t.Fatalf("EventsForScreenRange after resolve failed: %v", err)
	}

	wantContexts := []exposure.Context{
		{Phase: exposure.PhaseQueue, PreZone: exposure.PhaseEntrance, PostZone: exposure.PhaseAisle,
			DominantZone: "Queue Lane A", Confidence: 0.75},
		{Phase: exposure.PhaseAisle, PreZone: exposure.PhaseOther, PostZone: exposure.PhaseOther,
			DominantZone: "Aisle 7", Confidence: 1.0},
		{Phase: exposure.PhaseOther, PreZone: exposure.PhaseOther, PostZone: exposure.PhaseOther},
	}
	for i, want := range wantContexts {
		if events[i].Context == nil {
			t.Fatalf("event %s has no persisted context", events[i].EventID)
		}
		if diff := cmp.Diff(want, *events[i].Context); diff != "" {
			t.Errorf("event %s context mismatch (-want +got):\n%s", events[i].EventID, diff)
		}
	}

	aggregator := kpi.NewAggregator(db, db, db)
	stored, err := aggregator.AggregateForScreen(venueID, screenID, bucketStart, bucketStart+900000, 15)
	if err != nil {
		t.Fatalf("AggregateForScreen failed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("Expected 1 stored bucket, got %d", len(stored))
	}

	want := &exposure.Bucket{
		BucketID:        exposure.BucketID(screenID, bucketStart, 15),
		VenueID:         venueID,
		ScreenID:        screenID,
		BucketStartMs:   bucketStart,
		BucketMinutes:   15,
		Impressions:     3,
		QualifiedImpr:   2,
		PremiumImpr:     1,
		UniqueVisitors:  2,
		SessionVisits:   2,
		AvgAQS:          floatPtr(0.5),
		P75AQS:          floatPtr(0.875),
		TotalAttentionS: 10.5,
		AvgAttentionS:   floatPtr(5.25),
		FreqAvg:         1.5,
		ContextBreakdown: map[string]exposure.PhaseMetrics{
			exposure.PhaseQueue: {Impressions: 1, Qualified: 1, Premium: 1, TotalAttentionS: 6.5},
			exposure.PhaseAisle: {Impressions: 1, Qualified: 1, TotalAttentionS: 4.0},
			exposure.PhaseOther: {Impressions: 1},
		},
	}
	if diff := cmp.Diff(want, stored[0]); diff != "" {
		t.Errorf("aggregated bucket mismatch (-want +got):\n%s", diff)
	}

	// The stored row reads back identical through the bucket store.
	got, err := db.GetBuckets(screenID, bucketStart, bucketStart+900000, 15)
	if err != nil {
		t.Fatalf("GetBuckets failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 bucket from store, got %d", len(got))
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("bucket round trip mismatch (-want +got):\n%s", diff)
	}

	rollup, err := aggregator.BucketsGroupedByContext(screenID, bucketStart, bucketStart+900000)
	if err != nil {
		t.Fatalf("BucketsGroupedByContext failed: %v", err)
	}
	wantRollup := map[string]kpi.PhaseRollup{
		exposure.PhaseQueue: {PhaseMetrics: exposure.PhaseMetrics{Impressions: 1, Qualified: 1, Premium: 1, TotalAttentionS: 6.5}, Buckets: 1},
		exposure.PhaseAisle: {PhaseMetrics: exposure.PhaseMetrics{Impressions: 1, Qualified: 1, TotalAttentionS: 4.0}, Buckets: 1},
		exposure.PhaseOther: {PhaseMetrics: exposure.PhaseMetrics{Impressions: 1}, Buckets: 1},
	}
	if diff := cmp.Diff(wantRollup, rollup); diff != "" {
		t.Errorf("phase rollup mismatch (-want +got):\n%s", diff)
	}
}

// square returns the vertices of an axis-aligned square with its lower
// corner at (x, z).
func square(x, z, side float64) []exposure.PlanePoint {
	return []exposure.PlanePoint{
		{X: x, Z: z},
		{X: x + side, Z: z},
		{X: x + side, Z: z + side},
		{X: x, Z: z + side},
	}
}
