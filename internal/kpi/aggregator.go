// Package kpi turns screen-exposure events into calendar-aligned KPI
// buckets: impression counts by attention tier, attention statistics,
// sessionized visitor counts, and a per-journey-phase breakdown. Buckets
// carry deterministic ids, so recomputing a range replaces rather than
// accumulates.
package kpi

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/floats"

	"github.com/facet-data/exposure.report/internal/exposure"
	"github.com/facet-data/exposure.report/internal/timeutil"
)

// EventSource returns a screen's exposure events with start times in the
// half-open window [fromMs, toMs), ordered by start time.
type EventSource interface {
	EventsForScreenRange(screenID string, fromMs, toMs int64) ([]*exposure.Event, error)
}

// BucketStore persists computed buckets and serves the read paths.
// GetBuckets with bucketMinutes <= 0 does not filter on bucket size.
type BucketStore interface {
	UpsertBucket(b *exposure.Bucket) error
	GetBuckets(screenID string, fromMs, toMs int64, bucketMinutes int) ([]*exposure.Bucket, error)
}

// ParamsSource returns the stored params for a screen.
type ParamsSource interface {
	ParamsForScreen(screenID string) (exposure.ScreenParams, error)
}

// Aggregator computes and stores KPI buckets. It holds no state of its
// own; every invocation reads events, computes, and writes through the
// store. Concurrent recomputation of the same range converges on the
// same bucket ids with last-writer-wins semantics.
type Aggregator struct {
	events  EventSource
	buckets BucketStore
	params  ParamsSource
}

// NewAggregator builds an aggregator over the given sources. params may
// be nil, in which case built-in defaults apply everywhere.
func NewAggregator(events EventSource, buckets BucketStore, params ParamsSource) *Aggregator {
	return &Aggregator{events: events, buckets: buckets, params: params}
}

// AggregateBucket computes one bucket's KPIs from the events whose start
// falls inside it. Returns nil when the bucket has no events: empty
// buckets are never materialized. The result is not stored; callers
// decide that (see AggregateForScreen).
func (a *Aggregator) AggregateBucket(venueID, screenID string, bucketStartMs int64, bucketMinutes int, params exposure.ScreenParams) (*exposure.Bucket, error) {
	bucketEndMs := bucketStartMs + timeutil.BucketWidthMs(bucketMinutes)
	events, err := a.events.EventsForScreenRange(screenID, bucketStartMs, bucketEndMs)
	if err != nil {
		return nil, fmt.Errorf("load events for screen %s: %w", screenID, err)
	}
	if len(events) == 0 {
		return nil, nil
	}

	b := &exposure.Bucket{
		BucketID:      exposure.BucketID(screenID, bucketStartMs, bucketMinutes),
		VenueID:       venueID,
		ScreenID:      screenID,
		BucketStartMs: bucketStartMs,
		BucketMinutes: bucketMinutes,
		Impressions:   len(events),
	}

	aqs := make([]float64, 0, len(events))
	var attention []float64
	for _, ev := range events {
		aqs = append(aqs, ev.AQS)
		if exposure.TierQualifies(ev.Tier) {
			b.QualifiedImpr++
			attention = append(attention, ev.EffectiveDwellS)
		}
		if ev.Tier == exposure.TierPremium {
			b.PremiumImpr++
		}
	}

	b.AvgAQS = Mean(aqs)
	b.P75AQS = Percentile(aqs, 75)
	b.TotalAttentionS = floats.Sum(attention)
	if b.QualifiedImpr > 0 {
		avg := b.TotalAttentionS / float64(b.QualifiedImpr)
		b.AvgAttentionS = &avg
	}

	b.UniqueVisitors, b.SessionVisits = UniqueVisitors(events, params.GetVisitorResetMinutes())
	b.FreqAvg = FrequencyAvg(b.Impressions, b.UniqueVisitors)
	b.ContextBreakdown = ContextBreakdown(events)

	return b, nil
}

// AggregateForScreen recomputes every bucket intersecting [startMs,
// endMs) for one screen. The effective bucket size comes from the
// screen's report_interval_minutes when set, else defaultBucketMinutes.
// The raw range is aligned outward to bucket boundaries, then buckets are
// computed and stored strictly in time order. Returns the non-empty
// buckets that were stored; the result is sparse by construction.
func (a *Aggregator) AggregateForScreen(venueID, screenID string, startMs, endMs int64, defaultBucketMinutes int) ([]*exposure.Bucket, error) {
	var params exposure.ScreenParams
	if a.params != nil {
		p, err := a.params.ParamsForScreen(screenID)
		if err != nil {
			return nil, fmt.Errorf("load params for screen %s: %w", screenID, err)
		}
		params = p
	}

	bucketMinutes := params.GetReportIntervalMinutes(defaultBucketMinutes)
	alignedStart := timeutil.AlignDownMs(startMs, bucketMinutes)
	alignedEnd := timeutil.AlignUpMs(endMs, bucketMinutes)
	width := timeutil.BucketWidthMs(bucketMinutes)

	var stored []*exposure.Bucket
	for ts := alignedStart; ts < alignedEnd; ts += width {
		bucket, err := a.AggregateBucket(venueID, screenID, ts, bucketMinutes, params)
		if err != nil {
			return stored, err
		}
		if bucket == nil {
			continue
		}
		if err := a.buckets.UpsertBucket(bucket); err != nil {
			return stored, fmt.Errorf("store bucket %s: %w", bucket.BucketID, err)
		}
		stored = append(stored, bucket)
	}

	log.Printf("screen %s: stored %d bucket(s) of %d minutes in [%d, %d)",
		screenID, len(stored), bucketMinutes, alignedStart, alignedEnd)
	return stored, nil
}

// Buckets reads stored buckets for a screen in [fromMs, toMs), optionally
// filtered to one bucket size, ordered by start time.
func (a *Aggregator) Buckets(screenID string, fromMs, toMs int64, bucketMinutes int) ([]*exposure.Bucket, error) {
	return a.buckets.GetBuckets(screenID, fromMs, toMs, bucketMinutes)
}

// PhaseRollup sums one phase's metrics across buckets. Buckets counts how
// many buckets contributed to the phase.
type PhaseRollup struct {
	exposure.PhaseMetrics
	Buckets int
}

// BucketsGroupedByContext reads the stored buckets in range and sums
// their context breakdowns by phase.
func (a *Aggregator) BucketsGroupedByContext(screenID string, fromMs, toMs int64) (map[string]PhaseRollup, error) {
	buckets, err := a.buckets.GetBuckets(screenID, fromMs, toMs, 0)
	if err != nil {
		return nil, err
	}

	out := make(map[string]PhaseRollup)
	for _, b := range buckets {
		for phase, m := range b.ContextBreakdown {
			r := out[phase]
			r.Impressions += m.Impressions
			r.Qualified += m.Qualified
			r.Premium += m.Premium
			r.TotalAttentionS += m.TotalAttentionS
			r.Buckets++
			out[phase] = r
		}
	}
	return out, nil
}
