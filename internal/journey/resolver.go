// Package journey tags screen-exposure events with the part of the
// shopper's store journey they happened in. It votes an event's
// trajectory samples against the venue's named floor-plane regions,
// derives a canonical phase from the winning region's name, and looks at
// short windows before and after the exposure to capture where the
// shopper came from and went next.
package journey

import (
	"fmt"
	"math"

	"github.com/facet-data/exposure.report/internal/exposure"
)

// RegionSource loads the authored region polygons for a venue.
type RegionSource interface {
	RegionsForVenue(venueID string) ([]exposure.Region, error)
}

// SampleSource returns trajectory samples for one track ordered by
// timestamp, restricted to the half-open window [fromMs, toMs).
type SampleSource interface {
	SamplesForWindow(venueID, trackKey string, fromMs, toMs int64) ([]exposure.TrajectorySample, error)
}

// ContextSink persists a resolved context back onto the stored event.
type ContextSink interface {
	UpdateEventContext(eventID string, ctx *exposure.Context) error
}

// Resolver computes journey contexts for exposure events. It owns a
// region cache keyed by venue; the owner must call InvalidateVenue or
// ClearCache after region edits.
type Resolver struct {
	regions RegionSource
	samples SampleSource
	sink    ContextSink
	cache   *RegionCache
}

// NewResolver builds a resolver over the given sources. sink may be nil,
// in which case batch resolution only mutates events in memory.
func NewResolver(regions RegionSource, samples SampleSource, sink ContextSink) *Resolver {
	return &Resolver{
		regions: regions,
		samples: samples,
		sink:    sink,
		cache:   NewRegionCache(),
	}
}

// Rois returns the venue's region set, loading it through the cache. The
// cached entry lives until explicitly invalidated.
func (r *Resolver) Rois(venueID string) ([]exposure.Region, error) {
	if regions, ok := r.cache.Lookup(venueID); ok {
		return regions, nil
	}
	regions, err := r.regions.RegionsForVenue(venueID)
	if err != nil {
		return nil, fmt.Errorf("load regions for venue %s: %w", venueID, err)
	}
	r.cache.Store(venueID, regions)
	return regions, nil
}

// InvalidateVenue drops the cached region set for one venue.
func (r *Resolver) InvalidateVenue(venueID string) {
	r.cache.Invalidate(venueID)
}

// ClearCache drops all cached region sets.
func (r *Resolver) ClearCache() {
	r.cache.Clear()
}

// ResolveContext computes the journey context for a single event. The
// event's own samples drive the main phase vote; when the event carries
// none they are hydrated from the sample source over [StartMs, EndMs].
// Pre and post zones use the configured window on either side of the
// exposure. Missing geometry or samples degrade to phase "other" with
// confidence 0; only source I/O failures return an error.
func (r *Resolver) ResolveContext(venueID string, ev *exposure.Event, regions []exposure.Region, params exposure.ScreenParams) (exposure.Context, error) {
	priority := params.GetContextPriority()

	samples := ev.Samples
	if len(samples) == 0 && r.samples != nil {
		got, err := r.samples.SamplesForWindow(venueID, ev.TrackKey, ev.StartMs, ev.EndMs+1)
		if err != nil {
			return exposure.Context{}, fmt.Errorf("load samples for event %s: %w", ev.EventID, err)
		}
		samples = got
	}

	ctx := exposure.Context{
		Phase:    exposure.PhaseOther,
		PreZone:  exposure.PhaseOther,
		PostZone: exposure.PhaseOther,
	}

	if dom := DominantRegion(samples, regions, priority); dom != nil {
		ctx.Phase = dom.Phase
		ctx.DominantZone = dom.Region.Name
		if len(samples) > 0 {
			ctx.Confidence = math.Round(float64(dom.Hits)/float64(len(samples))*100) / 100
		}
	}

	windowMs := int64(params.GetPrePostWindowS()) * 1000
	if windowMs > 0 {
		pre, err := r.windowPhase(venueID, ev.TrackKey, ev.StartMs-windowMs, ev.StartMs, regions, priority)
		if err != nil {
			return exposure.Context{}, err
		}
		ctx.PreZone = pre

		// Post window is (EndMs, EndMs+windowMs] in a half-open fetch.
		post, err := r.windowPhase(venueID, ev.TrackKey, ev.EndMs+1, ev.EndMs+windowMs+1, regions, priority)
		if err != nil {
			return exposure.Context{}, err
		}
		ctx.PostZone = post
	}

	return ctx, nil
}

// ResolveContextBatch resolves and attaches a context to every event,
// loading the venue's regions once. Resolved contexts are written through
// the sink as they are computed, so a mid-batch failure leaves earlier
// events persisted; the whole call is safe to re-run. Returns the number
// of events resolved.
func (r *Resolver) ResolveContextBatch(venueID string, events []*exposure.Event, params exposure.ScreenParams) (int, error) {
	regions, err := r.Rois(venueID)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, ev := range events {
		ctx, err := r.ResolveContext(venueID, ev, regions, params)
		if err != nil {
			return resolved, err
		}
		ev.Context = &ctx
		if r.sink != nil {
			if err := r.sink.UpdateEventContext(ev.EventID, &ctx); err != nil {
				return resolved, fmt.Errorf("persist context for event %s: %w", ev.EventID, err)
			}
		}
		resolved++
	}
	return resolved, nil
}

// windowPhase votes the samples in [fromMs, toMs) and returns the
// dominant region's phase, or "other" when the window is empty or nothing
// matches.
func (r *Resolver) windowPhase(venueID, trackKey string, fromMs, toMs int64, regions []exposure.Region, priority []string) (string, error) {
	if r.samples == nil || fromMs >= toMs {
		return exposure.PhaseOther, nil
	}
	samples, err := r.samples.SamplesForWindow(venueID, trackKey, fromMs, toMs)
	if err != nil {
		return "", fmt.Errorf("load window samples for track %s: %w", trackKey, err)
	}
	if dom := DominantRegion(samples, regions, priority); dom != nil {
		return dom.Phase, nil
	}
	return exposure.PhaseOther, nil
}
