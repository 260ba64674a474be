// Package exposure defines the record types shared by the journey
// resolution and KPI aggregation layers: trajectory samples, floor-plane
// regions, exposure events, screen parameters, and computed KPI buckets.
//
// All timestamps are Unix epoch milliseconds. Durations that describe
// shopper behavior (dwell, attention) are seconds.
package exposure

import "fmt"

// Canonical journey-phase labels derived from region names.
const (
	PhaseQueue    = "queue"
	PhaseCheckout = "checkout"
	PhasePromo    = "promo"
	PhaseAisle    = "aisle"
	PhaseEntrance = "entrance"
	PhaseExit     = "exit"
	PhaseOther    = "other"

	// PhaseUnknown is used in KPI breakdowns for events that carry no
	// resolved context. It is never produced by name parsing.
	PhaseUnknown = "unknown"
)

// DefaultContextPriority returns the default phase ordering used for name
// parsing and dominant-region tie-breaks. Returns a fresh slice; callers
// may reorder it.
func DefaultContextPriority() []string {
	return []string{
		PhaseQueue,
		PhaseCheckout,
		PhasePromo,
		PhaseAisle,
		PhaseEntrance,
		PhaseExit,
		PhaseOther,
	}
}

// Attention tiers assigned upstream from AQS thresholds. Premium events
// also count as qualified. Unrecognized tiers count toward impressions
// only.
const (
	TierStandard  = "standard"
	TierQualified = "qualified"
	TierPremium   = "premium"
)

// TierQualifies reports whether an attention tier counts as a qualified
// impression.
func TierQualifies(tier string) bool {
	return tier == TierQualified || tier == TierPremium
}

// PlanePoint is a position on the venue floor plane. X runs along the
// venue's primary axis, Z along the secondary (the "depth" axis in some
// upstream encodings).
type PlanePoint struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// TrajectorySample is a single tracked position for one track key.
// Samples are produced by the tracking subsystem and are immutable.
type TrajectorySample struct {
	VenueID  string
	TrackKey string
	TSMs     int64
	X        float64
	Z        float64
	SpeedMps float64
}

// Region is a named floor-plane polygon (region of interest) for a venue.
// Vertices form a closed simple polygon; the closing edge from the last
// vertex back to the first is implied. A region with fewer than three
// vertices matches no point.
type Region struct {
	RegionID string
	VenueID  string
	Name     string
	Vertices []PlanePoint
}

// Context is the journey tag attached to an exposure event after
// resolution. Phase, PreZone and PostZone are canonical phase labels;
// DominantZone is the raw name of the winning region, empty when no
// sample fell inside any region.
type Context struct {
	Phase        string  `json:"phase"`
	PreZone      string  `json:"preZone"`
	PostZone     string  `json:"postZone"`
	DominantZone string  `json:"dominantZone,omitempty"`
	Confidence   float64 `json:"confidence"`
}

// Event is one screen-exposure interval for a tracked individual.
// Samples holds the trajectory samples recorded during the exposure. It
// is never persisted on the event row; events loaded from storage carry
// nil Samples and the resolver hydrates them on demand. Context is nil
// until resolved.
type Event struct {
	EventID         string
	ScreenID        string
	TrackKey        string
	StartMs         int64
	EndMs           int64
	Tier            string
	AQS             float64
	EffectiveDwellS float64
	Samples         []TrajectorySample
	Context         *Context
}

// PhaseMetrics is the per-phase slice of a bucket's context breakdown.
// TotalAttentionS sums effective dwell over qualified and premium events
// only.
type PhaseMetrics struct {
	Impressions     int     `json:"impressions"`
	Qualified       int     `json:"qualified"`
	Premium         int     `json:"premium"`
	TotalAttentionS float64 `json:"total_attention_s"`
}

// Bucket is one calendar-aligned KPI window for a single screen. Buckets
// are always recomputed whole and replaced by id; a bucket with zero
// impressions is never stored.
type Bucket struct {
	BucketID         string
	VenueID          string
	ScreenID         string
	BucketStartMs    int64
	BucketMinutes    int
	Impressions      int
	QualifiedImpr    int
	PremiumImpr      int
	UniqueVisitors   int
	SessionVisits    int
	AvgAQS           *float64
	P75AQS           *float64
	TotalAttentionS  float64
	AvgAttentionS    *float64
	FreqAvg          float64
	ContextBreakdown map[string]PhaseMetrics
}

// BucketID derives the deterministic bucket identity for a screen,
// bucket start and bucket size. Identical triples always map to the same
// id, which is what makes recomputation a replace rather than an
// accumulate.
func BucketID(screenID string, bucketStartMs int64, bucketMinutes int) string {
	return fmt.Sprintf("%s_%d_%d", screenID, bucketStartMs, bucketMinutes)
}
