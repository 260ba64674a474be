package kpi

import "github.com/facet-data/exposure.report/internal/exposure"

// ContextBreakdown groups a bucket's events by resolved journey phase.
// Events without a resolved context, or with an empty phase, land under
// "unknown". Attention seconds accumulate from qualified and premium
// events only, matching the bucket-level total.
func ContextBreakdown(events []*exposure.Event) map[string]exposure.PhaseMetrics {
	out := make(map[string]exposure.PhaseMetrics)
	for _, ev := range events {
		phase := exposure.PhaseUnknown
		if ev.Context != nil && ev.Context.Phase != "" {
			phase = ev.Context.Phase
		}
		m := out[phase]
		m.Impressions++
		if exposure.TierQualifies(ev.Tier) {
			m.Qualified++
			m.TotalAttentionS += ev.EffectiveDwellS
		}
		if ev.Tier == exposure.TierPremium {
			m.Premium++
		}
		out[phase] = m
	}
	return out
}
