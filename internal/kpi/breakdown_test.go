package kpi

import (
	"testing"

	"github.com/facet-data/exposure.report/internal/exposure"
)

func TestContextBreakdown(t *testing.T) {
	events := []*exposure.Event{
		{Tier: exposure.TierPremium, EffectiveDwellS: 12, Context: &exposure.Context{Phase: exposure.PhaseQueue}},
		{Tier: exposure.TierQualified, EffectiveDwellS: 8, Context: &exposure.Context{Phase: exposure.PhaseQueue}},
		{Tier: exposure.TierStandard, EffectiveDwellS: 3, Context: &exposure.Context{Phase: exposure.PhaseAisle}},
		{Tier: exposure.TierStandard, Context: &exposure.Context{Phase: exposure.PhaseAisle}},
	}
	got := ContextBreakdown(events)

	queue := got[exposure.PhaseQueue]
	if queue.Impressions != 2 || queue.Qualified != 2 || queue.Premium != 1 {
		t.Errorf("queue counts = %+v, want impressions=2 qualified=2 premium=1", queue)
	}
	if queue.TotalAttentionS != 20 {
		t.Errorf("queue attention = %v, want 20", queue.TotalAttentionS)
	}

	aisle := got[exposure.PhaseAisle]
	if aisle.Impressions != 2 || aisle.Qualified != 0 || aisle.Premium != 0 {
		t.Errorf("aisle counts = %+v, want impressions=2 qualified=0 premium=0", aisle)
	}
	if aisle.TotalAttentionS != 0 {
		t.Errorf("aisle attention = %v, want 0", aisle.TotalAttentionS)
	}
}

func TestContextBreakdownMissingContext(t *testing.T) {
	events := []*exposure.Event{
		{Tier: exposure.TierQualified, EffectiveDwellS: 5},
		{Tier: exposure.TierStandard, Context: &exposure.Context{}},
	}
	got := ContextBreakdown(events)
	if len(got) != 1 {
		t.Fatalf("breakdown has %d phases, want 1 (unknown)", len(got))
	}
	unknown := got[exposure.PhaseUnknown]
	if unknown.Impressions != 2 || unknown.Qualified != 1 {
		t.Errorf("unknown counts = %+v, want impressions=2 qualified=1", unknown)
	}
}

func TestContextBreakdownEmpty(t *testing.T) {
	got := ContextBreakdown(nil)
	if len(got) != 0 {
		t.Errorf("breakdown of no events has %d entries, want 0", len(got))
	}
}
