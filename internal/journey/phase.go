package journey

import (
	"strings"

	"github.com/facet-data/exposure.report/internal/exposure"
)

// fallbackKeywords maps canonical phases to name fragments that imply
// them when no priority-list token appears in a region name. "Till 3"
// should still read as checkout even though nobody named it that.
var fallbackKeywords = []struct {
	phase    string
	keywords []string
}{
	{exposure.PhaseQueue, []string{"queue", "register", "line"}},
	{exposure.PhaseCheckout, []string{"check", "payment", "till", "cashier"}},
	{exposure.PhasePromo, []string{"promo", "display", "endcap", "feature"}},
	{exposure.PhaseAisle, []string{"aisle", "shelf", "category", "gondola"}},
	{exposure.PhaseEntrance, []string{"entrance", "entry", "ingress", "lobby"}},
	{exposure.PhaseExit, []string{"exit", "egress"}},
}

// ParsePhase classifies a region's declared name into a canonical journey
// phase. The lowercased name is scanned for every token in the priority
// list; the token whose first occurrence comes earliest in the name wins,
// so "Checkout Queue 1" reads as checkout rather than queue. Position
// ties go to the earlier priority entry. When no priority token occurs,
// the fallback keyword table is scanned the same way. Names matching
// nothing are "other".
func ParsePhase(name string, priority []string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return exposure.PhaseOther
	}
	if len(priority) == 0 {
		priority = exposure.DefaultContextPriority()
	}

	best := exposure.PhaseOther
	bestPos := -1
	for _, phase := range priority {
		token := strings.ToLower(strings.TrimSpace(phase))
		if token == "" {
			continue
		}
		pos := strings.Index(n, token)
		if pos < 0 {
			continue
		}
		if bestPos < 0 || pos < bestPos {
			best, bestPos = phase, pos
		}
	}
	if bestPos >= 0 {
		return best
	}

	for _, entry := range fallbackKeywords {
		for _, kw := range entry.keywords {
			pos := strings.Index(n, kw)
			if pos < 0 {
				continue
			}
			if bestPos < 0 || pos < bestPos {
				best, bestPos = entry.phase, pos
			}
		}
	}
	return best
}

// phaseRank returns the index of phase in the priority list; phases
// absent from the list rank after every listed phase.
func phaseRank(phase string, priority []string) int {
	for i, p := range priority {
		if p == phase {
			return i
		}
	}
	return len(priority)
}
