package journey

import "github.com/facet-data/exposure.report/internal/exposure"

// RegionVote is the tally for one region after sample voting.
type RegionVote struct {
	Region exposure.Region
	Hits   int
	Phase  string
}

// DominantRegion tests every sample against every region and returns the
// region collecting the most hits. A sample inside overlapping regions
// counts toward each of them. Hit ties are broken by the lower index of
// the region's parsed phase in the priority list, then by region id, so
// the result does not depend on region ordering. Returns nil when no
// sample falls inside any region.
func DominantRegion(samples []exposure.TrajectorySample, regions []exposure.Region, priority []string) *RegionVote {
	if len(samples) == 0 || len(regions) == 0 {
		return nil
	}
	if len(priority) == 0 {
		priority = exposure.DefaultContextPriority()
	}

	hits := make([]int, len(regions))
	for _, s := range samples {
		for i := range regions {
			if PointInPolygon(s.X, s.Z, regions[i].Vertices) {
				hits[i]++
			}
		}
	}

	best := -1
	bestRank := 0
	for i := range regions {
		if hits[i] == 0 {
			continue
		}
		rank := phaseRank(ParsePhase(regions[i].Name, priority), priority)
		if best < 0 ||
			hits[i] > hits[best] ||
			(hits[i] == hits[best] && rank < bestRank) ||
			(hits[i] == hits[best] && rank == bestRank && regions[i].RegionID < regions[best].RegionID) {
			best, bestRank = i, rank
		}
	}
	if best < 0 {
		return nil
	}
	return &RegionVote{
		Region: regions[best],
		Hits:   hits[best],
		Phase:  ParsePhase(regions[best].Name, priority),
	}
}
