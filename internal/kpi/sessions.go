package kpi

import (
	"sort"

	"github.com/facet-data/exposure.report/internal/exposure"
)

// UniqueVisitors counts the visitors behind a bucket's events two ways:
// unique is the number of distinct track keys, sessions the number of
// gap-based visits, where a track begins a new session whenever the gap
// between consecutive event starts exceeds the reset window. unique is
// the canonical visitor metric; sessions is reported alongside it so the
// sessionization is not silently discarded. Events need not be sorted.
func UniqueVisitors(events []*exposure.Event, visitorResetMinutes int) (unique, sessions int) {
	if len(events) == 0 {
		return 0, 0
	}
	resetMs := int64(visitorResetMinutes) * 60 * 1000

	startsByTrack := make(map[string][]int64)
	for _, ev := range events {
		startsByTrack[ev.TrackKey] = append(startsByTrack[ev.TrackKey], ev.StartMs)
	}

	unique = len(startsByTrack)
	for _, starts := range startsByTrack {
		sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })
		sessions++
		for i := 1; i < len(starts); i++ {
			if starts[i]-starts[i-1] > resetMs {
				sessions++
			}
		}
	}
	return unique, sessions
}

// FrequencyAvg is impressions per unique visitor, 0 when there are no
// visitors.
func FrequencyAvg(impressions, uniqueVisitors int) float64 {
	if uniqueVisitors == 0 {
		return 0
	}
	return float64(impressions) / float64(uniqueVisitors)
}
