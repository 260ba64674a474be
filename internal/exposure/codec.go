package exposure

import "encoding/json"

// rawVertex accepts both planar encodings seen in stored region geometry:
// {"x","z"} and the older {"x","depth"} form where depth stands in for z.
type rawVertex struct {
	X     *float64 `json:"x"`
	Z     *float64 `json:"z"`
	Depth *float64 `json:"depth"`
}

// ParseVertices decodes a vertices_json blob into floor-plane points.
// Any malformed input, including a vertex missing its x or its second
// planar axis, degrades to nil: an empty polygon that matches no point.
func ParseVertices(raw []byte) []PlanePoint {
	if len(raw) == 0 {
		return nil
	}
	var rvs []rawVertex
	if err := json.Unmarshal(raw, &rvs); err != nil {
		return nil
	}
	pts := make([]PlanePoint, 0, len(rvs))
	for _, rv := range rvs {
		if rv.X == nil {
			return nil
		}
		switch {
		case rv.Z != nil:
			pts = append(pts, PlanePoint{X: *rv.X, Z: *rv.Z})
		case rv.Depth != nil:
			pts = append(pts, PlanePoint{X: *rv.X, Z: *rv.Depth})
		default:
			return nil
		}
	}
	return pts
}

// ParseContext decodes a context_json blob. Returns nil for empty or
// malformed input so unresolved events stay unresolved rather than
// carrying a corrupt tag.
func ParseContext(raw []byte) *Context {
	if len(raw) == 0 {
		return nil
	}
	var c Context
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil
	}
	return &c
}

// ParseBreakdown decodes a bucket's context_breakdown mapping. Malformed
// input degrades to an empty breakdown.
func ParseBreakdown(raw []byte) map[string]PhaseMetrics {
	out := make(map[string]PhaseMetrics)
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return make(map[string]PhaseMetrics)
	}
	return out
}
