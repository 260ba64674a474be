package journey

import "github.com/facet-data/exposure.report/internal/exposure"

// PointInPolygon reports whether the floor-plane point (x, z) lies inside
// the polygon described by vertices, using the even-odd ray-casting rule.
// The polygon is treated as closed (last vertex connects back to the
// first) and must be simple. Classification does not depend on winding
// direction. Fewer than three vertices never contain a point.
func PointInPolygon(x, z float64, vertices []exposure.PlanePoint) bool {
	if len(vertices) < 3 {
		return false
	}
	inside := false
	j := len(vertices) - 1
	for i := 0; i < len(vertices); i++ {
		vi, vj := vertices[i], vertices[j]
		if (vi.Z > z) != (vj.Z > z) {
			crossX := (vj.X-vi.X)*(z-vi.Z)/(vj.Z-vi.Z) + vi.X
			if x < crossX {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
