package geo

import "math"

// metersPerDegreeLat converts a radius in meters to an approximate cell size in
// degrees of latitude, matching the bounding-box trick used across the
// pack's geospatial helpers: ~111,320 meters per degree of latitude. A
// degree of longitude covers fewer meters the farther from the equator
// (scaled by cos(lat)), so longitude cell size is derived per-point from
// this same constant rather than reused directly.
const metersPerDegreeLat = 111320.0

// minCosLat floors the cos(lat) factor used to size longitude cells,
// avoiding a divide-by-near-zero blowup at latitudes approaching the
// poles (never reached by a metropolitan bus network, but keeps keyFor
// well-defined everywhere).
const minCosLat = 0.01

type cellKey struct {
	x, y int
}

// Grid buckets points into radius-sized lat/lng cells so that a
// within-radius query only has to scan the 3x3 neighborhood of cells
// around the query point instead of every point in the index. This
// replaces the reference implementation's O(n) scan per query (spec.md
// §9's scalability note) with an O(points-per-cell) lookup.
type Grid struct {
	cellSize float64 // degrees of latitude per cell
	buckets  map[cellKey][]int
	lats     map[int]float64
	lngs     map[int]float64
}

// NewGrid builds an index over stop ids with the given radius in meters
// used as the cell size.
func NewGrid(radiusMeters float64, lat, lng map[int]float64) *Grid {
	cellSize := radiusMeters / metersPerDegreeLat
	if cellSize <= 0 {
		cellSize = 1.0
	}
	g := &Grid{
		cellSize: cellSize,
		buckets:  make(map[cellKey][]int),
		lats:     lat,
		lngs:     lng,
	}
	for id, la := range lat {
		ln := lng[id]
		k := g.keyFor(la, ln)
		g.buckets[k] = append(g.buckets[k], id)
	}
	return g
}

// keyFor buckets (lat, lng) using a cell that covers roughly cellSize
// degrees of latitude and cellSize/cos(lat) degrees of longitude, so the
// cell spans about the same east-west and north-south distance at the
// point's latitude rather than reusing the latitude-degree cell width
// for longitude, which would undercover longitude away from the equator.
func (g *Grid) keyFor(lat, lng float64) cellKey {
	cos := math.Cos(lat * math.Pi / 180)
	if cos < minCosLat {
		cos = minCosLat
	}
	lngCellSize := g.cellSize / cos
	return cellKey{
		x: int(math.Floor(lat / g.cellSize)),
		y: int(math.Floor(lng / lngCellSize)),
	}
}

// Within returns every indexed id within radiusMeters of (lat, lng),
// excluding excludeID, along with its distance.
func (g *Grid) Within(lat, lng float64, radiusMeters float64, excludeID int) []struct {
	ID       int
	Distance float64
} {
	center := g.keyFor(lat, lng)
	var out []struct {
		ID       int
		Distance float64
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			k := cellKey{x: center.x + dx, y: center.y + dy}
			for _, id := range g.buckets[k] {
				if id == excludeID {
					continue
				}
				d := Haversine(lat, lng, g.lats[id], g.lngs[id])
				if d <= radiusMeters {
					out = append(out, struct {
						ID       int
						Distance float64
					}{ID: id, Distance: d})
				}
			}
		}
	}
	return out
}
