package airspace

import (
	"math"

	"github.com/paulmach/orb"
)

// arcStepDeg is the angular step of every cap and join arc in
// BufferPolyline: 90/8 degrees, i.e. 8 segments per quarter turn (§4.1).
const arcStepDeg = 90.0 / 8.0

func arcPoints(lat, lon, fromDeg, toDeg, radiusKM float64) []orb.Point {
	diff := toDeg - fromDeg
	for diff <= -180 {
		diff += 360
	}
	for diff > 180 {
		diff -= 360
	}
	steps := int(math.Ceil(math.Abs(diff) / arcStepDeg))
	if steps < 1 {
		steps = 1
	}
	pts := make([]orb.Point, 0, steps+1)
	for s := 0; s <= steps; s++ {
		b := fromDeg + diff*float64(s)/float64(steps)
		la, lo := Destination(lat, lon, b, radiusKM)
		pts = append(pts, orb.Point{lo, la})
	}
	return pts
}

// BufferPolyline approximates the Minkowski sum of a geodesic polyline
// with a disc of radius widthNM: a buffer with round caps and round
// joins (§4.1). Every offset point is placed with Destination on the
// sphere; no planar projection is used. Points are in orb's (lon, lat)
// order.
func BufferPolyline(points []orb.Point, widthNM float64) orb.Ring {
	n := len(points)
	if n < 2 {
		return nil
	}
	widthKM := NMToKM(widthNM)

	bearing := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		bearing[i] = BearingDeg(points[i][1], points[i][0], points[i+1][1], points[i+1][0])
	}

	right := make([]orb.Point, 0, n*2)
	for i := 0; i < n; i++ {
		lat, lon := points[i][1], points[i][0]
		switch {
		case i == 0:
			la, lo := Destination(lat, lon, bearing[0]+90, widthKM)
			right = append(right, orb.Point{lo, la})
		case i == n-1:
			la, lo := Destination(lat, lon, bearing[n-2]+90, widthKM)
			right = append(right, orb.Point{lo, la})
		default:
			right = append(right, arcPoints(lat, lon, bearing[i-1]+90, bearing[i]+90, widthKM)...)
		}
	}

	left := make([]orb.Point, 0, n*2)
	for i := n - 1; i >= 0; i-- {
		lat, lon := points[i][1], points[i][0]
		switch {
		case i == n-1:
			la, lo := Destination(lat, lon, bearing[n-2]-90, widthKM)
			left = append(left, orb.Point{lo, la})
		case i == 0:
			la, lo := Destination(lat, lon, bearing[0]-90, widthKM)
			left = append(left, orb.Point{lo, la})
		default:
			left = append(left, arcPoints(lat, lon, bearing[i]-90, bearing[i-1]-90, widthKM)...)
		}
	}

	// Each cap is built from two quarter turns so that it bulges away
	// from the path: through the forward bearing at the end, through the
	// backward bearing at the start.
	endLat, endLon, bEnd := points[n-1][1], points[n-1][0], bearing[n-2]
	endCap := arcPoints(endLat, endLon, bEnd+90, bEnd, widthKM)
	endCap = append(endCap, arcPoints(endLat, endLon, bEnd, bEnd-90, widthKM)[1:]...)
	startLat, startLon, bStart := points[0][1], points[0][0], bearing[0]
	startCap := arcPoints(startLat, startLon, bStart-90, bStart-180, widthKM)
	startCap = append(startCap, arcPoints(startLat, startLon, bStart-180, bStart-270, widthKM)[1:]...)

	ring := make(orb.Ring, 0, len(right)+len(endCap)+len(left)+len(startCap)+1)
	ring = append(ring, right...)
	ring = append(ring, endCap...)
	ring = append(ring, left...)
	ring = append(ring, startCap...)
	ring = append(ring, ring[0])
	return ring
}

// Corridor is a FlightPath expanded into a 3-D buffer volume: a
// geodesic-buffer polygon plus an altitude interval (§3, §4.7).
type Corridor struct {
	Polygon       orb.Polygon
	MinAltitudeFt float64
	MaxAltitudeFt float64
	Path          FlightPath
	WidthNM       float64
	HeightFt      float64
}

// NewCorridor builds a Corridor from a FlightPath and the width/height
// margins of §4.7 (defaults 10 NM / 1000 ft belong to the caller's
// config, not here).
func NewCorridor(fp FlightPath, widthNM, heightFt float64) (*Corridor, error) {
	if err := fp.Validate(); err != nil {
		return nil, err
	}
	pts := make([]orb.Point, len(fp.Waypoints))
	for i, w := range fp.Waypoints {
		pts[i] = orb.Point{w.Long, w.Lat}
	}
	ring := BufferPolyline(pts, widthNM)
	minAlt, maxAlt := fp.MinMaxAltitudeFt()

	return &Corridor{
		Polygon:       orb.Polygon{ring},
		MinAltitudeFt: minAlt - heightFt,
		MaxAltitudeFt: maxAlt + heightFt,
		Path:          fp,
		WidthNM:       widthNM,
		HeightFt:      heightFt,
	}, nil
}

// Bound returns the corridor polygon's minimum bounding rectangle in
// (lon, lat), used as the stage-1 bbox-prune query rectangle (§4.5).
func (c Corridor) Bound() orb.Bound {
	return c.Polygon.Bound()
}

// CrossesAntimeridian reports whether the corridor's bound straddles
// the +/-180 degree line, which requires splitting before querying
// (§4.5).
func (c Corridor) CrossesAntimeridian() bool {
	b := c.Bound()
	return b.Min[0] < -170 && b.Max[0] > 170
}
