package airspace

import (
	"fmt"
	"math"

	"github.com/skypies/geo"
)

// Waypoint is a single point in a FlightPath: an id, a position, and an
// altitude in feet MSL. It embeds geo.Latlong, the same way the
// teacher's Trackpoint does, so that Lat/Long fields and any geo
// helpers built on them are available directly (trackpoint.go: "so we
// can call all the geo stuff directly").
type Waypoint struct {
	ID   string
	geo.Latlong
	AltitudeFt float64 // NaN if the source altitude was missing (§4.6)
	Name       string
}

func (w Waypoint) String() string {
	return fmt.Sprintf("%s(%.5f,%.5f)@%.0fft", w.ID, w.Lat, w.Long, w.AltitudeFt)
}

// HasAltitude reports whether this waypoint carries a known altitude.
func (w Waypoint) HasAltitude() bool { return !math.IsNaN(w.AltitudeFt) }

// FlightPath is an ordered, immutable-after-load sequence of waypoints
// (§3). Length is always >= 2 for a validly-loaded path.
type FlightPath struct {
	Waypoints []Waypoint
}

// Validate enforces the §4.6 load-time invariants: at least two
// waypoints, and no two adjacent waypoints identical in (lat, lon).
func (fp FlightPath) Validate() error {
	if len(fp.Waypoints) < 2 {
		return NewError(InputMalformed, "flight path needs at least 2 waypoints", nil)
	}
	for i := 0; i+1 < len(fp.Waypoints); i++ {
		a, b := fp.Waypoints[i], fp.Waypoints[i+1]
		if a.Lat == b.Lat && a.Long == b.Long {
			return NewError(InputMalformed,
				fmt.Sprintf("adjacent waypoints %d,%d are identical in (lat,lon)", i, i+1), nil)
		}
	}
	return nil
}

// TotalLengthKM is the arc length of the flight path, summing
// great-circle segment lengths between consecutive waypoints.
func (fp FlightPath) TotalLengthKM() float64 {
	total := 0.0
	for i := 0; i+1 < len(fp.Waypoints); i++ {
		a, b := fp.Waypoints[i], fp.Waypoints[i+1]
		total += GreatCircleKM(a.Lat, a.Long, b.Lat, b.Long)
	}
	return total
}

// MinMaxAltitudeFt returns the minimum and maximum known altitude
// across all waypoints, ignoring any flagged (NaN) values.
func (fp FlightPath) MinMaxAltitudeFt() (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, w := range fp.Waypoints {
		if !w.HasAltitude() {
			continue
		}
		if w.AltitudeFt < min {
			min = w.AltitudeFt
		}
		if w.AltitudeFt > max {
			max = w.AltitudeFt
		}
	}
	return
}

// PointAtDistanceKM walks the polyline from the start and returns the
// interpolated (lat, lon) at the given great-circle arc distance,
// clamping to the endpoints. It is used to sample entry/exit altitudes
// at a corridor boundary crossing (§4.5).
func (fp FlightPath) PointAtDistanceKM(distKM float64) (lat, lon, altFt float64) {
	if distKM <= 0 || len(fp.Waypoints) == 1 {
		w := fp.Waypoints[0]
		return w.Lat, w.Long, w.AltitudeFt
	}
	remaining := distKM
	for i := 0; i+1 < len(fp.Waypoints); i++ {
		a, b := fp.Waypoints[i], fp.Waypoints[i+1]
		segKM := GreatCircleKM(a.Lat, a.Long, b.Lat, b.Long)
		if remaining <= segKM || i == len(fp.Waypoints)-2 {
			ratio := 0.0
			if segKM > 0 {
				ratio = math.Min(remaining/segKM, 1.0)
			}
			lat = a.Lat + (b.Lat-a.Lat)*ratio
			lon = a.Long + (b.Long-a.Long)*ratio
			altFt = a.AltitudeFt + (b.AltitudeFt-a.AltitudeFt)*ratio
			return
		}
		remaining -= segKM
	}
	last := fp.Waypoints[len(fp.Waypoints)-1]
	return last.Lat, last.Long, last.AltitudeFt
}
