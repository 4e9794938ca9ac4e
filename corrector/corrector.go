// Package corrector implements the profile-correction engine of
// spec §4.8: a pure function from (FlightPath, Parameters,
// ElevationOracle) to a corrected FlightPath plus a BranchReport,
// following §9's re-expression of the source's "coroutine-style"
// pipeline as a pure function with all network interaction confined
// behind the oracle interface.
package corrector

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/skypies/geo"

	"github.com/skyvolume/airspace"
	"github.com/skyvolume/airspace/elevation"
)

func isTransitionID(id string) bool {
	return strings.HasPrefix(id, "Climb_") || strings.HasPrefix(id, "Descent_")
}

// Params are the profile corrector's tunable rates (§4.8, §6.6).
type Params struct {
	ClimbRateFtpm   float64
	DescentRateFtpm float64
	GroundSpeedKt   float64
}

func DefaultParams() Params {
	return Params{ClimbRateFtpm: 500, DescentRateFtpm: 500, GroundSpeedKt: 100}
}

func (p Params) groundSpeedKMpm() float64 {
	return airspace.NMToKM(p.GroundSpeedKt) / 60.0
}

// Result is the corrected flight path plus its branch analysis.
type Result struct {
	Path         airspace.FlightPath
	BranchReport airspace.BranchReport
	// ElevationEstimated is set if the terrain oracle degraded (§7)
	// for any endpoint lookup.
	ElevationEstimated bool
}

// Correct anchors the departure/arrival altitudes, partitions the path
// into branches, classifies each branch's own climb/descent/level need
// by comparing its start altitude to its end altitude, and inserts a
// synthetic transition waypoint for every non-level branch (§4.8).
//
// Each branch resolves its own altitude delta: a climb transition is
// placed climb_time*ground_speed from the branch's start, and a
// descent transition is placed so the lower altitude is reached
// exactly at the branch's end — this is what makes
// Climb_<origin>_<target> land on the branch that actually changes
// altitude, matching the naming convention of step 6 and the worked
// example of §8 scenario 4.
func Correct(ctx context.Context, fp airspace.FlightPath, oracle elevation.Oracle, p Params) (*Result, error) {
	if err := fp.Validate(); err != nil {
		return nil, err
	}

	waypoints := make([]airspace.Waypoint, len(fp.Waypoints))
	copy(waypoints, fp.Waypoints)

	result := &Result{}

	// Step 1: anchor endpoints at field_elevation + 1000ft.
	depElevFt, err := oracle.ElevationFt(ctx, waypoints[0].Lat, waypoints[0].Long)
	if err != nil {
		return nil, err
	}
	waypoints[0].AltitudeFt = depElevFt + 1000

	last := len(waypoints) - 1
	arrElevFt, err := oracle.ElevationFt(ctx, waypoints[last].Lat, waypoints[last].Long)
	if err != nil {
		return nil, err
	}
	waypoints[last].AltitudeFt = arrElevFt + 1000

	if b, ok := oracle.(*elevation.Budgeted); ok && b.Estimated {
		result.ElevationEstimated = true
	}

	// Step 2/3/4/5: partition into branches, classify, insert transitions.
	var out []airspace.Waypoint
	out = append(out, waypoints[0])

	var branches []airspace.Branch
	for k := 0; k < len(waypoints)-1; k++ {
		from, to := waypoints[k], waypoints[k+1]
		distKM := airspace.GreatCircleKM(from.Lat, from.Long, to.Lat, to.Long)

		b := airspace.Branch{
			Index:       k,
			FromWaypoint: from,
			ToWaypoint:   to,
			DistanceKM:   distKM,
			TargetAltFt:  from.AltitudeFt,
			FromAltFt:    from.AltitudeFt,
			ToAltFt:      to.AltitudeFt,
		}

		switch {
		case math.IsNaN(from.AltitudeFt) || math.IsNaN(to.AltitudeFt):
			b.Action = airspace.Level
		case to.AltitudeFt > from.AltitudeFt:
			b.Action = airspace.Climb
		case to.AltitudeFt < from.AltitudeFt:
			b.Action = airspace.Descent
		default:
			b.Action = airspace.Level
		}

		// A branch that starts or ends at a synthetic transition waypoint
		// was already resolved by a prior correction pass (a climb ends at
		// its Climb_* point, a descent starts at its Descent_* point); not
		// re-inserting here is what makes Correct idempotent (§8).
		if b.Action != airspace.Level && !isTransitionID(to.ID) && !isTransitionID(from.ID) {
			transition, unreachable := insertTransition(b, p)
			b.Unreachable = unreachable
			if transition != nil {
				out = append(out, *transition)
			}
		}
		branches = append(branches, b)
		out = append(out, to)
	}

	result.Path = airspace.FlightPath{Waypoints: out}
	result.BranchReport = airspace.BranchReport{Branches: branches}
	return result, nil
}

// insertTransition computes the synthetic waypoint for a climbing or
// descending branch (§4.8 step 5, step 6).
func insertTransition(b airspace.Branch, p Params) (*airspace.Waypoint, bool) {
	deltaAlt := math.Abs(b.ToAltFt - b.FromAltFt)
	gsKMpm := p.groundSpeedKMpm()

	var distFromStartKM float64
	var name string
	unreachable := false

	switch b.Action {
	case airspace.Climb:
		climbTimeMin := deltaAlt / p.ClimbRateFtpm
		distFromStartKM = climbTimeMin * gsKMpm
		if distFromStartKM > b.DistanceKM {
			distFromStartKM = b.DistanceKM
			unreachable = true
		}
		name = fmt.Sprintf("Climb_%s_%.0f", b.FromWaypoint.ID, b.ToAltFt)

	case airspace.Descent:
		descentTimeMin := deltaAlt / p.DescentRateFtpm
		distFromEndKM := descentTimeMin * gsKMpm
		distFromStartKM = b.DistanceKM - distFromEndKM
		if distFromStartKM < 0 {
			distFromStartKM = 0
			unreachable = true
		}
		name = fmt.Sprintf("Descent_%.0f_%s", b.FromAltFt, b.ToWaypoint.ID)
	}

	ratio := 0.0
	if b.DistanceKM > 0 {
		ratio = distFromStartKM / b.DistanceKM
	}
	lat := b.FromWaypoint.Lat + (b.ToWaypoint.Lat-b.FromWaypoint.Lat)*ratio
	lon := b.FromWaypoint.Long + (b.ToWaypoint.Long-b.FromWaypoint.Long)*ratio

	// A climb transition marks the point where the branch's destination
	// altitude has already been reached: level cruise at ToAltFt follows
	// it to the branch end. A descent transition marks top-of-descent:
	// the aircraft is still at the cruise (From) altitude there, and
	// only reaches ToAltFt at the branch end. Getting these swapped
	// inverts the descent profile.
	altFt := b.ToAltFt
	if b.Action == airspace.Descent {
		altFt = b.FromAltFt
	}
	wp := airspace.Waypoint{
		ID:         name,
		Latlong:    geo.Latlong{Lat: lat, Long: lon},
		AltitudeFt: altFt,
	}
	return &wp, unreachable
}
