package corrector

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/skypies/geo"

	"github.com/skyvolume/airspace"
)

// flatOracle returns a fixed elevation everywhere, for tests that don't
// care about terrain variation.
type flatOracle struct{ elevFt float64 }

func (o flatOracle) ElevationFt(ctx context.Context, lat, lon float64) (float64, error) {
	return o.elevFt, nil
}

func wp(id string, lat, lon, altFt float64) airspace.Waypoint {
	return airspace.Waypoint{ID: id, Latlong: geo.Latlong{Lat: lat, Long: lon}, AltitudeFt: altFt}
}

func TestCorrectAnchorsEndpoints(t *testing.T) {
	fp := airspace.FlightPath{Waypoints: []airspace.Waypoint{
		wp("DEP", 37.0, -122.0, 0),
		wp("W1", 37.5, -122.5, 5000),
		wp("ARR", 38.0, -123.0, 0),
	}}

	res, err := Correct(context.Background(), fp, flatOracle{elevFt: 79}, DefaultParams())
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}

	first := res.Path.Waypoints[0]
	last := res.Path.Waypoints[len(res.Path.Waypoints)-1]

	if math.Abs(first.AltitudeFt-1079) > 1 {
		t.Errorf("departure altitude = %f, want ~1079", first.AltitudeFt)
	}
	if math.Abs(last.AltitudeFt-1079) > 1 {
		t.Errorf("arrival altitude = %f, want ~1079", last.AltitudeFt)
	}
}

// TestCorrectClimbNamedAtOrigin exercises the worked example: a branch
// climbing from an anchored departure altitude to a higher waypoint
// altitude produces a transition waypoint named for the branch's start
// waypoint, not its end.
func TestCorrectClimbNamedAtOrigin(t *testing.T) {
	fp := airspace.FlightPath{Waypoints: []airspace.Waypoint{
		wp("W1", 37.0, -122.0, 0),   // anchored to 79+1000=1079ft
		wp("W2", 37.2, -122.0, 1400),
		wp("W3", 37.4, -122.0, 0),   // anchored to 548+1000=1548ft
	}}

	oracle := stepOracle{depFt: 79, arrFt: 548}
	res, err := Correct(context.Background(), fp, oracle, DefaultParams())
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}

	found := false
	for _, w := range res.Path.Waypoints {
		if w.ID == "Climb_W1_1400" {
			found = true
		}
	}
	if !found {
		names := []string{}
		for _, w := range res.Path.Waypoints {
			names = append(names, w.ID)
		}
		t.Errorf("expected a Climb_W1_1400 waypoint, got %s", strings.Join(names, ","))
	}

	if len(res.BranchReport.Branches) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(res.BranchReport.Branches))
	}
	if res.BranchReport.Branches[0].Action != airspace.Climb {
		t.Errorf("branch 0 action = %s, want CLIMB", res.BranchReport.Branches[0].Action)
	}
}

func TestCorrectDescentReachesTargetAtBranchEnd(t *testing.T) {
	// W1 and W4 are the path's endpoints and get overwritten by the
	// terrain anchor, so the descent under test lives in the middle
	// branch (W2->W3), whose altitudes are left untouched.
	fp := airspace.FlightPath{Waypoints: []airspace.Waypoint{
		wp("W1", 37.0, -122.0, 0),
		wp("W2", 37.3, -122.0, 10000),
		wp("W3", 37.6, -122.0, 2000),
		wp("W4", 38.0, -122.0, 0),
	}}

	oracle := stepOracle{depFt: 79, arrFt: 79}
	res, err := Correct(context.Background(), fp, oracle, DefaultParams())
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}

	b := res.BranchReport.Branches[1]
	if b.Action != airspace.Descent {
		t.Fatalf("branch 1 action = %s, want DESCENT", b.Action)
	}

	todIdx, w3Idx := -1, -1
	for i, w := range res.Path.Waypoints {
		switch w.ID {
		case "Descent_10000_W3":
			todIdx = i
		case "W3":
			w3Idx = i
		}
	}
	if todIdx == -1 {
		t.Fatalf("expected a Descent_10000_W3 waypoint")
	}
	if w3Idx == -1 {
		t.Fatalf("expected the branch-end waypoint W3 to survive in the output path")
	}
	if todIdx >= w3Idx {
		t.Fatalf("top-of-descent waypoint (index %d) must come before the branch end W3 (index %d)", todIdx, w3Idx)
	}

	tod := res.Path.Waypoints[todIdx]
	if math.Abs(tod.AltitudeFt-10000) > 1 {
		t.Errorf("top-of-descent altitude = %f, want ~10000 (still at cruise, the branch's From altitude)", tod.AltitudeFt)
	}

	w3 := res.Path.Waypoints[w3Idx]
	if math.Abs(w3.AltitudeFt-2000) > 1 {
		t.Errorf("W3 altitude = %f, want 2000 (the lower altitude is reached exactly at the branch end)", w3.AltitudeFt)
	}
}

func TestCorrectIsIdempotent(t *testing.T) {
	fp := airspace.FlightPath{Waypoints: []airspace.Waypoint{
		wp("W1", 37.0, -122.0, 0),
		wp("W2", 37.5, -122.5, 5000),
		wp("W3", 38.0, -123.0, 0),
	}}
	oracle := stepOracle{depFt: 79, arrFt: 79}

	res1, err := Correct(context.Background(), fp, oracle, DefaultParams())
	if err != nil {
		t.Fatalf("Correct (pass 1): %v", err)
	}
	res2, err := Correct(context.Background(), res1.Path, oracle, DefaultParams())
	if err != nil {
		t.Fatalf("Correct (pass 2): %v", err)
	}

	if len(res1.Path.Waypoints) != len(res2.Path.Waypoints) {
		t.Errorf("second pass changed waypoint count: %d vs %d",
			len(res1.Path.Waypoints), len(res2.Path.Waypoints))
	}
}

// stepOracle returns depFt for points south of 37.3N and arrFt for all
// others; Correct only ever queries the departure and arrival endpoints.
type stepOracle struct{ depFt, arrFt float64 }

func (o stepOracle) ElevationFt(ctx context.Context, lat, lon float64) (float64, error) {
	// Correct queries departure first, then arrival; distinguish by
	// which endpoint is nearer.
	if lat < 37.3 {
		return o.depFt, nil
	}
	return o.arrFt, nil
}
