package spatial

import (
	"context"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"golang.org/x/sync/errgroup"

	"github.com/skyvolume/airspace"
	"github.com/skyvolume/airspace/geomcache"
)

// AirspaceSource is the minimal read interface the query engine needs
// beyond geometry: airspace metadata (type, class, altitude limits) by
// id.
type AirspaceSource interface {
	GetByID(id int64) (*airspace.Airspace, error)
}

// Engine answers "which airspaces does this corridor cross?" via the
// three-stage pipeline of §4.5: bbox prune, exact polygon intersection,
// altitude interval overlap.
type Engine struct {
	index  *Index
	geom   *geomcache.Cache
	source AirspaceSource
}

// NewEngine builds the spatial index eagerly, at construction, by
// iterating every airspace with geometry from source. The Engine never
// rebuilds it afterwards.
func NewEngine(source interface {
	AirspaceSource
	IterAllWithGeometry(func(airspace.Airspace) error) error
}, geom *geomcache.Cache) (*Engine, error) {
	var items []Item
	err := source.IterAllWithGeometry(func(a airspace.Airspace) error {
		mp := geomcache.Assemble(a)
		if len(mp) == 0 {
			return nil
		}
		b := mp[0].Bound()
		for _, poly := range mp[1:] {
			b = b.Union(poly.Bound())
		}
		items = append(items, Item{ID: a.ID, Bound: b})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Engine{index: BuildSTR(items), geom: geom, source: source}, nil
}

// Query runs the three-stage pipeline for one corridor, splitting at
// the antimeridian if necessary and merging results in the
// deterministic order required by §4.5.
func (e *Engine) Query(ctx context.Context, corridor *airspace.Corridor) ([]airspace.Crossing, error) {
	if corridor.CrossesAntimeridian() {
		left, right := splitAtAntimeridian(*corridor)
		var leftCrossings, rightCrossings []airspace.Crossing
		var err error
		if hasUsablePolygon(&left) {
			leftCrossings, err = e.queryOne(ctx, &left)
			if err != nil {
				return nil, err
			}
		}
		if hasUsablePolygon(&right) {
			rightCrossings, err = e.queryOne(ctx, &right)
			if err != nil {
				return nil, err
			}
		}
		merged := dedupeMerge(leftCrossings, rightCrossings)
		sort.Sort(airspace.CrossingsByDistanceThenID(merged))
		return merged, nil
	}
	crossings, err := e.queryOne(ctx, corridor)
	if err != nil {
		return nil, err
	}
	sort.Sort(airspace.CrossingsByDistanceThenID(crossings))
	return crossings, nil
}

func (e *Engine) queryOne(ctx context.Context, corridor *airspace.Corridor) ([]airspace.Crossing, error) {
	// Stage 1: bbox prune.
	candidateIDs := e.index.Candidates(corridor.Bound())

	type stage2Result struct {
		a   airspace.Airspace
		hit bool
	}
	results := make([]stage2Result, len(candidateIDs))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range candidateIDs {
		i, id := i, id
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			a, err := e.source.GetByID(id)
			if err != nil || a == nil {
				return nil // skip candidate on geometry/metadata error (§7)
			}
			mp, err := e.geom.Polygon(id)
			if err != nil {
				return nil
			}
			if !multiPolygonIntersectsPolygon(mp, corridor.Polygon) {
				return nil
			}
			results[i] = stage2Result{a: *a, hit: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if err == context.Canceled {
			return nil, airspace.NewError(airspace.Cancelled, "query cancelled", err)
		}
		return nil, err
	}

	// Deterministic (id-sorted) merge before stage 3, per §5.
	surviving := make([]airspace.Airspace, 0, len(results))
	for _, r := range results {
		if r.hit {
			surviving = append(surviving, r.a)
		}
	}
	sort.Slice(surviving, func(i, j int) bool { return surviving[i].ID < surviving[j].ID })

	var out []airspace.Crossing
	for _, a := range surviving {
		lo, hi := a.MinAltitudeFeet(), a.MaxAltitudeFeet()
		if !intervalsOverlap(lo, hi, corridor.MinAltitudeFt, corridor.MaxAltitudeFt) {
			continue
		}
		out = append(out, buildCrossing(a, corridor))
	}
	return out, nil
}

func intervalsOverlap(lo1, hi1, lo2, hi2 float64) bool {
	return lo1 <= hi2 && lo2 <= hi1
}

// multiPolygonIntersectsPolygon tests for an *interior* intersection
// between any component of mp and poly; touching only at a vertex or
// along an edge does not count (§4.5).
func multiPolygonIntersectsPolygon(mp orb.MultiPolygon, poly orb.Polygon) bool {
	for _, p := range mp {
		for _, ringA := range p {
			for _, ringB := range poly {
				if ringsIntersect(ringA, ringB) {
					return true
				}
			}
		}
	}
	return false
}

func ringsIntersect(a, b orb.Ring) bool {
	for _, p := range a {
		if planar.RingContains(b, p) {
			return true
		}
	}
	for _, p := range b {
		if planar.RingContains(a, p) {
			return true
		}
	}
	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			if segmentsProperlyIntersect(a[i], a[i+1], b[j], b[j+1]) {
				return true
			}
		}
	}
	return false
}

func orient(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// segmentsProperlyIntersect reports a genuine crossing, excluding the
// collinear/touching-only cases (§4.5's "no interior intersection"
// rule).
func segmentsProperlyIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := orient(p3, p4, p1)
	d2 := orient(p3, p4, p2)
	d3 := orient(p1, p2, p3)
	d4 := orient(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return false
}

func buildCrossing(a airspace.Airspace, corridor *airspace.Corridor) airspace.Crossing {
	// Find the nearest point of the corridor polygon boundary that lies
	// within the airspace, per §4.5; sampled along the underlying path
	// as a practical stand-in for "nearest point of the corridor
	// polygon", since the flight path runs down the corridor's center.
	entryDist, exitDist := nearestEntryExit(a, corridor)
	distKM := entryDist

	_, _, entryAlt := corridor.Path.PointAtDistanceKM(entryDist)
	_, _, exitAlt := corridor.Path.PointAtDistanceKM(exitDist)

	return airspace.Crossing{
		AirspaceID:      a.ID,
		Code:            a.Code,
		Name:            a.Name,
		Type:            a.Type,
		Class:           a.Class,
		MinAltitudeFt:   a.MinAltitudeFeet(),
		MaxAltitudeFt:   a.MaxAltitudeFeet(),
		DistanceAlongKM: distKM,
		EntryAltitudeFt: entryAlt,
		ExitAltitudeFt:  exitAlt,
		Critical:        a.Critical(),
	}
}

// nearestEntryExit walks the flight path and finds the first/last
// sample point at which the airspace polygon (assembled here with
// geomcache.Assemble, bypassing the cache) contains the corridor's
// centerline point, returning arc
// distances for entry/exit. When the whole path lies inside, entry=0
// and exit=path length (§4.5).
func nearestEntryExit(a airspace.Airspace, corridor *airspace.Corridor) (entryKM, exitKM float64) {
	mp := geomcache.Assemble(a)
	total := corridor.Path.TotalLengthKM()
	if len(mp) == 0 {
		return 0, total
	}

	const samples = 200
	firstIn, lastIn := -1, -1
	for s := 0; s <= samples; s++ {
		d := total * float64(s) / float64(samples)
		lat, lon, _ := corridor.Path.PointAtDistanceKM(d)
		if pointInMultiPolygon(mp, orb.Point{lon, lat}) {
			if firstIn == -1 {
				firstIn = s
			}
			lastIn = s
		}
	}
	if firstIn == -1 {
		// Path itself never enters, but the corridor buffer intersects the
		// airspace; report full extent as a conservative fallback.
		return 0, total
	}
	entryKM = total * float64(firstIn) / float64(samples)
	exitKM = total * float64(lastIn) / float64(samples)
	return
}

func pointInMultiPolygon(mp orb.MultiPolygon, p orb.Point) bool {
	for _, poly := range mp {
		if len(poly) == 0 {
			continue
		}
		if planar.RingContains(poly[0], p) {
			return true
		}
	}
	return false
}

// splitAtAntimeridian divides a corridor whose bound straddles +/-180
// into two sub-corridors, each a genuine clip of the corridor polygon
// against one hemisphere (§4.5, §8 scenario 6). Negative longitudes are
// first shifted by +360 so the polygon becomes a single contiguous ring
// with no discontinuity, which is then Sutherland-Hodgman clipped
// against the lon=180 line; the western half is shifted back down by
// 360 afterwards. Without this, a ring straddling +/-180 is
// self-crossing in planar (lon, lat) space and planar.RingContains
// gives unreliable answers.
func splitAtAntimeridian(c airspace.Corridor) (left, right airspace.Corridor) {
	left, right = c, c
	if len(c.Polygon) == 0 {
		return left, right
	}

	shifted := make(orb.Ring, len(c.Polygon[0]))
	for i, p := range c.Polygon[0] {
		lon := p[0]
		if lon < 0 {
			lon += 360
		}
		shifted[i] = orb.Point{lon, p[1]}
	}

	eastRing := clipRingByLongitude(shifted, 180, true) // unshifted: lon <= 180
	westShifted := clipRingByLongitude(shifted, 180, false)
	westRing := make(orb.Ring, len(westShifted))
	for i, p := range westShifted {
		westRing[i] = orb.Point{p[0] - 360, p[1]}
	}

	right.Polygon = orb.Polygon{eastRing}
	left.Polygon = orb.Polygon{westRing}
	return left, right
}

// clipRingByLongitude runs a Sutherland-Hodgman clip of ring against
// the vertical half-plane lon<=at (keepBelow true) or lon>=at
// (keepBelow false), cutting new vertices at the boundary crossings.
func clipRingByLongitude(ring orb.Ring, at float64, keepBelow bool) orb.Ring {
	n := len(ring)
	if n < 3 {
		return nil
	}
	inside := func(p orb.Point) bool {
		if keepBelow {
			return p[0] <= at
		}
		return p[0] >= at
	}
	crossing := func(a, b orb.Point) orb.Point {
		t := (at - a[0]) / (b[0] - a[0])
		return orb.Point{at, a[1] + t*(b[1]-a[1])}
	}

	var out orb.Ring
	for i := 0; i < n; i++ {
		curr, next := ring[i], ring[(i+1)%n]
		currIn, nextIn := inside(curr), inside(next)
		if currIn {
			out = append(out, curr)
			if !nextIn {
				out = append(out, crossing(curr, next))
			}
		} else if nextIn {
			out = append(out, crossing(curr, next))
		}
	}
	if len(out) < 4 {
		return nil
	}
	if out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	return out
}

// hasUsablePolygon reports whether a split half's polygon survived
// clipping with enough vertices to query (a hemisphere with no
// corridor overlap clips down to nothing).
func hasUsablePolygon(c *airspace.Corridor) bool {
	return len(c.Polygon) > 0 && len(c.Polygon[0]) >= 4
}

// dedupeMerge combines two crossing lists, keeping one Crossing per
// distinct airspace id (the antimeridian split can find the same
// airspace from both halves).
func dedupeMerge(a, b []airspace.Crossing) []airspace.Crossing {
	seen := map[int64]bool{}
	var out []airspace.Crossing
	for _, c := range append(append([]airspace.Crossing{}, a...), b...) {
		if seen[c.AirspaceID] {
			continue
		}
		seen[c.AirspaceID] = true
		out = append(out, c)
	}
	return out
}
