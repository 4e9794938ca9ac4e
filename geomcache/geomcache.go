// Package geomcache assembles an Airspace's stored borders/vertices
// into ring geometry and caches the result behind a bounded LRU
// (spec §4.4). The LRU choice is grounded on mmp-vice's go.mod, which
// requires github.com/hashicorp/golang-lru/v2 directly; ring/area math
// uses github.com/paulmach/orb/planar, exercised in-pack by
// mmp-vice/misc/airspace.go and the paulcager-gb-airspace reference.
package geomcache

import (
	"math"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/skyvolume/airspace"
)

// closeTolerance is the degrees-apart threshold below which a border's
// first and last vertex are considered already closed (§4.4).
const closeTolerance = 1e-7

// minRingAreaDeg2 is the oriented-area threshold below which an
// assembled ring is discarded as degenerate (§4.4).
const minRingAreaDeg2 = 1e-12

// Source is the minimal read interface geomcache needs from an
// airspace store: fetch one airspace, with its borders and vertices,
// by id.
type Source interface {
	GetByID(id int64) (*airspace.Airspace, error)
}

// Cache is an LRU of assembled polygons, keyed by airspace id. Entries
// are immutable once built; eviction is strictly LRU (§4.4).
type Cache struct {
	lru    *lru.Cache[int64, orb.MultiPolygon]
	source Source
}

// New creates a Cache of the given size backed by source. Size is
// tunable per §6.6's geometry_cache_size option (default 1024).
func New(size int, source Source) (*Cache, error) {
	c, err := lru.New[int64, orb.MultiPolygon](size)
	if err != nil {
		return nil, airspace.NewError(airspace.Internal, "create geometry cache", err)
	}
	return &Cache{lru: c, source: source}, nil
}

// Polygon returns the assembled multi-polygon for airspaceID, building
// and caching it on first access.
func (c *Cache) Polygon(airspaceID int64) (orb.MultiPolygon, error) {
	if mp, ok := c.lru.Get(airspaceID); ok {
		return mp, nil
	}

	a, err := c.source.GetByID(airspaceID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, airspace.NewError(airspace.Internal, "no such airspace", nil)
	}

	mp := Assemble(*a)
	c.lru.Add(airspaceID, mp)
	return mp, nil
}

// Len returns the number of polygons currently cached.
func (c *Cache) Len() int { return c.lru.Len() }

// Assemble builds a (possibly multi-) polygon from an airspace's
// borders and vertices, per the assembly rules of §4.4. It never
// touches the cache; callers needing caching should use Cache.Polygon.
func Assemble(a airspace.Airspace) orb.MultiPolygon {
	borders := make([]airspace.Border, len(a.Borders))
	copy(borders, a.Borders)
	sort.Slice(borders, func(i, j int) bool { return borders[i].Ordinal < borders[j].Ordinal })

	var mp orb.MultiPolygon
	for _, b := range borders {
		ring := assembleRing(b)
		if ring == nil {
			continue
		}
		mp = append(mp, orb.Polygon{ring})
	}
	return mp
}

func assembleRing(b airspace.Border) orb.Ring {
	verts := make([]airspace.Vertex, len(b.Vertices))
	copy(verts, b.Vertices)
	sort.Slice(verts, func(i, j int) bool { return verts[i].Ordinal < verts[j].Ordinal })

	if len(verts) < 2 {
		return nil
	}

	ring := make(orb.Ring, 0, len(verts)+1)
	for _, v := range verts {
		ring = append(ring, orb.Point{v.Lon, v.Lat})
	}

	first, last := ring[0], ring[len(ring)-1]
	if math.Abs(first[0]-last[0]) > closeTolerance || math.Abs(first[1]-last[1]) > closeTolerance {
		ring = append(ring, first)
	}

	if len(ring) < 4 { // closed ring of < 3 distinct vertices
		return nil
	}
	if math.Abs(planar.Area(ring)) < minRingAreaDeg2 {
		return nil
	}
	return ring
}
