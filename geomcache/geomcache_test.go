package geomcache

import (
	"testing"

	"github.com/skyvolume/airspace"
)

func square(id, borderID int64, ordinal int) airspace.Border {
	return airspace.Border{
		ID: borderID, AirspaceID: id, Ordinal: ordinal,
		Vertices: []airspace.Vertex{
			{Ordinal: 0, Lat: 0, Lon: 0},
			{Ordinal: 1, Lat: 0, Lon: 1},
			{Ordinal: 2, Lat: 1, Lon: 1},
			{Ordinal: 3, Lat: 1, Lon: 0},
		},
	}
}

func TestAssembleClosesOpenBorder(t *testing.T) {
	a := airspace.Airspace{ID: 1, Borders: []airspace.Border{square(1, 1, 0)}}
	mp := Assemble(a)
	if len(mp) != 1 {
		t.Fatalf("got %d polygons, want 1", len(mp))
	}
	ring := mp[0][0]
	if ring[0] != ring[len(ring)-1] {
		t.Errorf("ring not closed: first %v, last %v", ring[0], ring[len(ring)-1])
	}
}

func TestAssembleDiscardsDegenerateRing(t *testing.T) {
	a := airspace.Airspace{ID: 1, Borders: []airspace.Border{{
		Vertices: []airspace.Vertex{
			{Ordinal: 0, Lat: 0, Lon: 0},
			{Ordinal: 1, Lat: 0, Lon: 1e-10},
		},
	}}}
	if mp := Assemble(a); len(mp) != 0 {
		t.Errorf("expected degenerate ring to be discarded, got %d polygons", len(mp))
	}
}

func TestAssembleHandlesMultipleBordersRegardlessOfInputOrder(t *testing.T) {
	b1 := square(1, 1, 1) // out of order on purpose
	b0 := square(1, 2, 0)
	// scramble b0's vertex order
	b0.Vertices[0], b0.Vertices[2] = b0.Vertices[2], b0.Vertices[0]

	a := airspace.Airspace{ID: 1, Borders: []airspace.Border{b1, b0}}
	mp := Assemble(a)
	if len(mp) != 2 {
		t.Fatalf("got %d polygons, want 2", len(mp))
	}
}

type fakeSource struct {
	airspaces map[int64]*airspace.Airspace
}

func (s fakeSource) GetByID(id int64) (*airspace.Airspace, error) {
	if a, ok := s.airspaces[id]; ok {
		return a, nil
	}
	return nil, nil
}

func TestCachePolygonCachesAcrossCalls(t *testing.T) {
	src := fakeSource{airspaces: map[int64]*airspace.Airspace{
		1: {ID: 1, Borders: []airspace.Border{square(1, 1, 0)}},
	}}
	cache, err := New(10, src)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	mp1, err := cache.Polygon(1)
	if err != nil {
		t.Fatalf("Polygon() error = %v", err)
	}
	if len(mp1) != 1 {
		t.Fatalf("got %d polygons, want 1", len(mp1))
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}

	if _, err := cache.Polygon(1); err != nil {
		t.Fatalf("second Polygon() call error = %v", err)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() after cache hit = %d, want still 1", cache.Len())
	}
}

func TestCachePolygonUnknownAirspace(t *testing.T) {
	src := fakeSource{airspaces: map[int64]*airspace.Airspace{}}
	cache, err := New(10, src)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := cache.Polygon(999); err == nil {
		t.Fatal("expected error for unknown airspace id")
	}
}
