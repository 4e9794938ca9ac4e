package store

import (
	"testing"

	"github.com/skyvolume/airspace"
)

func testAirspace(code string, typ airspace.AirspaceType) airspace.Airspace {
	return airspace.Airspace{
		Code: code, Type: typ, Class: "D", Name: "TEST " + code,
		MinAltitude: 0, MinAltitudeUnit: airspace.UnitGround,
		MaxAltitude: 5000, MaxAltitudeUnit: airspace.UnitFeet,
		Borders: []airspace.Border{{
			Ordinal: 0,
			Vertices: []airspace.Vertex{
				{Ordinal: 0, Lat: 37.0, Lon: -122.0},
				{Ordinal: 1, Lat: 37.0, Lon: -121.0},
				{Ordinal: 2, Lat: 38.0, Lon: -121.5},
			},
		}},
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBulkInsertAndGetByCode(t *testing.T) {
	s := openTestStore(t)
	a := testAirspace("LFR35A", airspace.TypeTMA)
	if err := s.BulkInsert([]airspace.Airspace{a}); err != nil {
		t.Fatalf("BulkInsert() error = %v", err)
	}

	got, err := s.GetByCode("LFR35A")
	if err != nil {
		t.Fatalf("GetByCode() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetByCode() = nil, want a record")
	}
	if got.Name != "TEST LFR35A" || got.Type != airspace.TypeTMA {
		t.Errorf("got %+v, want name TEST LFR35A, type TMA", got)
	}
	if len(got.Borders) != 1 || len(got.Borders[0].Vertices) != 3 {
		t.Errorf("geometry not loaded correctly: %+v", got.Borders)
	}
}

func TestBulkInsertUpsertsByCodeID(t *testing.T) {
	s := openTestStore(t)
	first := testAirspace("EGCTR1", airspace.TypeCTR)
	if err := s.BulkInsert([]airspace.Airspace{first}); err != nil {
		t.Fatalf("BulkInsert() error = %v", err)
	}

	second := testAirspace("EGCTR1", airspace.TypeCTR)
	second.Name = "RENAMED"
	if err := s.BulkInsert([]airspace.Airspace{second}); err != nil {
		t.Fatalf("second BulkInsert() error = %v", err)
	}

	got, err := s.GetByCode("EGCTR1")
	if err != nil {
		t.Fatalf("GetByCode() error = %v", err)
	}
	if got.Name != "RENAMED" {
		t.Errorf("Name = %q, want RENAMED (upsert should replace)", got.Name)
	}

	stats, err := s.GetStatistics()
	if err != nil {
		t.Fatalf("GetStatistics() error = %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("Total = %d, want 1 (no duplicate row from the second insert)", stats.Total)
	}
}

func TestBulkInsertRejectsInvalidAirspace(t *testing.T) {
	s := openTestStore(t)
	bad := testAirspace("", airspace.TypeTMA)
	if err := s.BulkInsert([]airspace.Airspace{bad}); err == nil {
		t.Fatal("expected error for airspace with empty code")
	}
}

func TestSearchByKeywordCaseInsensitiveByDefault(t *testing.T) {
	s := openTestStore(t)
	if err := s.BulkInsert([]airspace.Airspace{testAirspace("ABC1", airspace.TypeTMA)}); err != nil {
		t.Fatalf("BulkInsert() error = %v", err)
	}
	found, err := s.SearchByKeyword("test abc1", false, 10)
	if err != nil {
		t.Fatalf("SearchByKeyword() error = %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("got %d results, want 1", len(found))
	}
}

func TestIterAllWithGeometrySkipsGeometrylessAirspaces(t *testing.T) {
	s := openTestStore(t)
	withGeom := testAirspace("WITHGEOM", airspace.TypeTMA)
	noGeom := testAirspace("NOGEOM", airspace.TypeTMA)
	noGeom.Borders = nil
	if err := s.BulkInsert([]airspace.Airspace{withGeom, noGeom}); err != nil {
		t.Fatalf("BulkInsert() error = %v", err)
	}

	var seen []string
	err := s.IterAllWithGeometry(func(a airspace.Airspace) error {
		seen = append(seen, a.Code)
		return nil
	})
	if err != nil {
		t.Fatalf("IterAllWithGeometry() error = %v", err)
	}
	if len(seen) != 1 || seen[0] != "WITHGEOM" {
		t.Errorf("IterAllWithGeometry() visited %v, want only WITHGEOM", seen)
	}
}

func TestFindWithQueryFiltersByType(t *testing.T) {
	s := openTestStore(t)
	if err := s.BulkInsert([]airspace.Airspace{
		testAirspace("TMA1", airspace.TypeTMA),
		testAirspace("TMA2", airspace.TypeTMA),
		testAirspace("CTR1", airspace.TypeCTR),
	}); err != nil {
		t.Fatalf("BulkInsert() error = %v", err)
	}

	q := NewQuery().Filter("code_type", "=", string(airspace.TypeTMA)).Order("code_id").Limit(10)
	found, err := s.Find(q)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("got %d results, want 2", len(found))
	}
	if found[0].Code != "TMA1" || found[1].Code != "TMA2" {
		t.Errorf("results not ordered by code_id: %q, %q", found[0].Code, found[1].Code)
	}
}

func TestFindWithNoFiltersReturnsEverything(t *testing.T) {
	s := openTestStore(t)
	if err := s.BulkInsert([]airspace.Airspace{
		testAirspace("A1", airspace.TypeTMA),
		testAirspace("A2", airspace.TypeCTR),
	}); err != nil {
		t.Fatalf("BulkInsert() error = %v", err)
	}
	found, err := s.Find(NewQuery())
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(found) != 2 {
		t.Errorf("got %d results, want 2", len(found))
	}
}

func TestGetByIDMissingReturnsNilNotError(t *testing.T) {
	s := openTestStore(t)
	got, err := s.GetByID(9999)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetByID(missing) = %+v, want nil", got)
	}
}
