package airspace

import "testing"

func TestNormalizeAirspaceTypeUnknownFallsBackToDOther(t *testing.T) {
	if got := NormalizeAirspaceType("XYZZY"); got != TypeDOther {
		t.Errorf("NormalizeAirspaceType(unknown) = %v, want D-OTHER", got)
	}
	if got := NormalizeAirspaceType("TMA"); got != TypeTMA {
		t.Errorf("NormalizeAirspaceType(TMA) = %v, want TMA", got)
	}
}

func TestAirspaceCritical(t *testing.T) {
	cases := []struct {
		a    Airspace
		want bool
	}{
		{Airspace{Type: TypeP}, true},
		{Airspace{Type: TypeR}, true},
		{Airspace{Type: TypeTMA, Class: "A"}, true},
		{Airspace{Type: TypeTMA, Class: "D"}, false},
		{Airspace{Type: TypeCTR}, false},
	}
	for _, c := range cases {
		if got := c.a.Critical(); got != c.want {
			t.Errorf("Airspace%+v.Critical() = %v, want %v", c.a, got, c.want)
		}
	}
}

func TestAirspaceAltitudeFeetNormalizesUnits(t *testing.T) {
	a := Airspace{
		MinAltitude: 0, MinAltitudeUnit: UnitGround,
		MaxAltitude: 100, MaxAltitudeUnit: UnitFlightLevel,
	}
	if got := a.MinAltitudeFeet(); got != 0 {
		t.Errorf("MinAltitudeFeet() = %v, want 0", got)
	}
	if got := a.MaxAltitudeFeet(); got != 10000 {
		t.Errorf("MaxAltitudeFeet() = %v, want 10000", got)
	}
}
