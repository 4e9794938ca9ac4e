package airspace

import "time"

// AirspaceType is the closed set of AIXM airspace category codes this
// system understands. Anything the parser can't map collapses to
// TypeDOther, preserving the "other danger area" semantics of the
// source dataset (§4.2).
type AirspaceType string

const (
	TypeRAS     AirspaceType = "RAS"
	TypeTMA     AirspaceType = "TMA"
	TypeCTR     AirspaceType = "CTR"
	TypeR       AirspaceType = "R"
	TypeD       AirspaceType = "D"
	TypeP       AirspaceType = "P"
	TypeCTA     AirspaceType = "CTA"
	TypeDOther  AirspaceType = "D-OTHER"
	TypeOther   AirspaceType = "OTHER"
)

var knownAirspaceTypes = map[string]AirspaceType{
	"RAS": TypeRAS, "TMA": TypeTMA, "CTR": TypeCTR, "R": TypeR,
	"D": TypeD, "P": TypeP, "CTA": TypeCTA, "D-OTHER": TypeDOther,
}

// NormalizeAirspaceType maps a raw AIXM codeType string onto the
// closed set, defaulting unknown values to D-OTHER per §4.2.
func NormalizeAirspaceType(raw string) AirspaceType {
	if t, ok := knownAirspaceTypes[raw]; ok {
		return t
	}
	return TypeDOther
}

// Airspace is a volume of controlled or restricted air, as extracted
// from a single Ase element (§3).
type Airspace struct {
	ID   int64
	Code string // AseUid/codeId, e.g. "LFR35A"
	Type AirspaceType
	Class string // optional single-letter airspace class, e.g. "A"
	Name  string

	MinAltitude     float64
	MinAltitudeUnit AltitudeUnit
	MaxAltitude     float64
	MaxAltitudeUnit AltitudeUnit

	OperatingHours string
	Remarks        string

	CreatedAt time.Time
	UpdatedAt time.Time

	Borders []Border
}

// MinAltitudeFeet and MaxAltitudeFeet normalize the stored value/unit
// pairs to feet MSL (UNL -> +Inf).
func (a Airspace) MinAltitudeFeet() float64 { return ToFeet(a.MinAltitude, a.MinAltitudeUnit) }
func (a Airspace) MaxAltitudeFeet() float64 { return ToFeet(a.MaxAltitude, a.MaxAltitudeUnit) }

// Critical reports whether this airspace's type/class puts it in the
// always-highlighted bucket (§3, §4.9): Prohibited, Restricted, or
// Class A.
func (a Airspace) Critical() bool {
	return a.Type == TypeP || a.Type == TypeR || a.Class == "A"
}

// Validate checks the invariants of §3 that don't require geometry:
// min <= max once normalized (UNL treated as +Inf).
func (a Airspace) Validate() error {
	if a.Code == "" {
		return NewError(InputMalformed, "airspace has no code_id", nil)
	}
	if a.MinAltitudeFeet() > a.MaxAltitudeFeet() {
		return NewError(InputMalformed,
			"airspace "+a.Code+": min_altitude > max_altitude after normalization", nil)
	}
	return nil
}

// Border is one closed or open arc of an airspace's boundary (§3).
type Border struct {
	ID         int64
	AirspaceID int64
	Ordinal    int
	Vertices   []Vertex
}

// Vertex is a single WGS-84 point within a Border, in assembly order.
type Vertex struct {
	ID       int64
	BorderID int64
	Ordinal  int
	Lat, Lon float64
}

// Valid reports whether the vertex's coordinates lie within the WGS-84
// ranges required by §3.
func (v Vertex) Valid() bool {
	return v.Lat >= -90 && v.Lat <= 90 && v.Lon >= -180 && v.Lon <= 180
}

// ParseOperatingHoursHint recognizes the common AIXM Att operating-hour
// tokens for the reporting summary (§9/original_source supplement); it
// never rejects an unrecognized string, since OperatingHours is kept as
// free text per spec.
func ParseOperatingHoursHint(raw string) string {
	switch raw {
	case "H24":
		return "continuous"
	case "HX":
		return "variable"
	case "HO":
		return "operational hours"
	case "HJ":
		return "sunrise to sunset"
	case "HN":
		return "sunset to sunrise"
	case "NOTAM":
		return "by NOTAM"
	default:
		return "unspecified"
	}
}
