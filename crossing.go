package airspace

// Crossing is one airspace the corridor traverses (§3, §6.4).
type Crossing struct {
	AirspaceID       int64
	Code             string
	Name             string
	Type             AirspaceType
	Class            string
	MinAltitudeFt    float64
	MaxAltitudeFt    float64
	DistanceAlongKM  float64
	EntryAltitudeFt  float64
	ExitAltitudeFt   float64
	Critical         bool
}

// CrossingsByDistanceThenID sorts crossings per the §4.5 determinism
// requirement: (distance_along_path_km, airspace_id).
type CrossingsByDistanceThenID []Crossing

func (c CrossingsByDistanceThenID) Len() int      { return len(c) }
func (c CrossingsByDistanceThenID) Swap(i, j int) { c[i], c[j] = c[j], c[i] }
func (c CrossingsByDistanceThenID) Less(i, j int) bool {
	if c[i].DistanceAlongKM != c[j].DistanceAlongKM {
		return c[i].DistanceAlongKM < c[j].DistanceAlongKM
	}
	return c[i].AirspaceID < c[j].AirspaceID
}
