package kmlio

import (
	"github.com/skypies/geo"

	"github.com/skyvolume/airspace"
)

func waypointAt(id string, lat, lon, altFt float64, name string) airspace.Waypoint {
	return airspace.Waypoint{
		ID:         id,
		Latlong:    geo.Latlong{Lat: lat, Long: lon},
		AltitudeFt: altFt,
		Name:       name,
	}
}
