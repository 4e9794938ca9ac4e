package kmlio

import (
	"io"
	"strings"

	kml "github.com/twpayne/go-kml"

	"github.com/skyvolume/airspace"
)

const feetToMeters = 1.0 / 3.28084

// WriteCorrected emits a KML document for a corrected FlightPath: one
// LineString Placemark for the whole trace, plus one Point Placemark
// per inserted transition waypoint (any waypoint whose id starts with
// "Climb_" or "Descent_", per the naming convention of §4.8), so the
// transitions are visible in the rendered KML (§6.5).
func WriteCorrected(w io.Writer, fp airspace.FlightPath) error {
	coords := make([]kml.Coordinate, len(fp.Waypoints))
	var elements []kml.Element

	for i, wp := range fp.Waypoints {
		coords[i] = kml.Coordinate{Lon: wp.Long, Lat: wp.Lat, Alt: wp.AltitudeFt * feetToMeters}
		if isTransition(wp.ID) {
			elements = append(elements, kml.Placemark(
				kml.Name(wp.ID),
				kml.Description("inserted transition waypoint"),
				kml.Point(
					kml.AltitudeMode(kml.AltitudeModeAbsolute),
					kml.Coordinates(coords[i]),
				),
			))
		}
	}

	track := kml.Placemark(
		kml.Name("corrected track"),
		kml.LineString(
			kml.AltitudeMode(kml.AltitudeModeAbsolute),
			kml.Extrude(false),
			kml.Tessellate(false),
			kml.Coordinates(coords...),
		),
	)

	docElements := append([]kml.Element{kml.Name("Corrected flight profile"), track}, elements...)
	doc := kml.KML(kml.Document(docElements...))

	return doc.WriteIndent(w, "", "  ")
}

func isTransition(id string) bool {
	return strings.HasPrefix(id, "Climb_") || strings.HasPrefix(id, "Descent_")
}
