// Package kmlio parses flight-path KML input and encodes corrected
// profiles back out. Decoding stays on encoding/xml into small local
// structs, mirroring the aixm package's approach, since
// github.com/twpayne/go-kml (used for encoding) is a document builder,
// not a decoder.
package kmlio

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/skyvolume/airspace"
)

type kmlDoc struct {
	Document struct {
		Placemark []placemarkXML `xml:"Placemark"`
	} `xml:"Document"`
	Placemark []placemarkXML `xml:"Placemark"`
}

type placemarkXML struct {
	Name       string `xml:"name"`
	Point      *coordsXML `xml:"Point"`
	LineString *coordsXML `xml:"LineString"`
}

type coordsXML struct {
	Coordinates string `xml:"coordinates"`
}

const metersToFeet = 3.28084

// ParseRoute parses a KML Placemark sequence into a FlightPath (§6.3).
// Waypoint ids come from each Placemark's <name>.
func ParseRoute(r io.Reader) (*airspace.FlightPath, error) {
	doc, err := decode(r)
	if err != nil {
		return nil, err
	}
	placemarks := allPlacemarks(doc)

	fp := &airspace.FlightPath{}
	for i, pm := range placemarks {
		if pm.Point == nil {
			continue
		}
		lon, lat, altM, hasAlt, err := parseFirstCoordinate(pm.Point.Coordinates)
		if err != nil {
			return nil, airspace.NewError(airspace.InputMalformed, "malformed Point coordinates", err)
		}
		id := pm.Name
		if id == "" {
			id = fmt.Sprintf("WP_%04d", i+1)
		}
		altFt := math.NaN()
		if hasAlt {
			altFt = altM * metersToFeet
		}
		fp.Waypoints = append(fp.Waypoints, waypointAt(id, lat, lon, altFt, pm.Name))
	}

	if err := fp.Validate(); err != nil {
		return nil, err
	}
	return fp, nil
}

// ParseTrace parses a single KML LineString of many points into a
// FlightPath, synthesizing waypoint ids as TRK_0001, ... (§4.6, §6.3).
func ParseTrace(r io.Reader) (*airspace.FlightPath, error) {
	doc, err := decode(r)
	if err != nil {
		return nil, err
	}
	placemarks := allPlacemarks(doc)

	var lineCoords string
	for _, pm := range placemarks {
		if pm.LineString != nil {
			lineCoords = pm.LineString.Coordinates
			break
		}
	}
	if lineCoords == "" {
		return nil, airspace.NewError(airspace.InputMalformed, "no LineString found", nil)
	}

	fp := &airspace.FlightPath{}
	for i, tuple := range strings.Fields(lineCoords) {
		lon, lat, altM, hasAlt, err := parseCoordinateTuple(tuple)
		if err != nil {
			return nil, airspace.NewError(airspace.InputMalformed, "malformed LineString coordinate", err)
		}
		altFt := math.NaN()
		if hasAlt {
			altFt = altM * metersToFeet
		}
		id := fmt.Sprintf("TRK_%04d", i+1)
		fp.Waypoints = append(fp.Waypoints, waypointAt(id, lat, lon, altFt, ""))
	}

	if err := fp.Validate(); err != nil {
		return nil, err
	}
	return fp, nil
}

func decode(r io.Reader) (*kmlDoc, error) {
	var doc kmlDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, airspace.NewError(airspace.InputMalformed, "malformed KML document", err)
	}
	return &doc, nil
}

func allPlacemarks(doc *kmlDoc) []placemarkXML {
	if len(doc.Document.Placemark) > 0 {
		return doc.Document.Placemark
	}
	return doc.Placemark
}

func parseFirstCoordinate(coords string) (lon, lat, altM float64, hasAlt bool, err error) {
	fields := strings.Fields(coords)
	if len(fields) == 0 {
		return 0, 0, 0, false, fmt.Errorf("no coordinates")
	}
	return parseCoordinateTuple(fields[0])
}

func parseCoordinateTuple(tuple string) (lon, lat, altM float64, hasAlt bool, err error) {
	parts := strings.Split(strings.TrimSpace(tuple), ",")
	if len(parts) < 2 {
		return 0, 0, 0, false, fmt.Errorf("malformed coordinate tuple %q", tuple)
	}
	lon, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, 0, false, err
	}
	lat, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, 0, false, err
	}
	if len(parts) >= 3 && parts[2] != "" {
		altM, err = strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return 0, 0, 0, false, err
		}
		hasAlt = true
	}
	return lon, lat, altM, hasAlt, nil
}
