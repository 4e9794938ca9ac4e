// Package aixm streams an AIXM 4.5 XML airspace catalog and extracts
// Airspace/Border/Vertex records without loading the whole document
// into memory (spec §4.2). It uses encoding/xml's token-at-a-time
// decoder: no XML library appears anywhere in the retrieved example
// pack, so this is the grounded stdlib idiom for the job.
package aixm

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/skyvolume/airspace"
	"github.com/skyvolume/airspace/diag"
)

const maxArcVertices = 128

// aseXML, abdXML and avxXML mirror the AIXM 4.5 subset named in §6.1.
// Abd/Avx are modeled as direct children of Ase; the source dataset's
// full cross-referencing scheme (AbdUid/AseUidRef) is out of scope for
// this subset.
type aseXML struct {
	AseUid struct {
		CodeType string `xml:"codeType"`
		CodeId   string `xml:"codeId"`
	} `xml:"AseUid"`
	TxtName          string   `xml:"txtName"`
	CodeClass        string   `xml:"codeClass"`
	CodeDistVerUpper string   `xml:"codeDistVerUpper"`
	ValDistVerUpper  string   `xml:"valDistVerUpper"`
	UomDistVerUpper  string   `xml:"uomDistVerUpper"`
	CodeDistVerLower string   `xml:"codeDistVerLower"`
	ValDistVerLower  string   `xml:"valDistVerLower"`
	UomDistVerLower  string   `xml:"uomDistVerLower"`
	Att              string   `xml:"Att"`
	Remarks          string   `xml:"txtRmk"`
	Abd              []abdXML `xml:"Abd"`
}

type abdXML struct {
	Avx []avxXML `xml:"Avx"`
}

type avxXML struct {
	CodeType     string `xml:"codeType"`
	GeoLat       string `xml:"geoLat"`
	GeoLong      string `xml:"geoLong"`
	GeoLatArc    string `xml:"geoLatArc"`
	GeoLongArc   string `xml:"geoLongArc"`
	ValRadiusArc string `xml:"valRadiusArc"`
}

// Result is the outcome of a full-document extraction: the successfully
// parsed airspaces plus a diagnostics log of skipped/degraded records
// (§7: extraction succeeds if >= 95% of records parsed).
type Result struct {
	Airspaces []airspace.Airspace
	Seen      int
	Diag      diag.Log
}

// SuccessRate is the fraction of encountered Ase records that produced
// a usable Airspace.
func (r Result) SuccessRate() float64 {
	if r.Seen == 0 {
		return 1.0
	}
	return float64(len(r.Airspaces)) / float64(r.Seen)
}

// Extract streams r, extracting one Airspace (with its Borders and
// Vertices) per Ase element encountered. Determinism (§4.2): output
// order matches document order, and ordinals are assigned by document
// position, not by any subsequent sort.
func Extract(r io.Reader) (*Result, error) {
	dec := xml.NewDecoder(r)
	res := &Result{}

	var nextID int64 = 1
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, airspace.NewError(airspace.InputMalformed, "malformed XML", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Ase" {
			continue
		}

		var raw aseXML
		if err := dec.DecodeElement(&raw, &se); err != nil {
			return res, airspace.NewError(airspace.InputMalformed, "malformed Ase element", err)
		}
		res.Seen++

		as, err := convertAse(raw, nextID)
		if err != nil {
			res.Diag.Skipf("Ase %q: %v", raw.AseUid.CodeId, err)
			continue
		}
		nextID++
		res.Airspaces = append(res.Airspaces, *as)
	}

	if res.SuccessRate() < 0.95 {
		return res, airspace.NewError(airspace.DatasetIncomplete,
			fmt.Sprintf("only %.1f%% of Ase records parsed", res.SuccessRate()*100), nil)
	}
	return res, nil
}

func convertAse(raw aseXML, id int64) (*airspace.Airspace, error) {
	if raw.AseUid.CodeId == "" {
		return nil, fmt.Errorf("missing AseUid/codeId")
	}

	as := &airspace.Airspace{
		ID:              id,
		Code:            raw.AseUid.CodeId,
		Type:            airspace.NormalizeAirspaceType(raw.AseUid.CodeType),
		Class:           raw.CodeClass,
		Name:            raw.TxtName,
		OperatingHours:  raw.Att,
		Remarks:         raw.Remarks,
		MinAltitude:     0,
		MinAltitudeUnit: airspace.UnitGround,
		MaxAltitude:     0,
		MaxAltitudeUnit: airspace.UnitUnlimited,
	}

	if raw.ValDistVerLower != "" {
		v, unit, err := parseAltitude(raw.CodeDistVerLower, raw.ValDistVerLower, raw.UomDistVerLower)
		if err != nil {
			return nil, fmt.Errorf("lower altitude: %w", err)
		}
		as.MinAltitude, as.MinAltitudeUnit = v, unit
	}
	if raw.ValDistVerUpper != "" {
		v, unit, err := parseAltitude(raw.CodeDistVerUpper, raw.ValDistVerUpper, raw.UomDistVerUpper)
		if err != nil {
			return nil, fmt.Errorf("upper altitude: %w", err)
		}
		as.MaxAltitude, as.MaxAltitudeUnit = v, unit
	}

	for bi, abd := range raw.Abd {
		border, err := convertAbd(abd, id, bi)
		if err != nil {
			// A malformed coordinate anywhere in the Ase drops the whole
			// record, not just this border (§4.2's partial-failure
			// isolation is per-Ase, not per-border).
			return nil, fmt.Errorf("border %d: %w", bi, err)
		}
		as.Borders = append(as.Borders, *border)
	}

	if err := as.Validate(); err != nil {
		return nil, err
	}
	return as, nil
}

// parseAltitude maps codeDistVer/valDistVer/uomDistVer onto a
// (value, unit) pair. codeDistVer of "STD" means a flight level;
// "HEI" means AGL, kept as UnitFeet with the AGL/HEI conversion
// deferred to the elevation oracle at volume-materialization time
// (§6.1, §9).
func parseAltitude(code, val, uom string) (float64, airspace.AltitudeUnit, error) {
	switch strings.ToUpper(code) {
	case "STD":
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, 0, err
		}
		return v, airspace.UnitFlightLevel, nil
	}
	switch strings.ToUpper(val) {
	case "GND":
		return 0, airspace.UnitGround, nil
	case "UNL":
		return 0, airspace.UnitUnlimited, nil
	}
	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, 0, err
	}
	return v, airspace.ParseAltitudeUnit(uom), nil
}

func convertAbd(abd abdXML, airspaceID int64, ordinal int) (*airspace.Border, error) {
	border := &airspace.Border{AirspaceID: airspaceID, Ordinal: ordinal}

	var prev *avxXML
	for vi, avx := range abd.Avx {
		lat, err := parseDMS(avx.GeoLat, true)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", vi, err)
		}
		lon, err := parseDMS(avx.GeoLong, false)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", vi, err)
		}

		switch strings.ToUpper(avx.CodeType) {
		case "CWA", "CCA":
			if prev == nil {
				return nil, fmt.Errorf("vertex %d: arc has no preceding point", vi)
			}
			prevLat, _ := parseDMS(prev.GeoLat, true)
			prevLon, _ := parseDMS(prev.GeoLong, false)
			centerLat, err := parseDMS(avx.GeoLatArc, true)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %w", vi, err)
			}
			centerLon, err := parseDMS(avx.GeoLongArc, false)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %w", vi, err)
			}
			radiusKM, err := parseArcRadius(avx.ValRadiusArc)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %w", vi, err)
			}
			clockwise := strings.ToUpper(avx.CodeType) == "CWA"
			pts := rasterizeArc(centerLat, centerLon, prevLat, prevLon, lat, lon, radiusKM, clockwise)
			for _, p := range pts[1:] {
				border.Vertices = append(border.Vertices, airspace.Vertex{
					BorderID: border.ID, Ordinal: len(border.Vertices), Lat: p[0], Lon: p[1],
				})
			}
		default:
			// GRC (great circle), FNT (boundary-following, rasterized as a
			// great-circle segment per the §9 open-question decision) and
			// any other code just add the endpoint directly. A CWA/CCA
			// without a parseable center never reaches here: the arc case
			// above rejects it.
			border.Vertices = append(border.Vertices, airspace.Vertex{
				BorderID: border.ID, Ordinal: len(border.Vertices), Lat: lat, Lon: lon,
			})
		}

		avxCopy := avx
		prev = &avxCopy
	}

	if len(border.Vertices) == 0 {
		return nil, fmt.Errorf("no vertices")
	}
	for _, v := range border.Vertices {
		if !v.Valid() {
			return nil, fmt.Errorf("vertex out of WGS-84 range: %v", v)
		}
	}
	return border, nil
}

// rasterizeArc produces line-segment points from start to end around
// center, at >= 1 vertex/degree of arc, capped at 128 vertices (§4.2).
func rasterizeArc(centerLat, centerLon, startLat, startLon, endLat, endLon, radiusKM float64, clockwise bool) [][2]float64 {
	startBearing := airspace.BearingDeg(centerLat, centerLon, startLat, startLon)
	endBearing := airspace.BearingDeg(centerLat, centerLon, endLat, endLon)

	diff := endBearing - startBearing
	for diff <= 0 {
		diff += 360
	}
	for diff > 360 {
		diff -= 360
	}
	if !clockwise {
		diff = diff - 360
	}

	steps := int(math.Ceil(math.Abs(diff)))
	if steps < 1 {
		steps = 1
	}
	if steps > maxArcVertices-1 {
		steps = maxArcVertices - 1
	}

	pts := make([][2]float64, 0, steps+1)
	pts = append(pts, [2]float64{startLat, startLon})
	for s := 1; s <= steps; s++ {
		b := startBearing + diff*float64(s)/float64(steps)
		la, lo := airspace.Destination(centerLat, centerLon, b, radiusKM)
		pts = append(pts, [2]float64{la, lo})
	}
	return pts
}

func parseArcRadius(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	return airspace.NMToKM(v), nil
}

// parseDMS parses an AIXM DMS coordinate string ("484500N",
// "0022300.00E") into decimal degrees.
func parseDMS(s string, isLat bool) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty coordinate")
	}
	hemi := s[len(s)-1]
	numeric := s[:len(s)-1]

	var degLen int
	if isLat {
		degLen = 2
	} else {
		degLen = 3
	}
	if len(numeric) < degLen+4 {
		return 0, fmt.Errorf("malformed DMS coordinate %q", s)
	}

	deg, err := strconv.ParseFloat(numeric[:degLen], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed DMS degrees in %q: %w", s, err)
	}
	min, err := strconv.ParseFloat(numeric[degLen:degLen+2], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed DMS minutes in %q: %w", s, err)
	}
	sec, err := strconv.ParseFloat(numeric[degLen+2:], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed DMS seconds in %q: %w", s, err)
	}

	val := deg + min/60 + sec/3600
	switch hemi {
	case 'S', 'W', 's', 'w':
		val = -val
	case 'N', 'E', 'n', 'e':
		// no-op
	default:
		return 0, fmt.Errorf("unrecognized hemisphere in %q", s)
	}
	return val, nil
}
