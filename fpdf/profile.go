// Provides routines to render a flight profile (distance-along-path
// versus altitude) as a PDF, for comparing an input route against its
// corrected output (§6.4).
package fpdf

import (
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/skyvolume/airspace"
)

var (
	BlackRGB = []int{0, 0, 0}
	RedRGB   = []int{0xff, 0, 0}
	GreenRGB = []int{0, 0xff, 0}
	BlueRGB  = []int{0, 0, 0xff}
)

// ProfilePdf renders one or more flight paths onto a shared
// distance/altitude grid, following the axis-mapping and gridline
// conventions of BaseGrid.
type ProfilePdf struct {
	AltitudeMin, AltitudeMax float64
	LengthNM                 float64
	Caption                  string

	Grid         *BaseGrid
	*gofpdf.Fpdf // embedded pointer
}

// {{{ pp.Init

func (g *ProfilePdf) Init() {
	g.Fpdf = gofpdf.New("L", "mm", "Letter", "")
	g.AddPage()
	g.SetFont("Arial", "", 10)

	g.Grid = &BaseGrid{
		Fpdf:            g.Fpdf,
		OffsetU:         20,
		OffsetV:         30,
		W:               250,
		H:               140,
		MinX:            0,
		MaxX:            g.LengthNM,
		MinY:            g.AltitudeMin,
		MaxY:            g.AltitudeMax,
		Clip:            true,
		XGridlineEvery:  10,
		YGridlineEvery:  5000,
		XTickFmt:        "%.0fNM",
		YTickFmt:        "%.0fft",
		XTickOtherSide:  false,
		YTickOtherSide:  true,
		LineColor:       BlackRGB,
	}
}

// }}}
// {{{ pp.DrawFrame, DrawCaption

func (g *ProfilePdf) DrawFrame() {
	g.Grid.DrawGridlines()
}

func (g *ProfilePdf) DrawCaption() {
	g.SetTextColor(0x50, 0x70, 0xc0)
	g.MoveTo(10, 10)
	g.MultiCell(0, 4, g.Caption, "", "", false)
	g.Fpdf.DrawPath("D")
}

// }}}
// {{{ pp.DrawPath

// DrawPath renders one flight path's distance-vs-altitude polyline in
// the given color, and marks each inserted transition waypoint
// (Climb_*/Descent_*) with a small labeled dot, per the naming
// convention of §4.8.
func (g *ProfilePdf) DrawPath(fp airspace.FlightPath, rgb []int) {
	g.SetDrawColor(rgb[0], rgb[1], rgb[2])
	g.SetLineWidth(0.4)

	distNM := 0.0
	for i, wp := range fp.Waypoints {
		if i > 0 {
			prev := fp.Waypoints[i-1]
			prevDistNM := distNM
			distNM += airspace.KMToNM(airspace.GreatCircleKM(prev.Lat, prev.Long, wp.Lat, wp.Long))
			g.Grid.Line(prevDistNM, prev.AltitudeFt, distNM, wp.AltitudeFt)
		}
		if isTransitionWaypoint(wp.ID) {
			g.drawMarker(distNM, wp.AltitudeFt, wp.ID)
		}
	}
}

func (g *ProfilePdf) drawMarker(distNM, altFt float64, label string) {
	u, v, oob := g.Grid.UV(distNM, altFt)
	if oob {
		return
	}
	g.SetFillColor(0, 0, 0)
	g.Circle(u, v, 0.8, "F")
	g.SetFont("Arial", "", 6)
	g.MoveTo(u+1, v-1)
	g.Cell(30, 3, label)
}

func isTransitionWaypoint(id string) bool {
	return strings.HasPrefix(id, "Climb_") || strings.HasPrefix(id, "Descent_")
}

// LegendEntry names one colored swatch drawn by DrawLegend.
type LegendEntry struct {
	RGB   []int
	Label string
}

// DrawLegend draws a small colored line-and-label key in the top-right
// corner of the grid, one row per entry.
func (g *ProfilePdf) DrawLegend(entries []LegendEntry) {
	x := g.Grid.OffsetU + g.Grid.W - 45
	y := g.Grid.OffsetV - 6
	for i, e := range entries {
		ly := y + float64(i)*5
		g.SetDrawColor(e.RGB[0], e.RGB[1], e.RGB[2])
		g.SetLineWidth(0.6)
		g.MoveTo(x, ly)
		g.LineTo(x+8, ly)
		g.Fpdf.DrawPath("D")

		g.SetTextColor(0, 0, 0)
		g.SetFont("Arial", "", 8)
		g.MoveTo(x+10, ly-1.5)
		g.Cell(30, 3, e.Label)
	}
}

// }}}
// {{{ WriteComparison

// WriteComparison renders the original route in black and the
// corrected route in red on the same grid, so a reviewer can see where
// transition waypoints were inserted (§6.4).
func WriteComparison(output io.Writer, original, corrected airspace.FlightPath, caption string) error {
	_, maxFt := corrected.MinMaxAltitudeFt()
	if _, origMax := original.MinMaxAltitudeFt(); origMax > maxFt {
		maxFt = origMax
	}
	lengthNM := airspace.KMToNM(corrected.TotalLengthKM())
	if origLen := airspace.KMToNM(original.TotalLengthKM()); origLen > lengthNM {
		lengthNM = origLen
	}

	pdf := &ProfilePdf{
		AltitudeMin: 0,
		AltitudeMax: maxFt + 1000,
		LengthNM:    lengthNM,
		Caption:     caption,
	}
	pdf.Init()
	pdf.DrawCaption()
	pdf.DrawFrame()
	pdf.DrawPath(original, BlackRGB)
	pdf.DrawPath(corrected, RedRGB)
	pdf.DrawLegend([]LegendEntry{
		{RGB: BlackRGB, Label: "input route"},
		{RGB: RedRGB, Label: "corrected route"},
	})

	return pdf.Output(output)
}

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
