// Command correct reads a flight route, applies the climb/descent
// transition-point correction of §4.8, and writes the corrected route
// as KML plus a branch report (§6.5).
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/skyvolume/airspace"
	"github.com/skyvolume/airspace/bqexport"
	"github.com/skyvolume/airspace/config"
	"github.com/skyvolume/airspace/corrector"
	"github.com/skyvolume/airspace/elevation"
	"github.com/skyvolume/airspace/fpdf"
	"github.com/skyvolume/airspace/kmlio"
)

var (
	routeKML      = flag.String("route", "", "path to a KML input route")
	outKML        = flag.String("out", "", "path to write corrected KML (default: stdout)")
	elevationURL  = flag.String("elevation_url", "", "terrain elevation oracle base URL (default: public Open Elevation API)")
	pdfPath       = flag.String("pdf", "", "path to write a before/after altitude-profile chart (skipped if empty)")
	runID         = flag.String("run_id", "", "identifier used to scope archived objects (default: derived from -route)")
	archiveBucket = flag.String("archive_bucket", "", "cloud storage bucket to archive the input/corrected KML pair to (skipped if empty)")
	opts          = config.Defaults()
)

func init() {
	opts.RegisterFlags(flag.CommandLine)
	flag.Parse()
}

// exit codes per §6.6: 0 success, 2 invalid input, 5 network failure.
func main() {
	os.Exit(run())
}

func run() int {
	if *routeKML == "" {
		fmt.Fprintln(os.Stderr, "correct: -route is required")
		return 2
	}

	inputBytes, err := os.ReadFile(*routeKML)
	if err != nil {
		fmt.Fprintf(os.Stderr, "correct: %v\n", err)
		return 2
	}

	fp, err := kmlio.ParseRoute(bytes.NewReader(inputBytes))
	if err != nil {
		fmt.Fprintf(os.Stderr, "correct: %v\n", err)
		return 2
	}

	base := elevation.NewOpenElevationOracle(*elevationURL, time.Duration(opts.ElevationTimeoutS)*time.Second)
	budgeted := elevation.NewBudgeted(base, time.Duration(opts.ElevationBudgetS)*time.Second)

	params := corrector.Params{
		ClimbRateFtpm:   opts.ClimbRateFtpm,
		DescentRateFtpm: opts.DescentRateFtpm,
		GroundSpeedKt:   opts.GroundSpeedKt,
	}

	result, err := corrector.Correct(context.Background(), *fp, budgeted, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "correct: %v\n", err)
		if kindOf(err) == airspace.NetworkUnavailable || kindOf(err) == airspace.Timeout {
			return 5
		}
		return 2
	}
	if result.ElevationEstimated {
		fmt.Fprintln(os.Stderr, "correct: warning: elevation lookup degraded (network failure, timeout or exhausted budget), some endpoints used a 0ft fallback")
	}

	var correctedKML bytes.Buffer
	if err := kmlio.WriteCorrected(&correctedKML, result.Path); err != nil {
		fmt.Fprintf(os.Stderr, "correct: %v\n", err)
		return 2
	}

	out := io.Writer(os.Stdout)
	if *outKML != "" {
		w, err := os.Create(*outKML)
		if err != nil {
			fmt.Fprintf(os.Stderr, "correct: %v\n", err)
			return 2
		}
		defer w.Close()
		out = w
	}
	if _, err := out.Write(correctedKML.Bytes()); err != nil {
		fmt.Fprintf(os.Stderr, "correct: %v\n", err)
		return 2
	}

	for _, b := range result.BranchReport.Branches {
		fmt.Fprintln(os.Stderr, b.String())
	}

	if *pdfPath != "" {
		pf, err := os.Create(*pdfPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "correct: %v\n", err)
			return 2
		}
		defer pf.Close()
		if err := fpdf.WriteComparison(pf, *fp, result.Path, *routeKML); err != nil {
			fmt.Fprintf(os.Stderr, "correct: %v\n", err)
			return 2
		}
	}

	if *archiveBucket != "" {
		if err := archiveRoutePair(inputBytes, correctedKML.Bytes()); err != nil {
			fmt.Fprintf(os.Stderr, "correct: %v\n", err)
			return 5
		}
	}

	return 0
}

func archiveRoutePair(input, corrected []byte) error {
	id := *runID
	if id == "" {
		id = filepath.Base(*routeKML)
	}

	ctx := context.Background()
	arc, err := bqexport.NewArchiver(ctx, *archiveBucket)
	if err != nil {
		return err
	}
	defer arc.Close()

	if err := arc.Put(ctx, id, "input.kml", bytes.NewReader(input)); err != nil {
		return err
	}
	return arc.Put(ctx, id, "corrected.kml", bytes.NewReader(corrected))
}

func kindOf(err error) airspace.ErrorKind {
	if e, ok := err.(*airspace.Error); ok {
		return e.Kind
	}
	return airspace.Internal
}
