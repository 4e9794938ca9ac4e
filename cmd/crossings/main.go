// Command crossings loads a flight route, buffers it into a corridor,
// and reports the airspaces it crosses as a JSON array on stdout
// (§4.5, §6.4).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/skyvolume/airspace"
	"github.com/skyvolume/airspace/bqexport"
	"github.com/skyvolume/airspace/config"
	"github.com/skyvolume/airspace/geomcache"
	"github.com/skyvolume/airspace/kmlio"
	"github.com/skyvolume/airspace/report"
	"github.com/skyvolume/airspace/spatial"
	"github.com/skyvolume/airspace/store"
)

var (
	dbPath    = flag.String("db", "airspace.db", "path to the SQLite airspace database")
	routeKML  = flag.String("route", "", "path to a KML route/track file")
	outPath   = flag.String("out", "", "path to write JSON output (default: stdout)")
	summary   = flag.Bool("summary", false, "print a bucketed report to stderr")
	listType  = flag.String("list_type", "", "instead of querying a route, list every stored airspace of this type (e.g. TMA) and exit")
	runID     = flag.String("run_id", "", "identifier stamped onto exported rows (default: derived from -route)")
	bqProject = flag.String("bq_project", "", "GCP project to export crossing rows to (skipped if empty)")
	bqDataset = flag.String("bq_dataset", "", "BigQuery dataset for the crossings export")
	bqTable   = flag.String("bq_table", "crossings", "BigQuery table for the crossings export")
	opts      = config.Defaults()
)

func init() {
	opts.RegisterFlags(flag.CommandLine)
	flag.Parse()
}

type crossingJSON struct {
	AirspaceID      int64   `json:"airspace_id"`
	CodeID          string  `json:"code_id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Class           string  `json:"class"`
	MinAltitudeFt   float64 `json:"min_alt_ft"`
	MaxAltitudeFt   float64 `json:"max_alt_ft"`
	DistanceKM      float64 `json:"distance_km"`
	EntryAltitudeFt float64 `json:"entry_alt_ft"`
	ExitAltitudeFt  float64 `json:"exit_alt_ft"`
	Critical        bool    `json:"critical"`
}

func main() {
	os.Exit(run())
}

func run() int {
	if *listType != "" {
		return runListType()
	}

	if *routeKML == "" {
		fmt.Fprintln(os.Stderr, "crossings: -route is required")
		return 2
	}

	f, err := os.Open(*routeKML)
	if err != nil {
		fmt.Fprintf(os.Stderr, "crossings: %v\n", err)
		return 2
	}
	defer f.Close()

	fp, err := kmlio.ParseRoute(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "crossings: %v\n", err)
		return 2
	}

	corridor, err := airspace.NewCorridor(*fp, opts.CorridorWidthNM, opts.CorridorHeightFt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "crossings: %v\n", err)
		return 2
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "crossings: %v\n", err)
		return 3
	}
	defer db.Close()

	geom, err := geomcache.New(opts.GeometryCacheSize, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "crossings: %v\n", err)
		return 4
	}

	engine, err := spatial.NewEngine(db, geom)
	if err != nil {
		fmt.Fprintf(os.Stderr, "crossings: %v\n", err)
		return 4
	}

	crossings, err := engine.Query(context.Background(), corridor)
	if err != nil {
		fmt.Fprintf(os.Stderr, "crossings: %v\n", err)
		return 4
	}

	rows := make([]crossingJSON, len(crossings))
	for i, c := range crossings {
		rows[i] = crossingJSON{
			AirspaceID:      c.AirspaceID,
			CodeID:          c.Code,
			Name:            c.Name,
			Type:            string(c.Type),
			Class:           c.Class,
			MinAltitudeFt:   c.MinAltitudeFt,
			MaxAltitudeFt:   c.MaxAltitudeFt,
			DistanceKM:      c.DistanceAlongKM,
			EntryAltitudeFt: c.EntryAltitudeFt,
			ExitAltitudeFt:  c.ExitAltitudeFt,
			Critical:        c.Critical,
		}
	}

	out := os.Stdout
	if *outPath != "" {
		w, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "crossings: %v\n", err)
			return 4
		}
		defer w.Close()
		out = w
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		fmt.Fprintf(os.Stderr, "crossings: %v\n", err)
		return 4
	}

	if *summary {
		r := report.New()
		r.AddAll(crossings)
		fmt.Fprint(os.Stderr, r.Summary())
		lines := report.RunSummarizers(r)
		for _, name := range report.ListSummarizers() {
			fmt.Fprintf(os.Stderr, "%s: %s\n", name, lines[name])
		}
	}

	if *bqProject != "" {
		if err := exportToBigQuery(corridor, crossings); err != nil {
			fmt.Fprintf(os.Stderr, "crossings: %v\n", err)
			return 5
		}
	}

	return 0
}

func exportToBigQuery(corridor *airspace.Corridor, crossings []airspace.Crossing) error {
	id := *runID
	if id == "" {
		id = *routeKML
	}

	ctx := context.Background()
	exp, err := bqexport.NewExporter(ctx, *bqProject, *bqDataset, *bqTable)
	if err != nil {
		return err
	}
	defer exp.Close()

	rows := bqexport.ForBigQuery(id, time.Now(), corridor, crossings)
	return exp.Insert(ctx, rows)
}

// runListType answers "what's in the store?" independent of any route,
// via the same Query builder the teacher's db package used for
// datastore lookups (store/query.go), retargeted at SQLite.
func runListType() int {
	db, err := store.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "crossings: %v\n", err)
		return 3
	}
	defer db.Close()

	q := store.NewQuery().Filter("code_type", "=", *listType).Order("code_id")
	found, err := db.Find(q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "crossings: %v\n", err)
		return 4
	}
	for _, a := range found {
		fmt.Printf("%s\t%s\t%.0f-%.0fft\t%s\n", a.Code, a.Type, a.MinAltitudeFeet(), a.MaxAltitudeFeet(), a.Name)
	}
	return 0
}
