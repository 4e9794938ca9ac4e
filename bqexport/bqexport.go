// Package bqexport denormalizes crossing results into flat rows for
// BigQuery analysis, and optionally archives the input/output KML pair
// to cloud storage (§6.4's "optional analytics sink"). Profile-correction
// results are archived as KML only; no BigQuery rows are produced for
// them.
package bqexport

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/skyvolume/airspace"
)

// CrossingForBigQuery is a denormalized representation of one airspace
// crossing produced by a single query run, shaped for import into
// BigQuery: one row per crossing, with the run's identifying fields
// repeated on every row so the table needs no join to be queried.
type CrossingForBigQuery struct {
	RunID     string
	RunAt     time.Time
	CorridorWidthNM  float64
	CorridorHeightFt float64

	AirspaceID      int64
	Code            string
	Name            string
	Type            string
	Class           string
	Critical        bool
	MinAltitudeFt   float64
	MaxAltitudeFt   float64
	DistanceAlongKM float64
	EntryAltitudeFt float64
	ExitAltitudeFt  float64
}

// Save implements bigquery.ValueSaver, per the modern client's insert API.
func (c CrossingForBigQuery) Save() (map[string]bigquery.Value, string, error) {
	return map[string]bigquery.Value{
		"run_id":             c.RunID,
		"run_at":             c.RunAt,
		"corridor_width_nm":  c.CorridorWidthNM,
		"corridor_height_ft": c.CorridorHeightFt,
		"airspace_id":        c.AirspaceID,
		"code":               c.Code,
		"name":               c.Name,
		"type":               c.Type,
		"class":              c.Class,
		"critical":           c.Critical,
		"min_altitude_ft":    c.MinAltitudeFt,
		"max_altitude_ft":    c.MaxAltitudeFt,
		"distance_along_km":  c.DistanceAlongKM,
		"entry_altitude_ft":  c.EntryAltitudeFt,
		"exit_altitude_ft":   c.ExitAltitudeFt,
	}, "", nil
}

// ForBigQuery flattens a query run's crossings into rows, sorted by
// distance-along-path so the exported table reads in flight order.
func ForBigQuery(runID string, runAt time.Time, corridor *airspace.Corridor, crossings []airspace.Crossing) []CrossingForBigQuery {
	sorted := make([]airspace.Crossing, len(crossings))
	copy(sorted, crossings)
	sort.Sort(airspace.CrossingsByDistanceThenID(sorted))

	rows := make([]CrossingForBigQuery, 0, len(sorted))
	for _, c := range sorted {
		rows = append(rows, CrossingForBigQuery{
			RunID:            runID,
			RunAt:            runAt,
			CorridorWidthNM:  corridor.WidthNM,
			CorridorHeightFt: corridor.HeightFt,
			AirspaceID:       c.AirspaceID,
			Code:             c.Code,
			Name:             c.Name,
			Type:             string(c.Type),
			Class:            c.Class,
			Critical:         c.Critical,
			MinAltitudeFt:    c.MinAltitudeFt,
			MaxAltitudeFt:    c.MaxAltitudeFt,
			DistanceAlongKM:  c.DistanceAlongKM,
			EntryAltitudeFt:  c.EntryAltitudeFt,
			ExitAltitudeFt:   c.ExitAltitudeFt,
		})
	}
	return rows
}

// Exporter writes crossing rows to a BigQuery table.
type Exporter struct {
	client    *bigquery.Client
	datasetID string
	tableID   string
}

func NewExporter(ctx context.Context, projectID, datasetID, tableID string) (*Exporter, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, airspace.NewError(airspace.NetworkUnavailable, "open bigquery client", err)
	}
	return &Exporter{client: client, datasetID: datasetID, tableID: tableID}, nil
}

func (e *Exporter) Close() error { return e.client.Close() }

// Insert streams rows into the configured table.
func (e *Exporter) Insert(ctx context.Context, rows []CrossingForBigQuery) error {
	if len(rows) == 0 {
		return nil
	}
	inserter := e.client.Dataset(e.datasetID).Table(e.tableID).Inserter()
	savers := make([]bigquery.ValueSaver, len(rows))
	for i, r := range rows {
		savers[i] = r
	}
	if err := inserter.Put(ctx, savers); err != nil {
		return airspace.NewError(airspace.NetworkUnavailable, fmt.Sprintf("insert %d rows", len(rows)), err)
	}
	return nil
}

// Schema is the table schema an operator provisions ahead of time, kept
// here so it stays in sync with CrossingForBigQuery's Save mapping.
func Schema() bigquery.Schema {
	return bigquery.Schema{
		{Name: "run_id", Type: bigquery.StringFieldType},
		{Name: "run_at", Type: bigquery.TimestampFieldType},
		{Name: "corridor_width_nm", Type: bigquery.FloatFieldType},
		{Name: "corridor_height_ft", Type: bigquery.FloatFieldType},
		{Name: "airspace_id", Type: bigquery.IntegerFieldType},
		{Name: "code", Type: bigquery.StringFieldType},
		{Name: "name", Type: bigquery.StringFieldType},
		{Name: "type", Type: bigquery.StringFieldType},
		{Name: "class", Type: bigquery.StringFieldType},
		{Name: "critical", Type: bigquery.BooleanFieldType},
		{Name: "min_altitude_ft", Type: bigquery.FloatFieldType},
		{Name: "max_altitude_ft", Type: bigquery.FloatFieldType},
		{Name: "distance_along_km", Type: bigquery.FloatFieldType},
		{Name: "entry_altitude_ft", Type: bigquery.FloatFieldType},
		{Name: "exit_altitude_ft", Type: bigquery.FloatFieldType},
	}
}
