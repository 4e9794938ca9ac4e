// Command aixmextract parses an AIXM 4.5 dataset and bulk-loads the
// extracted airspaces into a SQLite store (§4.2, §4.3, §6.1).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/skyvolume/airspace"
	"github.com/skyvolume/airspace/aixm"
	"github.com/skyvolume/airspace/store"
)

var (
	inputPath = flag.String("in", "", "path to an AIXM 4.5 XML dataset")
	dbPath    = flag.String("db", "airspace.db", "path to the SQLite database to write into")
)

func init() {
	flag.Parse()
}

// exit codes per §6.6: 0 success, 3 dataset missing/unreadable, 4
// extraction/IO error.
func main() {
	os.Exit(run())
}

func run() int {
	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "aixmextract: -in is required")
		return 3
	}

	f, err := os.Open(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aixmextract: %v\n", err)
		return 3
	}
	defer f.Close()

	result, err := aixm.Extract(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aixmextract: %v\n", err)
		if kindOf(err) == airspace.DatasetMissing {
			return 3
		}
		return 4
	}
	for _, e := range result.Diag.Entries {
		log.Printf("[%s] %s", e.Level, e.Message)
	}
	log.Printf("extracted %d/%d airspaces (%.1f%% success)",
		len(result.Airspaces), result.Seen, result.SuccessRate()*100)

	if result.SuccessRate() < 0.95 {
		fmt.Fprintf(os.Stderr, "aixmextract: only %.1f%% of records parsed, below the 95%% threshold\n", result.SuccessRate()*100)
		return 4
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aixmextract: %v\n", err)
		return 4
	}
	defer db.Close()

	if err := db.BulkInsert(result.Airspaces); err != nil {
		fmt.Fprintf(os.Stderr, "aixmextract: %v\n", err)
		return 4
	}

	log.Printf("wrote %d airspaces to %s", len(result.Airspaces), *dbPath)
	return 0
}

func kindOf(err error) airspace.ErrorKind {
	if e, ok := err.(*airspace.Error); ok {
		return e.Kind
	}
	return airspace.Internal
}
