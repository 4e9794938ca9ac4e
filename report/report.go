// Package report categorizes a query run's crossings into the buckets
// of §4.9 and accumulates run-wide counters and a distance histogram,
// following the counter-map-plus-histogram shape of the teacher's own
// reporting package.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skypies/util/histogram"

	"github.com/skyvolume/airspace"
)

// Bucket is one of the eight reporting categories of §4.9.
type Bucket string

const (
	BucketTMA    Bucket = "TMAs"
	BucketRAS    Bucket = "RAS"
	BucketCTR    Bucket = "Control Zones (CTR)"
	BucketR      Bucket = "Restricted (R)"
	BucketP      Bucket = "Prohibited (P)"
	BucketD      Bucket = "Danger (D)"
	BucketClassA Bucket = "Class-A"
	BucketOther  Bucket = "Other"
)

// bucketFor assigns a crossing to its reporting bucket. Class-A airspace
// is recognized by class letter regardless of type, per §4.9's "Critical
// bucket (P/R/Class-A)" wording.
func bucketFor(c airspace.Crossing) Bucket {
	if strings.EqualFold(c.Class, "A") {
		return BucketClassA
	}
	switch c.Type {
	case airspace.TypeTMA:
		return BucketTMA
	case airspace.TypeRAS:
		return BucketRAS
	case airspace.TypeCTR:
		return BucketCTR
	case airspace.TypeR:
		return BucketR
	case airspace.TypeP:
		return BucketP
	case airspace.TypeD, airspace.TypeDOther:
		return BucketD
	default:
		return BucketOther
	}
}

// isCritical mirrors §4.9's "Critical bucket (P/R/Class-A) is
// highlighted", independent of the airspace.Airspace.Critical() helper
// so the report's notion of "critical" stays anchored to this bucket
// list even if the domain model's grows.
func isCritical(b Bucket) bool {
	return b == BucketP || b == BucketR || b == BucketClassA
}

// Report is a single query run's categorized crossing summary.
type Report struct {
	I map[string]int // free-form counters, e.g. "[bucket] TMAs"
	H histogram.Histogram

	Buckets map[Bucket][]airspace.Crossing
	Log     []string
}

func New() *Report {
	return &Report{
		I:       map[string]int{},
		H:       histogram.Histogram{ValMin: 0, ValMax: 500, NumBuckets: 50},
		Buckets: map[Bucket][]airspace.Crossing{},
	}
}

func (r *Report) Infof(format string, args ...interface{}) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}

// Add files one crossing into its bucket, bumps counters, and folds its
// distance into the run's histogram.
func (r *Report) Add(c airspace.Crossing) {
	b := bucketFor(c)
	r.Buckets[b] = append(r.Buckets[b], c)
	r.I["[bucket] "+string(b)]++
	if isCritical(b) {
		r.I["[critical] total"]++
	}
	r.H.Add(histogram.ScalarVal(c.DistanceAlongKM))
}

// AddAll files a whole query result.
func (r *Report) AddAll(crossings []airspace.Crossing) {
	for _, c := range crossings {
		r.Add(c)
	}
}

func (r *Report) CriticalCrossings() []airspace.Crossing {
	var out []airspace.Crossing
	for b, cs := range r.Buckets {
		if isCritical(b) {
			out = append(out, cs...)
		}
	}
	sort.Sort(airspace.CrossingsByDistanceThenID(out))
	return out
}

// Summary renders a short human-readable table: one line per
// non-empty bucket, critical buckets marked.
func (r *Report) Summary() string {
	order := []Bucket{BucketTMA, BucketRAS, BucketCTR, BucketR, BucketP, BucketD, BucketClassA, BucketOther}
	var sb strings.Builder
	for _, b := range order {
		cs, ok := r.Buckets[b]
		if !ok || len(cs) == 0 {
			continue
		}
		mark := ""
		if isCritical(b) {
			mark = " [CRITICAL]"
		}
		fmt.Fprintf(&sb, "%-24s %3d%s\n", b, len(cs), mark)
	}
	fmt.Fprintf(&sb, "\ndistance_along_path_km distribution:\n%v\n", r.H)
	return sb.String()
}
