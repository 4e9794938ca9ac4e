package report

import (
	"testing"

	"github.com/skyvolume/airspace"
)

func TestBucketingAndCriticalHighlight(t *testing.T) {
	r := New()
	r.AddAll([]airspace.Crossing{
		{AirspaceID: 1, Type: airspace.TypeTMA, Class: "D", DistanceAlongKM: 10},
		{AirspaceID: 2, Type: airspace.TypeP, Class: "R", DistanceAlongKM: 20},
		{AirspaceID: 3, Type: airspace.TypeR, Class: "R", DistanceAlongKM: 30},
		{AirspaceID: 4, Type: airspace.TypeCTR, Class: "A", DistanceAlongKM: 5},
	})

	if got := len(r.Buckets[BucketTMA]); got != 1 {
		t.Errorf("TMA bucket = %d, want 1", got)
	}
	if got := len(r.Buckets[BucketP]); got != 1 {
		t.Errorf("P bucket = %d, want 1", got)
	}
	// Crossing 4 is Class A airspace, so it lands in the Class-A bucket
	// even though its Type is CTR.
	if got := len(r.Buckets[BucketClassA]); got != 1 {
		t.Errorf("Class-A bucket = %d, want 1", got)
	}
	if got := len(r.Buckets[BucketCTR]); got != 0 {
		t.Errorf("CTR bucket = %d, want 0 (crossing 4 reclassified to Class-A)", got)
	}

	critical := r.CriticalCrossings()
	if len(critical) != 3 {
		t.Fatalf("critical crossings = %d, want 3 (P, R, Class-A)", len(critical))
	}
	if critical[0].AirspaceID != 4 {
		t.Errorf("nearest critical crossing = %d, want 4 (distance-sorted)", critical[0].AirspaceID)
	}
}

func TestSummarizersRun(t *testing.T) {
	r := New()
	r.AddAll([]airspace.Crossing{
		{AirspaceID: 1, Type: airspace.TypeTMA, Class: "D", DistanceAlongKM: 1},
		{AirspaceID: 2, Type: airspace.TypeTMA, Class: "D", DistanceAlongKM: 2},
	})

	out := RunSummarizers(r)
	if out["critical_count"] == "" {
		t.Errorf("expected a critical_count summary line")
	}
	if out["busiest_bucket"] == "" {
		t.Errorf("expected a busiest_bucket summary line")
	}
}
