package airspace

import (
	"strings"
	"testing"
)

func TestBranchStringMarksUnreachable(t *testing.T) {
	b := Branch{Index: 2, DistanceKM: NMToKM(5), Action: Climb, FromAltFt: 1000, ToAltFt: 5000, Unreachable: true}
	got := b.String()
	if !strings.Contains(got, "[unreachable]") {
		t.Errorf("String() = %q, want it to contain [unreachable]", got)
	}
}
