package spatial

import (
	"testing"

	"github.com/paulmach/orb"
)

func box(minX, minY, maxX, maxY float64) orb.Bound {
	return orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{maxX, maxY}}
}

func TestBuildSTREmpty(t *testing.T) {
	idx := BuildSTR(nil)
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0", idx.Len())
	}
	if got := idx.Candidates(box(-1, -1, 1, 1)); len(got) != 0 {
		t.Errorf("Candidates() on empty index = %v, want none", got)
	}
}

func TestBuildSTRFindsOverlappingCandidates(t *testing.T) {
	items := []Item{
		{ID: 1, Bound: box(0, 0, 1, 1)},
		{ID: 2, Bound: box(10, 10, 11, 11)},
		{ID: 3, Bound: box(0.5, 0.5, 1.5, 1.5)},
	}
	idx := BuildSTR(items)
	if idx.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", idx.Len())
	}

	got := idx.Candidates(box(0, 0, 1, 1))
	want := map[int64]bool{1: true, 3: true}
	if len(got) != len(want) {
		t.Fatalf("Candidates() = %v, want ids %v", got, want)
	}
	for _, id := range got {
		if !want[id] {
			t.Errorf("unexpected candidate id %d", id)
		}
	}
}

func TestBuildSTRHandlesManyItemsAcrossFanOut(t *testing.T) {
	var items []Item
	for i := int64(0); i < 200; i++ {
		x := float64(i)
		items = append(items, Item{ID: i, Bound: box(x, x, x+0.5, x+0.5)})
	}
	idx := BuildSTR(items)
	if idx.Len() != 200 {
		t.Fatalf("Len() = %d, want 200", idx.Len())
	}
	got := idx.Candidates(box(50, 50, 50.4, 50.4))
	found := false
	for _, id := range got {
		if id == 50 {
			found = true
		}
	}
	if !found {
		t.Errorf("Candidates() = %v, want it to include id 50", got)
	}
}
