package diag

import "testing"

func TestLogAccumulatesByLevel(t *testing.T) {
	var l Log
	l.Infof("parsed %d records", 10)
	l.Warnf("record %d degraded", 3)
	l.Skipf("record %d unparseable: %s", 7, "bad DMS")

	if len(l.Entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(l.Entries))
	}
	if l.Count(Warn) != 1 || l.Count(Skip) != 1 || l.Count(Info) != 1 {
		t.Errorf("counts wrong: warn=%d skip=%d info=%d", l.Count(Warn), l.Count(Skip), l.Count(Info))
	}
}

func TestLogStringIncludesLevelTags(t *testing.T) {
	var l Log
	l.Warnf("something odd")
	got := l.String()
	if want := "[WARN] something odd\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
