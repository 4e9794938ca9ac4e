// Package diag accumulates leveled diagnostic entries for operations
// that must keep going past partial failures — the AIXM parser's
// per-record isolation (§7) reports through here rather than returning
// early. The profile corrector does not use it; it reports elevation
// degradation through its Result.ElevationEstimated flag.
package diag

import "fmt"

type Level int

const (
	Info Level = iota
	Warn
	Skip
)

func (l Level) String() string {
	switch l {
	case Warn:
		return "WARN"
	case Skip:
		return "SKIP"
	default:
		return "INFO"
	}
}

type Entry struct {
	Level   Level
	Message string
}

// Log is an accumulating, non-fatal diagnostic sink, modeled on the
// teacher's report.Report.Log/Infof/Debugf idiom.
type Log struct {
	Entries []Entry
}

func (l *Log) Infof(format string, args ...interface{}) {
	l.Entries = append(l.Entries, Entry{Info, fmt.Sprintf(format, args...)})
}

func (l *Log) Warnf(format string, args ...interface{}) {
	l.Entries = append(l.Entries, Entry{Warn, fmt.Sprintf(format, args...)})
}

func (l *Log) Skipf(format string, args ...interface{}) {
	l.Entries = append(l.Entries, Entry{Skip, fmt.Sprintf(format, args...)})
}

// Count returns how many entries were logged at exactly the given
// level.
func (l *Log) Count(level Level) int {
	n := 0
	for _, e := range l.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (l *Log) String() string {
	s := ""
	for _, e := range l.Entries {
		s += fmt.Sprintf("[%s] %s\n", e.Level, e.Message)
	}
	return s
}
