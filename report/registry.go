package report

import (
	"sort"
	"strconv"
)

// SummarizeFunc computes a derived line of text from a finished Report,
// e.g. "busiest bucket", "closest critical crossing". Adapted from the
// teacher's report.HandleReport registry, trimmed of the HTML/web-search
// machinery that had no analogue here.
type SummarizeFunc func(*Report) string

type summarizerEntry struct {
	Name        string
	Func        SummarizeFunc
	Description string
}

var registry = map[string]summarizerEntry{}

// RegisterSummarizer adds a named derived-summary function to the
// registry, callable later by name via RunSummarizers.
func RegisterSummarizer(name string, f SummarizeFunc, description string) {
	registry[name] = summarizerEntry{Name: name, Func: f, Description: description}
}

// ListSummarizers returns registered summarizers in stable, sorted order.
func ListSummarizers() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunSummarizers executes every registered summarizer against r and
// returns each one's line, in registration-name order.
func RunSummarizers(r *Report) map[string]string {
	out := map[string]string{}
	for _, name := range ListSummarizers() {
		out[name] = registry[name].Func(r)
	}
	return out
}

func init() {
	RegisterSummarizer("critical_count", func(r *Report) string {
		return strconv.Itoa(r.I["[critical] total"]) + " critical crossings"
	}, "total count of P/R/Class-A crossings")

	RegisterSummarizer("busiest_bucket", func(r *Report) string {
		names := make([]string, 0, len(r.Buckets))
		for b := range r.Buckets {
			names = append(names, string(b))
		}
		sort.Strings(names)

		best, bestN := "", -1
		for _, name := range names {
			if n := len(r.Buckets[Bucket(name)]); n > bestN {
				best, bestN = name, n
			}
		}
		if best == "" {
			return "no crossings"
		}
		return best + " (" + strconv.Itoa(bestN) + ")"
	}, "the bucket with the most crossings")
}
