package timeparse

import (
	"strings"
	"time"

	"github.com/aarondl/null/v8"

	"yard-dashboard/pkg/types"
)

// Names that identify a timestamp column outright (lowercased).
var exactTimestampNames = map[string]struct{}{
	"timestamp":    {},
	"time":         {},
	"arrival":      {},
	"arrival_time": {},
	"arrival_at":   {},
	"created_at":   {},
	"updated_at":   {},
	"date":         {},
	"datetime":     {},
}

// Substrings that mark a column as timestamp-ish. Deliberately loose;
// the sweep is advisory and never feeds the reconciler, which names
// its columns explicitly.
var timestampNameFragments = []string{"time", "date", "arrival", "ts", "at"}

// CandidateColumns returns the headers that look like timestamp
// columns, in header order.
func CandidateColumns(headers []string) []string {
	var out []string
	for _, h := range headers {
		low := strings.ToLower(h)
		if _, ok := exactTimestampNames[low]; ok {
			out = append(out, h)
			continue
		}
		for _, frag := range timestampNameFragments {
			if strings.Contains(low, frag) {
				out = append(out, h)
				break
			}
		}
	}
	return out
}

// Sweep normalizes every candidate timestamp column of the table and
// returns the results keyed by header. The table itself is untouched.
func Sweep(t types.RawTable, loc *time.Location, threshold float64) map[string][]null.Time {
	out := make(map[string][]null.Time)
	for _, name := range CandidateColumns(t.Headers) {
		out[name] = NormalizeColumn(t.Column(name), loc, threshold)
	}
	return out
}
