// Package timeparse normalizes the heterogeneous timestamp encodings
// found in the yard spreadsheets (ISO strings with offsets, naive
// local wall-clock strings, spreadsheet serial-day numbers) into
// timezone-aware instants in the yard's local zone.
//
// All functions are pure: they return new slices and never touch the
// caller's data. Values that fail every strategy come back as absent
// (null.Time with Valid=false), never as a zero or epoch time.
package timeparse

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
)

// DefaultNumericThreshold is the fraction of numeric-looking entries
// above which a whole column is read as spreadsheet serial days.
// Columns near the boundary with mixed content are inherently
// ambiguous; the threshold is configurable, not tunable per column.
const DefaultNumericThreshold = 0.5

// Layouts carrying an explicit offset or zone.
var zoneAwareLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 -07:00",
	"1/2/2006 15:04:05 -0700",
}

// Layouts without zone information, interpreted as local wall clock.
var naiveLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"2.1.2006 15:04:05",
}

// FromSerial converts a spreadsheet serial-day number to an instant in
// loc. Day zero is 1899-12-30; the fractional part is time of day,
// rounded to the nearest second to absorb float representation noise.
//
// The arithmetic is calendar arithmetic, not instant arithmetic: the
// serial encodes a local wall-clock reading, so the day count and
// seconds are overflowed into time.Date and normalized there. Adding
// an absolute duration to the epoch instead would drag along any
// historical offset change of loc (zones with pre-standardization LMT
// offsets would shift every converted value by the residue).
func FromSerial(serial float64, loc *time.Location) time.Time {
	days := int(math.Floor(serial))
	secs := int(math.Round((serial - float64(days)) * 86400))
	return time.Date(1899, time.December, 30+days, 0, 0, secs, 0, loc)
}

// MostlyNumeric reports whether more than threshold of the non-empty
// values parse as plain numbers.
func MostlyNumeric(values []string, threshold float64) bool {
	total := 0
	numeric := 0
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		total++
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			numeric++
		}
	}
	if total == 0 {
		return false
	}
	return float64(numeric)/float64(total) > threshold
}

// NormalizeColumn converts a raw timestamp column into tz-aware
// instants in loc, one-to-one and position-preserving.
//
// Regime selection happens per column, not per value:
//  1. a uniformly zone-aware column is converted to loc;
//  2. a mostly-numeric column is read entirely as serial days — string
//     entries in such a column become absent (accepted trade-off, do
//     not "fix");
//  3. otherwise each value tries zone-aware layouts first, then naive
//     layouts with loc attached, then stays absent.
func NormalizeColumn(values []string, loc *time.Location, threshold float64) []null.Time {
	out := make([]null.Time, len(values))

	if uniformlyZoneAware(values) {
		for i, v := range values {
			if ts, ok := parseZoneAware(v); ok {
				out[i] = null.TimeFrom(ts.In(loc))
			}
		}
		return out
	}

	if MostlyNumeric(values, threshold) {
		for i, v := range values {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			serial, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			out[i] = null.TimeFrom(FromSerial(serial, loc))
		}
		return out
	}

	for i, v := range values {
		if ts, ok := parseZoneAware(v); ok {
			out[i] = null.TimeFrom(ts.In(loc))
			continue
		}
		if ts, ok := parseNaive(v, loc); ok {
			out[i] = null.TimeFrom(ts)
		}
	}
	return out
}

// ParseValue normalizes a single value using the per-value strategies
// (zone-aware first, then naive local). Column-level regimes need the
// whole column; use NormalizeColumn for that.
func ParseValue(value string, loc *time.Location) null.Time {
	if ts, ok := parseZoneAware(value); ok {
		return null.TimeFrom(ts.In(loc))
	}
	if ts, ok := parseNaive(value, loc); ok {
		return null.TimeFrom(ts)
	}
	return null.Time{}
}

func uniformlyZoneAware(values []string) bool {
	seen := false
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := parseZoneAware(v); !ok {
			return false
		}
		seen = true
	}
	return seen
}

func parseZoneAware(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range zoneAwareLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func parseNaive(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range naiveLayouts {
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
