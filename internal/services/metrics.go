package services

import (
	"sort"
	"strings"
	"time"

	"github.com/aarondl/null/v8"

	"yard-dashboard/internal/dto"
	"yard-dashboard/internal/entities"
	"yard-dashboard/pkg/types"
)

// The functions in this file are the metrics core: pure transforms
// over already-materialized tables. They never read the clock (the
// evaluation instant is a parameter) and never mutate their inputs.

// eventIndex holds the per-truck extractions of one pass over the
// status stream plus the first-record lookups from the other streams.
type eventIndex struct {
	arrivals    map[string]time.Time   // earliest Arrival per truck
	starts      map[string]time.Time   // earliest Start_Loading per truck
	completions map[string][]time.Time // all Completed instants, chronological
	products    map[string]null.String // first non-absent, status then logistic
	directions  map[string]null.String // first security record per truck
	weights     map[string]null.Float64
	plates      []string // union of truck identities, sorted
}

func buildEventIndex(t entities.SourceTables) eventIndex {
	idx := eventIndex{
		arrivals:    make(map[string]time.Time),
		starts:      make(map[string]time.Time),
		completions: make(map[string][]time.Time),
		products:    make(map[string]null.String),
		directions:  make(map[string]null.String),
		weights:     make(map[string]null.Float64),
	}

	plateSet := make(map[string]struct{})
	for _, r := range t.Status {
		plateSet[r.Plate] = struct{}{}
		if r.Timestamp.Valid {
			ts := r.Timestamp.Time
			switch r.Status {
			case entities.StatusArrival:
				if cur, ok := idx.arrivals[r.Plate]; !ok || ts.Before(cur) {
					idx.arrivals[r.Plate] = ts
				}
			case entities.StatusStartLoading:
				if cur, ok := idx.starts[r.Plate]; !ok || ts.Before(cur) {
					idx.starts[r.Plate] = ts
				}
			case entities.StatusCompleted:
				idx.completions[r.Plate] = append(idx.completions[r.Plate], ts)
			}
		}
		// First non-absent product in source row order wins; the
		// source makes no chronological promise and neither do we.
		if r.ProductGroup.Valid {
			if _, ok := idx.products[r.Plate]; !ok {
				idx.products[r.Plate] = r.ProductGroup
			}
		}
	}
	for plate := range idx.completions {
		sort.Slice(idx.completions[plate], func(i, j int) bool {
			return idx.completions[plate][i].Before(idx.completions[plate][j])
		})
	}

	for _, r := range t.Logistic {
		plateSet[r.Plate] = struct{}{}
		if r.ProductGroup.Valid {
			if _, ok := idx.products[r.Plate]; !ok {
				idx.products[r.Plate] = r.ProductGroup
			}
		}
		if r.WeightMT.Valid {
			sum := idx.weights[r.Plate]
			idx.weights[r.Plate] = null.Float64From(sum.Float64 + r.WeightMT.Float64)
		}
	}

	for _, r := range t.Security {
		plateSet[r.Plate] = struct{}{}
		if _, ok := idx.directions[r.Plate]; !ok {
			idx.directions[r.Plate] = r.Direction
		}
	}

	for _, r := range t.Driver {
		plateSet[r.Plate] = struct{}{}
	}

	idx.plates = make([]string, 0, len(plateSet))
	for plate := range plateSet {
		idx.plates = append(idx.plates, plate)
	}
	sort.Strings(idx.plates)
	return idx
}

// CompletionTime selects the completed instant for one truck.
//
// With a start instant, the earliest completion not before the start
// wins; when every completion precedes the start (re-used plates,
// botched scans) the latest one is taken so the row still closes.
// Without a start instant the earliest completion wins.
func CompletionTime(start null.Time, completions []time.Time) null.Time {
	if len(completions) == 0 {
		return null.Time{}
	}

	earliest, latest := completions[0], completions[0]
	for _, c := range completions[1:] {
		if c.Before(earliest) {
			earliest = c
		}
		if c.After(latest) {
			latest = c
		}
	}

	if !start.Valid {
		return null.TimeFrom(earliest)
	}

	chosen := null.Time{}
	for _, c := range completions {
		if c.Before(start.Time) {
			continue
		}
		if !chosen.Valid || c.Before(chosen.Time) {
			chosen = null.TimeFrom(c)
		}
	}
	if chosen.Valid {
		return chosen
	}
	return null.TimeFrom(latest)
}

func minutesBetween(from, to null.Time) null.Float64 {
	if !from.Valid || !to.Valid {
		return null.Float64{}
	}
	return null.Float64From(to.Time.Sub(from.Time).Minutes())
}

func qualityFlag(arrival, start, completed null.Time) string {
	var missing []string
	if !arrival.Valid {
		missing = append(missing, "Missing_Arrival")
	}
	if !start.Valid {
		missing = append(missing, "Missing_Start")
	}
	if !completed.Valid {
		missing = append(missing, "Missing_Completed")
	}
	if len(missing) == 0 {
		return "OK"
	}
	return strings.Join(missing, ";")
}

func missionStatus(start, completed null.Time) string {
	if completed.Valid {
		return "Done"
	}
	if !start.Valid {
		return "Missing Start loading, completed"
	}
	return "Missing Completed"
}

func loadingRate(loadingMin, weight null.Float64) null.Float64 {
	if !loadingMin.Valid || !weight.Valid || weight.Float64 == 0 {
		return null.Float64{}
	}
	return null.Float64From(loadingMin.Float64 / weight.Float64)
}

func localDate(ts null.Time, loc *time.Location) null.Time {
	if !ts.Valid {
		return null.Time{}
	}
	y, m, d := ts.Time.In(loc).Date()
	return null.TimeFrom(time.Date(y, m, d, 0, 0, 0, 0, loc))
}

// ReconcileTruckMetrics produces exactly one metric row per truck
// identity appearing in any of the four streams (outer union), then
// applies the filters. Output order is (product group, date, plate),
// absent keys last.
func ReconcileTruckMetrics(t entities.SourceTables, f types.Filter, loc *time.Location) []dto.TruckMetricDTO {
	idx := buildEventIndex(t)

	rows := make([]dto.TruckMetricDTO, 0, len(idx.plates))
	for _, plate := range idx.plates {
		arrival := nullTimeFromMap(idx.arrivals, plate)
		start := nullTimeFromMap(idx.starts, plate)
		completed := CompletionTime(start, idx.completions[plate])
		weight := idx.weights[plate]
		loadingMin := minutesBetween(start, completed)

		row := dto.TruckMetricDTO{
			Plate:            plate,
			ProductGroup:     idx.products[plate],
			Date:             localDate(arrival, loc),
			ArrivalTime:      arrival,
			StartLoadingTime: start,
			CompletedTime:    completed,
			WaitingMin:       minutesBetween(arrival, start),
			LoadingMin:       loadingMin,
			TotalMin:         minutesBetween(arrival, completed),
			TotalWeightMT:    weight,
			LoadingRate:      loadingRate(loadingMin, weight),
			Mission:          missionStatus(start, completed),
			DataQualityFlag:  qualityFlag(arrival, start, completed),
		}

		if !f.AllowsDate(row.ArrivalTime, loc) {
			continue
		}
		if !f.AllowsProduct(row.ProductGroup) {
			continue
		}
		// Direction joins in from the security stream; with an active
		// direction filter a truck without a security record drops out
		// (inner-join semantics, for this filter only).
		if !f.AllowsDirection(idx.directions[plate]) {
			continue
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if c := compareNullString(rows[i].ProductGroup, rows[j].ProductGroup); c != 0 {
			return c < 0
		}
		if c := compareNullTime(rows[i].Date, rows[j].Date); c != 0 {
			return c < 0
		}
		return rows[i].Plate < rows[j].Plate
	})
	return rows
}

// EvaluateWaiting returns the trucks that have arrived but not started
// loading as of now (a future start instant still counts as waiting:
// loading slots may be pre-logged). Sorted by descending waiting time.
func EvaluateWaiting(t entities.SourceTables, f types.Filter, now time.Time, loc *time.Location) []dto.WaitingTruckDTO {
	idx := buildEventIndex(t)
	drivers := latestDriverByPlate(t.Driver)

	var out []dto.WaitingTruckDTO
	for _, plate := range idx.plates {
		arrival, ok := idx.arrivals[plate]
		if !ok {
			continue
		}
		if start, ok := idx.starts[plate]; ok && !start.After(now) {
			continue
		}
		if !f.AllowsDate(null.TimeFrom(arrival), loc) {
			continue
		}
		if !f.AllowsProduct(idx.products[plate]) {
			continue
		}
		if !f.AllowsDirection(idx.directions[plate]) {
			continue
		}

		view := dto.WaitingTruckDTO{
			ProductGroup: idx.products[plate],
			Direction:    idx.directions[plate],
			Plate:        plate,
			ArrivalTime:  arrival,
			WaitingMin:   now.Sub(arrival).Minutes(),
		}
		if drv, ok := drivers[plate]; ok {
			view.DriverName = drv.DriverName
			view.PhoneNumber = drv.PhoneNumber
		}
		out = append(out, view)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].WaitingMin > out[j].WaitingMin
	})
	return out
}

// AggregateDailyPerformance groups reconciled rows by (product group,
// load direction). Groups with absent keys or absent measures are
// kept; only the weighted rate goes absent when the group carries no
// weight. The rate is summed-minutes over summed-weight, deliberately
// not an average of per-truck rates.
func AggregateDailyPerformance(t entities.SourceTables, f types.Filter, loc *time.Location) []dto.DailyPerformanceDTO {
	rows := ReconcileTruckMetrics(t, f, loc)
	idx := buildEventIndex(t)

	type groupKey struct {
		product      string
		productValid bool
		direction    string
		directionOK  bool
	}
	groups := make(map[groupKey]*dto.DailyPerformanceDTO)
	var order []groupKey

	for _, row := range rows {
		direction := idx.directions[row.Plate]
		key := groupKey{
			product:      row.ProductGroup.String,
			productValid: row.ProductGroup.Valid,
			direction:    direction.String,
			directionOK:  direction.Valid,
		}
		agg, ok := groups[key]
		if !ok {
			agg = &dto.DailyPerformanceDTO{
				ProductGroup: row.ProductGroup,
				Direction:    direction,
			}
			groups[key] = agg
			order = append(order, key)
		}
		agg.TotalTrucks++
		if row.TotalWeightMT.Valid {
			agg.TotalWeightMT += row.TotalWeightMT.Float64
		}
		if row.TotalMin.Valid {
			agg.TotalMin += row.TotalMin.Float64
		}
	}

	out := make([]dto.DailyPerformanceDTO, 0, len(order))
	for _, key := range order {
		agg := groups[key]
		if agg.TotalWeightMT != 0 {
			agg.LoadingRate = null.Float64From(agg.TotalMin / agg.TotalWeightMT)
		}
		out = append(out, *agg)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := compareNullString(out[i].ProductGroup, out[j].ProductGroup); c != 0 {
			return c < 0
		}
		return compareNullString(out[i].Direction, out[j].Direction) < 0
	})
	return out
}

// CountStatuses buckets trucks by their single most recent status
// event. Date and product filters apply to that latest event itself.
func CountStatuses(status []entities.StatusRecord, f types.Filter, loc *time.Location) dto.StatusCountsDTO {
	latest := make(map[string]entities.StatusRecord)
	for _, r := range status {
		cur, ok := latest[r.Plate]
		switch {
		case !ok:
			latest[r.Plate] = r
		case r.Timestamp.Valid && (!cur.Timestamp.Valid || !r.Timestamp.Time.Before(cur.Timestamp.Time)):
			latest[r.Plate] = r
		}
	}

	var counts dto.StatusCountsDTO
	for _, r := range latest {
		if !f.AllowsProduct(r.ProductGroup) {
			continue
		}
		if !f.AllowsDate(r.Timestamp, loc) {
			continue
		}
		switch r.Status {
		case entities.StatusArrival:
			counts.Waiting++
		case entities.StatusStartLoading:
			counts.Loading++
		case entities.StatusCompleted:
			counts.Completed++
		}
	}
	return counts
}

func latestDriverByPlate(records []entities.DriverRecord) map[string]entities.DriverRecord {
	latest := make(map[string]entities.DriverRecord)
	for _, r := range records {
		cur, ok := latest[r.Plate]
		switch {
		case !ok:
			latest[r.Plate] = r
		case r.Timestamp.Valid && (!cur.Timestamp.Valid || !r.Timestamp.Time.Before(cur.Timestamp.Time)):
			latest[r.Plate] = r
		}
	}
	return latest
}

func nullTimeFromMap(m map[string]time.Time, plate string) null.Time {
	if ts, ok := m[plate]; ok {
		return null.TimeFrom(ts)
	}
	return null.Time{}
}

// compareNullString orders present values lexically and sorts absent
// values last.
func compareNullString(a, b null.String) int {
	switch {
	case a.Valid && b.Valid:
		return strings.Compare(a.String, b.String)
	case a.Valid:
		return -1
	case b.Valid:
		return 1
	default:
		return 0
	}
}

func compareNullTime(a, b null.Time) int {
	switch {
	case a.Valid && b.Valid:
		if a.Time.Before(b.Time) {
			return -1
		}
		if a.Time.After(b.Time) {
			return 1
		}
		return 0
	case a.Valid:
		return -1
	case b.Valid:
		return 1
	default:
		return 0
	}
}
