package entities

import (
	"github.com/aarondl/null/v8"
)

// Canonical status event kinds after value mapping. Unknown codes from
// the sheet pass through unmapped and simply never match these.
const (
	StatusArrival      = "Arrival"
	StatusStartLoading = "Start_Loading"
	StatusCompleted    = "Completed"
)

// Canonical load directions from the security sheet.
const (
	DirectionUploading = "Uploading"
	DirectionUnloading = "Unloading"
)

// SecurityRecord is one gate scan. One truck usually has several
// (gate-in and gate-out).
type SecurityRecord struct {
	Plate      string      `json:"truck_plate_number"`
	ScanInOut  null.String `json:"scan_in_or_out"`
	Direction  null.String `json:"coming_to_upload_or_unload"`
	CapacityMT null.String `json:"truck_load_capacity_by_security"`
	Timestamp  null.Time   `json:"timestamp"`
}

// DriverRecord is one driver check-in form submission.
type DriverRecord struct {
	Plate       string      `json:"truck_plate_number"`
	DriverName  null.String `json:"driver_name"`
	PhoneNumber null.String `json:"phone_number"`
	CapacityMT  null.String `json:"truck_load_capacity_by_driver"`
	Timestamp   null.Time   `json:"timestamp"`
}

// StatusRecord is one lifecycle event (Arrival, Start_Loading,
// Completed). Duplicate scans and re-arrivals are expected; the
// reconciler owns the tie-breaking.
type StatusRecord struct {
	Plate        string      `json:"truck_plate_number"`
	Status       string      `json:"status"`
	ProductGroup null.String `json:"product_group"`
	Timestamp    null.Time   `json:"timestamp"`
}

// LogisticRecord is one weight entry; a truck's total weight is the
// sum over all of its entries.
type LogisticRecord struct {
	Plate              string       `json:"truck_plate_number"`
	ProductGroup       null.String  `json:"product_group"`
	WeightMT           null.Float64 `json:"total_weight_mt"`
	OutboundDeliveryNo null.String  `json:"outbound_delivery_no"`
	Timestamp          null.Time    `json:"timestamp"`
}

// SourceTables holds the four cleaned, timestamp-normalized event
// streams for one refresh cycle, in source row order.
type SourceTables struct {
	Security []SecurityRecord `json:"security"`
	Driver   []DriverRecord   `json:"driver"`
	Status   []StatusRecord   `json:"status"`
	Logistic []LogisticRecord `json:"logistic"`
}
