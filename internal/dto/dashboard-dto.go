package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

// DashboardQueryDTO carries the optional dashboard filters as they
// arrive on the query string.
type DashboardQueryDTO struct {
	Date      string `query:"date" validate:"omitempty,local_date"`
	Products  string `query:"products"`
	Direction string `query:"direction" validate:"omitempty,direction"`
}

// TruckMetricDTO is one reconciled per-truck row. Absent fields mean
// the corresponding event was never observed (or its timestamp never
// parsed); they are reported as null, never as zero values.
type TruckMetricDTO struct {
	Plate            string       `json:"truck_plate_number"`
	ProductGroup     null.String  `json:"product_group"`
	Date             null.Time    `json:"date"`
	ArrivalTime      null.Time    `json:"arrival_time"`
	StartLoadingTime null.Time    `json:"start_loading_time"`
	CompletedTime    null.Time    `json:"completed_time"`
	WaitingMin       null.Float64 `json:"waiting_min"`
	LoadingMin       null.Float64 `json:"loading_min"`
	TotalMin         null.Float64 `json:"total_min"`
	TotalWeightMT    null.Float64 `json:"total_weight_mt"`
	LoadingRate      null.Float64 `json:"loading_rate"`
	Mission          string       `json:"mission"`
	DataQualityFlag  string       `json:"data_quality_flag"`
}

// WaitingTruckDTO is one truck currently in the waiting state, with
// the contact details operators need to call the driver in.
type WaitingTruckDTO struct {
	ProductGroup null.String `json:"product_group"`
	Direction    null.String `json:"coming_to_upload_or_unload"`
	Plate        string      `json:"truck_plate_number"`
	ArrivalTime  time.Time   `json:"arrival_time"`
	WaitingMin   float64     `json:"waiting_min"`
	DriverName   null.String `json:"driver_name"`
	PhoneNumber  null.String `json:"phone_number"`
}

// DailyPerformanceDTO is one (product group, load direction) summary.
// LoadingRate is the weighted rate summed-minutes / summed-weight,
// absent when the group has no weight.
type DailyPerformanceDTO struct {
	ProductGroup  null.String  `json:"product_group"`
	Direction     null.String  `json:"coming_to_upload_or_unload"`
	TotalTrucks   int          `json:"total_trucks"`
	TotalWeightMT float64      `json:"total_weight_mt"`
	TotalMin      float64      `json:"total_min"`
	LoadingRate   null.Float64 `json:"loading_rate"`
}

// StatusCountsDTO counts trucks by their single most recent status
// event.
type StatusCountsDTO struct {
	Waiting   int `json:"waiting"`
	Loading   int `json:"loading"`
	Completed int `json:"completed"`
}

// DefaultDateDTO is the most recent calendar date present anywhere in
// the source data, used by the UI to preselect its date filter.
type DefaultDateDTO struct {
	Date null.Time `json:"date"`
}
