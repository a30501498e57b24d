package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"yard-dashboard/internal/entities"
	"yard-dashboard/internal/repositories"
	"yard-dashboard/pkg/timeparse"
	"yard-dashboard/pkg/types"
)

// Column renames per sheet: the forms collect Khmer headers; the rest
// of the system works with the canonical names.
var securityRename = map[string]string{
	"ស្លាកលេខឡាន":                  "Truck_Plate_Number",
	"បរិមាណផ្ទុកទំនិញ":            "Truck_Load_Capacity_by_Security",
	"អ្នកកំពុងស្កេនចេញ ឬ ចូល?":    "Scan_In_or_Out",
	"អ្នកកមកឡើង ឬ ទម្លាក់​​ឥវ៉ាន់": "Coming_to_Upload_or_Unload",
}

var driverRename = map[string]string{
	"ឈ្មោះ":                       "Driver_Name",
	"ស្លាកលេខឡាន":                 "Truck_Plate_Number",
	"លេខទូរស័ព្វ":                 "Phone_Number",
	"បរិមាណផ្ទុកទំនិញគិតជាតោន":   "Truck_Load_Capacity_by_Driver",
}

var statusRename = map[string]string{
	"ស្លាកលេខឡាន":   "Truck_Plate_Number",
	"ប្រភេទទំនិញ":   "Product_Group",
}

var logisticRename = map[string]string{
	"ប្រភេទទំនិញ":        "Product_Group",
	"ស្លាកលេខឡាន":        "Truck_Plate_Number",
	"Total Weight (MT) ":  "Total_Weight_MT",
	"Outbound Delivery Nº": "Outbound_Delivery_No",
}

// Value maps. Unknown codes pass through unmapped; they are source
// data, not errors.
var gateMap = map[string]string{
	"​ចូល": "Gate_in",
	"ចេញ":  "Gate_out",
}

var loadMap = map[string]string{
	"ឡើង ទំនិញ":    entities.DirectionUploading,
	"ទម្លាក់ ទំនិញ": entities.DirectionUnloading,
}

var productMap = map[string]string{
	"ទីប ជ្រុង ទីបមូល":            "Pipe",
	"ដំរ៉ូឡូ ជម្រៀក":              "Coil",
	"ដែកសសៃ ដែកកង និង ដែក I & H": "Trading",
	"ស័ង្កសី":                     "Roofing",
	"ស័ង្កសី PU":                  "PU",
	"Other":                       "Other",
}

var statusMap = map[string]string{
	"ចាប់ផ្តើមឡើងឬទម្លាក់ទំនិញ​ /Start Loading": entities.StatusStartLoading,
	"ឡើងឬទម្លាក់ទំនិញ​រួចរាល់ /Completed":        entities.StatusCompleted,
	"មកដល់ច្រករង់ចាំ /Arrival":                   entities.StatusArrival,
}

type IngestServiceInterface interface {
	LoadTables(ctx context.Context) (entities.SourceTables, error)
	DefaultDate(ctx context.Context) (null.Time, error)
}

// IngestService turns the raw sheet tables into cleaned, typed record
// streams: headers renamed, coded values mapped, the Timestamp column
// normalized to the local zone. Source row order is preserved.
type IngestService struct {
	repo             repositories.SheetRepositoryInterface
	loc              *time.Location
	numericThreshold float64
	logger           *zap.Logger
}

func NewIngestService(repo repositories.SheetRepositoryInterface, loc *time.Location, numericThreshold float64, logger *zap.Logger) *IngestService {
	return &IngestService{
		repo:             repo,
		loc:              loc,
		numericThreshold: numericThreshold,
		logger:           logger,
	}
}

func (s *IngestService) LoadTables(ctx context.Context) (entities.SourceTables, error) {
	raw, err := s.repo.LoadAll(ctx)
	if err != nil {
		return entities.SourceTables{}, err
	}

	tables := entities.SourceTables{
		Security: s.buildSecurity(raw["security"]),
		Driver:   s.buildDriver(raw["driver"]),
		Status:   s.buildStatus(raw["status"]),
		Logistic: s.buildLogistic(raw["logistic"]),
	}

	s.logger.Debug("source tables loaded",
		zap.Int("security", len(tables.Security)),
		zap.Int("driver", len(tables.Driver)),
		zap.Int("status", len(tables.Status)),
		zap.Int("logistic", len(tables.Logistic)),
	)
	return tables, nil
}

// DefaultDate returns the most recent calendar date observed in any
// Timestamp column, absent when no timestamp parsed anywhere.
func (s *IngestService) DefaultDate(ctx context.Context) (null.Time, error) {
	tables, err := s.LoadTables(ctx)
	if err != nil {
		return null.Time{}, err
	}

	var latest null.Time
	consider := func(ts null.Time) {
		if ts.Valid && (!latest.Valid || ts.Time.After(latest.Time)) {
			latest = ts
		}
	}
	for _, r := range tables.Security {
		consider(r.Timestamp)
	}
	for _, r := range tables.Driver {
		consider(r.Timestamp)
	}
	for _, r := range tables.Status {
		consider(r.Timestamp)
	}
	for _, r := range tables.Logistic {
		consider(r.Timestamp)
	}

	if !latest.Valid {
		return null.Time{}, nil
	}
	y, m, d := latest.Time.In(s.loc).Date()
	return null.TimeFrom(time.Date(y, m, d, 0, 0, 0, 0, s.loc)), nil
}

func (s *IngestService) buildSecurity(raw types.RawTable) []entities.SecurityRecord {
	t := raw.RenameHeaders(securityRename)
	plates := t.Column("Truck_Plate_Number")
	scans := t.Column("Scan_In_or_Out")
	directions := t.Column("Coming_to_Upload_or_Unload")
	capacities := t.Column("Truck_Load_Capacity_by_Security")
	timestamps := s.normalizeTimestamps(t)

	var out []entities.SecurityRecord
	for i := range t.Rows {
		plate := strings.TrimSpace(cell(plates, i))
		if plate == "" {
			continue
		}
		out = append(out, entities.SecurityRecord{
			Plate:      plate,
			ScanInOut:  mappedString(cell(scans, i), gateMap),
			Direction:  mappedString(cell(directions, i), loadMap),
			CapacityMT: optString(cell(capacities, i)),
			Timestamp:  cellTime(timestamps, i),
		})
	}
	return out
}

func (s *IngestService) buildDriver(raw types.RawTable) []entities.DriverRecord {
	t := raw.RenameHeaders(driverRename)
	plates := t.Column("Truck_Plate_Number")
	names := t.Column("Driver_Name")
	phones := t.Column("Phone_Number")
	capacities := t.Column("Truck_Load_Capacity_by_Driver")
	timestamps := s.normalizeTimestamps(t)

	var out []entities.DriverRecord
	for i := range t.Rows {
		plate := strings.TrimSpace(cell(plates, i))
		if plate == "" {
			continue
		}
		out = append(out, entities.DriverRecord{
			Plate:       plate,
			DriverName:  optString(cell(names, i)),
			PhoneNumber: optString(cell(phones, i)),
			CapacityMT:  optString(cell(capacities, i)),
			Timestamp:   cellTime(timestamps, i),
		})
	}
	return out
}

func (s *IngestService) buildStatus(raw types.RawTable) []entities.StatusRecord {
	t := raw.RenameHeaders(statusRename)
	plates := t.Column("Truck_Plate_Number")
	statuses := t.Column("Status")
	products := t.Column("Product_Group")
	timestamps := s.normalizeTimestamps(t)

	var out []entities.StatusRecord
	for i := range t.Rows {
		plate := strings.TrimSpace(cell(plates, i))
		if plate == "" {
			continue
		}
		status := strings.TrimSpace(cell(statuses, i))
		if mapped, ok := statusMap[status]; ok {
			status = mapped
		}
		out = append(out, entities.StatusRecord{
			Plate:        plate,
			Status:       status,
			ProductGroup: mappedString(cell(products, i), productMap),
			Timestamp:    cellTime(timestamps, i),
		})
	}
	return out
}

func (s *IngestService) buildLogistic(raw types.RawTable) []entities.LogisticRecord {
	t := raw.RenameHeaders(logisticRename)
	plates := t.Column("Truck_Plate_Number")
	products := t.Column("Product_Group")
	weights := t.Column("Total_Weight_MT")
	deliveries := t.Column("Outbound_Delivery_No")
	timestamps := s.normalizeTimestamps(t)

	var out []entities.LogisticRecord
	for i := range t.Rows {
		plate := strings.TrimSpace(cell(plates, i))
		if plate == "" {
			continue
		}
		out = append(out, entities.LogisticRecord{
			Plate:              plate,
			ProductGroup:       mappedString(cell(products, i), productMap),
			WeightMT:           optFloat(cell(weights, i)),
			OutboundDeliveryNo: optString(cell(deliveries, i)),
			Timestamp:          cellTime(timestamps, i),
		})
	}
	return out
}

// normalizeTimestamps handles the explicit Timestamp column only. The
// broader candidate-column sweep (timeparse.Sweep) stays advisory and
// is not part of the ingest path.
func (s *IngestService) normalizeTimestamps(t types.RawTable) []null.Time {
	col := t.Column("Timestamp")
	if col == nil {
		return nil
	}
	return timeparse.NormalizeColumn(col, s.loc, s.numericThreshold)
}

func cell(col []string, i int) string {
	if i < len(col) {
		return col[i]
	}
	return ""
}

func cellTime(col []null.Time, i int) null.Time {
	if i < len(col) {
		return col[i]
	}
	return null.Time{}
}

func optString(v string) null.String {
	v = strings.TrimSpace(v)
	if v == "" {
		return null.String{}
	}
	return null.StringFrom(v)
}

// mappedString applies a value map on top of optString; unmapped
// values pass through as-is.
func mappedString(v string, mapping map[string]string) null.String {
	s := optString(v)
	if !s.Valid {
		return s
	}
	if mapped, ok := mapping[s.String]; ok {
		return null.StringFrom(mapped)
	}
	return s
}

func optFloat(v string) null.Float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return null.Float64{}
	}
	// The logistic sheet writes thousands separators now and then.
	v = strings.ReplaceAll(v, ",", "")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return null.Float64{}
	}
	return null.Float64From(f)
}
