package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yard-dashboard/internal/entities"
	"yard-dashboard/pkg/timeparse"
	"yard-dashboard/pkg/types"
)

// stubSheetRepository serves fixed raw tables without any I/O.
type stubSheetRepository struct {
	tables map[string]types.RawTable
	err    error
	calls  int
}

func (s *stubSheetRepository) LoadAll(ctx context.Context) (map[string]types.RawTable, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.tables, nil
}

func newTestIngest(tables map[string]types.RawTable) *IngestService {
	return NewIngestService(&stubSheetRepository{tables: tables}, testLoc, timeparse.DefaultNumericThreshold, zap.NewNop())
}

func TestIngestStatusMappingAndPassThrough(t *testing.T) {
	tables := map[string]types.RawTable{
		"status": {
			Headers: []string{"Timestamp", "ស្លាកលេខឡាន", "Status", "ប្រភេទទំនិញ"},
			Rows: [][]string{
				{"2023-03-15 09:00:00", "ABC-123", "មកដល់ច្រករង់ចាំ /Arrival", "ទីប ជ្រុង ទីបមូល"},
				{"2023-03-15 09:30:00", "ABC-123", "ចាប់ផ្តើមឡើងឬទម្លាក់ទំនិញ​ /Start Loading", ""},
				// Unknown codes pass through unmapped.
				{"2023-03-15 10:00:00", "DEF-456", "SomethingElse", "UnknownGroup"},
			},
		},
	}

	got, err := newTestIngest(tables).LoadTables(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Status, 3)

	assert.Equal(t, entities.StatusArrival, got.Status[0].Status)
	assert.Equal(t, "Pipe", got.Status[0].ProductGroup.String)
	require.True(t, got.Status[0].Timestamp.Valid)
	assert.Equal(t, time.Date(2023, time.March, 15, 9, 0, 0, 0, testLoc), got.Status[0].Timestamp.Time)

	assert.Equal(t, entities.StatusStartLoading, got.Status[1].Status)
	assert.False(t, got.Status[1].ProductGroup.Valid)

	assert.Equal(t, "SomethingElse", got.Status[2].Status)
	assert.Equal(t, "UnknownGroup", got.Status[2].ProductGroup.String)
}

func TestIngestSecurityAndLogistic(t *testing.T) {
	tables := map[string]types.RawTable{
		"security": {
			Headers: []string{"Timestamp", "ស្លាកលេខឡាន", "អ្នកកមកឡើង ឬ ទម្លាក់​​ឥវ៉ាន់"},
			Rows: [][]string{
				{"2023-03-15 08:00:00", "ABC-123", "ឡើង ទំនិញ"},
				// Rows without a plate are unusable and dropped.
				{"2023-03-15 08:05:00", "", "ទម្លាក់ ទំនិញ"},
			},
		},
		"logistic": {
			Headers: []string{"Timestamp", "ស្លាកលេខឡាន", "Total Weight (MT) "},
			Rows: [][]string{
				{"2023-03-15 09:00:00", "ABC-123", "12.5"},
				{"2023-03-15 09:30:00", "ABC-123", "1,250"},
				{"2023-03-15 10:00:00", "DEF-456", "not-a-number"},
			},
		},
	}

	got, err := newTestIngest(tables).LoadTables(context.Background())
	require.NoError(t, err)

	require.Len(t, got.Security, 1)
	assert.Equal(t, entities.DirectionUploading, got.Security[0].Direction.String)

	require.Len(t, got.Logistic, 3)
	assert.Equal(t, 12.5, got.Logistic[0].WeightMT.Float64)
	assert.Equal(t, 1250.0, got.Logistic[1].WeightMT.Float64, "thousands separators are tolerated")
	assert.False(t, got.Logistic[2].WeightMT.Valid, "unparseable weight stays absent")
}

func TestIngestMissingColumnsYieldAbsentFields(t *testing.T) {
	tables := map[string]types.RawTable{
		"driver": {
			Headers: []string{"ស្លាកលេខឡាន"},
			Rows:    [][]string{{"ABC-123"}},
		},
	}

	got, err := newTestIngest(tables).LoadTables(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Driver, 1)
	assert.False(t, got.Driver[0].DriverName.Valid)
	assert.False(t, got.Driver[0].Timestamp.Valid)
}

func TestIngestDefaultDate(t *testing.T) {
	tables := map[string]types.RawTable{
		"status": {
			Headers: []string{"Timestamp", "ស្លាកលេខឡាន", "Status"},
			Rows: [][]string{
				{"2023-03-14 09:00:00", "A-1", "x"},
				{"2023-03-16 07:00:00", "A-1", "y"},
			},
		},
		"driver": {
			Headers: []string{"Timestamp", "ស្លាកលេខឡាន"},
			Rows:    [][]string{{"2023-03-15 09:00:00", "A-1"}},
		},
	}

	date, err := newTestIngest(tables).DefaultDate(context.Background())
	require.NoError(t, err)
	require.True(t, date.Valid)
	assert.Equal(t, time.Date(2023, time.March, 16, 0, 0, 0, 0, testLoc), date.Time)
}

func TestIngestEmptySource(t *testing.T) {
	got, err := newTestIngest(map[string]types.RawTable{}).LoadTables(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Status)
	assert.Empty(t, got.Security)
	assert.Empty(t, got.Driver)
	assert.Empty(t, got.Logistic)

	date, err := newTestIngest(map[string]types.RawTable{}).DefaultDate(context.Background())
	require.NoError(t, err)
	assert.False(t, date.Valid)
}
