package repositories

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "yard-dashboard/pkg/errors"
	"yard-dashboard/pkg/types"
)

// SheetKeys are the four tabs every source must deliver.
var SheetKeys = []string{"security", "driver", "status", "logistic"}

// SheetRepositoryInterface delivers the four raw yard tables for one
// refresh cycle. Implementations must preserve source row order.
type SheetRepositoryInterface interface {
	LoadAll(ctx context.Context) (map[string]types.RawTable, error)
}

// GoogleSheetRepository fetches each tab through the spreadsheet's
// CSV export endpoint.
type GoogleSheetRepository struct {
	client        *http.Client
	spreadsheetID string
	sheetGIDs     map[string]string
	logger        *zap.Logger
}

func NewGoogleSheetRepository(spreadsheetID string, sheetGIDs map[string]string, logger *zap.Logger) *GoogleSheetRepository {
	return &GoogleSheetRepository{
		client:        &http.Client{Timeout: 20 * time.Second},
		spreadsheetID: spreadsheetID,
		sheetGIDs:     sheetGIDs,
		logger:        logger,
	}
}

func (r *GoogleSheetRepository) LoadAll(ctx context.Context) (map[string]types.RawTable, error) {
	tables := make(map[string]types.RawTable, len(SheetKeys))
	for _, key := range SheetKeys {
		gid, ok := r.sheetGIDs[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownSheet, key)
		}
		table, err := r.fetchSheet(ctx, gid)
		if err != nil {
			r.logger.Warn("sheet fetch failed",
				zap.String("sheet", key),
				zap.String("gid", gid),
				zap.Error(err),
			)
			return nil, apperrors.NewSourceFetchError(err)
		}
		tables[key] = table
	}
	return tables, nil
}

func (r *GoogleSheetRepository) fetchSheet(ctx context.Context, gid string) (types.RawTable, error) {
	url := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s", r.spreadsheetID, gid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.RawTable{}, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return types.RawTable{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.RawTable{}, fmt.Errorf("unexpected status %d for gid %s", resp.StatusCode, gid)
	}
	return ParseCSV(resp.Body)
}

// ParseCSV reads a CSV stream into a RawTable. The first row is the
// header; short rows are kept as-is (missing cells read as empty).
func ParseCSV(r io.Reader) (types.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return types.RawTable{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return types.RawTable{}, nil
	}
	return types.RawTable{Headers: records[0], Rows: records[1:]}, nil
}
