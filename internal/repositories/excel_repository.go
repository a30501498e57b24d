package repositories

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	apperrors "yard-dashboard/pkg/errors"
	"yard-dashboard/pkg/types"
)

// Workbook tab names for the offline export mode. The yard office
// exports the same four sheets under these tabs.
var excelTabNames = map[string]string{
	"security": "Security",
	"driver":   "Driver",
	"status":   "Status",
	"logistic": "Logistic",
}

// ExcelSheetRepository reads the four yard tables from a local XLSX
// export instead of the live spreadsheet. Used for backfills and for
// running the dashboard without network access.
type ExcelSheetRepository struct {
	path   string
	logger *zap.Logger
}

func NewExcelSheetRepository(path string, logger *zap.Logger) *ExcelSheetRepository {
	return &ExcelSheetRepository{path: path, logger: logger}
}

func (r *ExcelSheetRepository) LoadAll(ctx context.Context) (map[string]types.RawTable, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		r.logger.Warn("workbook open failed", zap.String("path", r.path), zap.Error(err))
		return nil, apperrors.NewSourceFetchError(err)
	}
	defer f.Close()

	tables := make(map[string]types.RawTable, len(SheetKeys))
	for _, key := range SheetKeys {
		tab := excelTabNames[key]
		rows, err := f.GetRows(tab)
		if err != nil {
			return nil, apperrors.NewSourceFetchError(fmt.Errorf("read tab %q: %w", tab, err))
		}
		if len(rows) == 0 {
			tables[key] = types.RawTable{}
			continue
		}
		tables[key] = types.RawTable{Headers: rows[0], Rows: rows[1:]}
	}
	return tables, nil
}
