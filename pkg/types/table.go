package types

// RawTable is one spreadsheet tab as delivered by the data source:
// a header row plus string cells, in source row order. Row order is
// load-bearing downstream ("first record per truck" selections), so
// tables are never reordered after loading.
type RawTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex returns the position of the named header, or -1.
func (t RawTable) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns the named column, one value per row; rows shorter
// than the header count yield empty strings. A missing column returns
// nil, which downstream code treats as "every value absent".
func (t RawTable) Column(name string) []string {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}

// RenameHeaders returns a copy of the table with headers replaced
// according to the mapping; unmapped headers pass through unchanged.
func (t RawTable) RenameHeaders(mapping map[string]string) RawTable {
	headers := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		if mapped, ok := mapping[h]; ok {
			headers[i] = mapped
		} else {
			headers[i] = h
		}
	}
	return RawTable{Headers: headers, Rows: t.Rows}
}
