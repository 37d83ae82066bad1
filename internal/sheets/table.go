package sheets

import (
	"fmt"
	"strings"

	"github.com/me/sheetsync/pkg/model"
)

// ToTable turns a Sheets value grid into a rectangular Table.
//
// The first row is the header. Blank header cells become column_N (1-based)
// and repeated names get a _2, _3, ... suffix. Data rows shorter than the
// header are padded with empty strings; longer rows are truncated.
func ToTable(values [][]interface{}) (*model.Table, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, ErrNoData
	}

	columns := normalizeHeader(values[0])
	rows := make([][]string, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := make([]string, len(columns))
		for i := 0; i < len(columns) && i < len(raw); i++ {
			row[i] = cellString(raw[i])
		}
		rows = append(rows, row)
	}
	return &model.Table{Columns: columns, Rows: rows}, nil
}

func normalizeHeader(raw []interface{}) []string {
	columns := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, cell := range raw {
		name := strings.TrimSpace(cellString(cell))
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		unique := name
		for n := 2; seen[unique]; n++ {
			unique = fmt.Sprintf("%s_%d", name, n)
		}
		seen[unique] = true
		columns[i] = unique
	}
	return columns
}

func cellString(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
