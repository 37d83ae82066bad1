package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTable(t *testing.T) {
	tests := []struct {
		name    string
		values  [][]interface{}
		columns []string
		rows    [][]string
	}{
		{
			name:    "rectangular",
			values:  [][]interface{}{{"a", "b"}, {"1", "2"}},
			columns: []string{"a", "b"},
			rows:    [][]string{{"1", "2"}},
		},
		{
			name:    "header only",
			values:  [][]interface{}{{"a", "b"}},
			columns: []string{"a", "b"},
			rows:    [][]string{},
		},
		{
			name:    "short and long rows",
			values:  [][]interface{}{{"a", "b"}, {"1"}, {"1", "2", "3"}},
			columns: []string{"a", "b"},
			rows:    [][]string{{"1", ""}, {"1", "2"}},
		},
		{
			name:    "blank and duplicate headers",
			values:  [][]interface{}{{"id", "", "id", " ", "id"}},
			columns: []string{"id", "column_2", "id_2", "column_4", "id_3"},
			rows:    [][]string{},
		},
		{
			name:    "duplicate colliding with suffixed name",
			values:  [][]interface{}{{"x_2", "x", "x"}},
			columns: []string{"x_2", "x", "x_3"},
			rows:    [][]string{},
		},
		{
			name:    "non-string cells",
			values:  [][]interface{}{{"n", "ok", "none"}, {float64(3), true, nil}},
			columns: []string{"n", "ok", "none"},
			rows:    [][]string{{"3", "true", ""}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ToTable(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.columns, table.Columns)
			assert.Equal(t, tt.rows, table.Rows)
		})
	}
}

func TestToTable_NoData(t *testing.T) {
	_, err := ToTable(nil)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = ToTable([][]interface{}{{}})
	assert.ErrorIs(t, err, ErrNoData)
}
