package schema_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/netsec-pipeline/internal/schema"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	sch, err := schema.Default()
	require.NoError(t, err)

	assert.Len(t, sch.Columns, 31)
	assert.Len(t, sch.NumericalColumns, 31)
	assert.Equal(t, "having_IP_Address", sch.Columns[0].Name)
	assert.Equal(t, "int64", sch.Columns[0].Type)
	assert.Equal(t, "Result", sch.ColumnNames()[30])
}

func TestParse(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		doc     string
		want    []string
		wantErr bool
	}{
		"ordered columns": {
			doc:  "columns:\n  - b: int64\n  - a: float64\nnumerical_columns:\n  - a\n",
			want: []string{"b", "a"},
		},
		"no columns": {
			doc:     "numerical_columns: [a]\n",
			wantErr: true,
		},
		"two names in one entry": {
			doc:     "columns:\n  - {a: int64, b: int64}\n",
			wantErr: true,
		},
		"not yaml": {
			doc:     "columns: [",
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			sch, err := schema.Parse([]byte(tc.doc))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, sch.ColumnNames())
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("columns:\n  - x: int64\n"), 0o600))

	sch, err := schema.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, sch.ColumnNames())

	_, err = schema.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	sch, err = schema.Load("")
	require.NoError(t, err)
	assert.Len(t, sch.Columns, 31)
}
