// Package schematest builds synthetic datasets matching the default schema.
package schematest

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/netsec-pipeline/internal/frame"
	"github.com/askiada/netsec-pipeline/internal/schema"
)

// PhishingTable builds n rows with the default schema columns. Features are in {-1, 0, 1}, the
// first feature is never 0 and the target copies it, so the target is learnable. One row in ten
// misses its fourth feature.
func PhishingTable(t testing.TB, n int, seed int64) *frame.Table {
	t.Helper()

	sch, err := schema.Default()
	require.NoError(t, err)
	columns := sch.ColumnNames()

	rng := rand.New(rand.NewSource(seed))
	rows := make([][]float64, n)
	for i := range rows {
		row := make([]float64, len(columns))
		for j := range row {
			row[j] = float64(rng.Intn(3) - 1)
		}
		row[0] = float64(2*rng.Intn(2) - 1)
		if i%10 == 3 {
			row[3] = math.NaN()
		}
		row[len(row)-1] = row[0]
		rows[i] = row
	}

	tbl, err := frame.New(columns, rows)
	require.NoError(t, err)

	return tbl
}
