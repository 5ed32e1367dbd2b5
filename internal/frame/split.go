package frame

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

var ErrSplitRatio = errors.New("split ratio must be in (0, 1)")

// TrainTestSplit shuffles the rows with a generator seeded by seed and puts the first
// ceil(testRatio*n) of them in the test table. The same seed on the same table always gives the
// same partition. Both partitions must end up non-empty.
func TrainTestSplit(t *Table, testRatio float64, seed int64) (train, test *Table, err error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, errors.Wrapf(ErrSplitRatio, "got %v", testRatio)
	}
	n := t.NumRows()
	if n == 0 {
		return nil, nil, ErrEmptyTable
	}

	nTest := int(math.Ceil(testRatio * float64(n)))
	if nTest >= n {
		return nil, nil, errors.Errorf("%d rows are not enough to split with ratio %v", n, testRatio)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	return subset(t, perm[nTest:]), subset(t, perm[:nTest]), nil
}

func subset(t *Table, idx []int) *Table {
	rows := make([][]float64, len(idx))
	for i, k := range idx {
		rows[i] = append([]float64(nil), t.Rows[k]...)
	}

	return &Table{Columns: append([]string(nil), t.Columns...), Rows: rows}
}
