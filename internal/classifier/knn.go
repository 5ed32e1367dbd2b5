package classifier

import (
	"runtime"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// KNN predicts the majority label among the K nearest training rows in euclidean distance.
// A tie votes for 1.
type KNN struct {
	K int

	X *mat.Dense
	Y []float64
}

// NewKNN returns an unfitted model.
func NewKNN(k int) *KNN {
	return &KNN{K: k}
}

func (m *KNN) Name() string { return "knn" }

func (m *KNN) Fit(x mat.Matrix, y []float64) error {
	err := checkTrainingData(x, y)
	if err != nil {
		return err
	}
	if m.K < 1 {
		return errors.Errorf("k must be positive, got %d", m.K)
	}

	m.X = mat.DenseCopyOf(x)
	m.Y = append([]float64(nil), y...)

	return nil
}

// Predict splits the rows across GOMAXPROCS workers.
func (m *KNN) Predict(x mat.Matrix) ([]float64, error) {
	if m.X == nil || len(m.Y) == 0 {
		return nil, ErrNotFitted
	}
	r, c := x.Dims()
	if _, fc := m.X.Dims(); c != fc {
		return nil, errors.Wrapf(ErrShape, "got %d features, fitted on %d", c, fc)
	}

	out := make([]float64, r)
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (r + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < r; start += rowsPerWorker {
		end := min(start+rowsPerWorker, r)
		g.Go(func() error {
			row := make([]float64, c)
			for i := start; i < end; i++ {
				mat.Row(row, i, x)
				out[i] = m.predictRow(row)
			}

			return nil
		})
	}
	_ = g.Wait() // workers never fail

	return out, nil
}

func (m *KNN) predictRow(row []float64) float64 {
	type pair struct {
		dist  float64
		label float64
	}

	n, _ := m.X.Dims()
	pairs := make([]pair, n)
	for i := 0; i < n; i++ {
		pairs[i] = pair{dist: floats.Distance(row, m.X.RawRowView(i), 2), label: m.Y[i]}
	}
	sort.SliceStable(pairs, func(a, b int) bool { return pairs[a].dist < pairs[b].dist })

	k := min(m.K, n)
	var votes float64
	for _, p := range pairs[:k] {
		votes += p.label
	}
	if votes/float64(k) >= 0.5 {
		return 1
	}

	return 0
}
