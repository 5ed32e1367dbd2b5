// Package impute fills missing feature values from the nearest complete training rows.
package impute

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Weighting selects how the neighbours of a row contribute to an imputed value.
type Weighting string

const (
	Uniform  Weighting = "uniform"
	Distance Weighting = "distance"
)

var (
	ErrNotFitted     = errors.New("imputer is not fitted")
	ErrFeatureCount  = errors.New("feature count does not match fitted data")
	ErrInvalidParams = errors.New("invalid imputer parameters")
)

// KNNImputer replaces each missing value with the mean of that feature over the nearest training
// rows which have it. Rows are compared with the NaN-aware euclidean distance: squared
// differences over the coordinates present in both rows, scaled up by the ratio of all to present
// coordinates. Only NaN is treated as missing.
//
// Fields are exported for gob persistence. Transform never modifies a fitted imputer, so a fitted
// value is safe for concurrent use.
type KNNImputer struct {
	NNeighbors int
	Weights    Weighting
	// Data is a copy of the training rows.
	Data *mat.Dense
	// Means holds the per-feature mean over present training values, used when a row has no
	// comparable neighbour. Features never observed during fit are filled with 0.
	Means []float64
}

// NewKNNImputer returns an unfitted imputer.
func NewKNNImputer(nNeighbors int, weights Weighting) (*KNNImputer, error) {
	if nNeighbors < 1 {
		return nil, errors.Wrapf(ErrInvalidParams, "n_neighbors must be positive, got %d", nNeighbors)
	}
	switch weights {
	case Uniform, Distance:
	default:
		return nil, errors.Wrapf(ErrInvalidParams, "unknown weights %q", weights)
	}

	return &KNNImputer{NNeighbors: nNeighbors, Weights: weights}, nil
}

// IsFitted reports whether Fit has been called.
func (imp *KNNImputer) IsFitted() bool {
	return imp.Data != nil && !imp.Data.IsEmpty()
}

// Fit memorises x. Previous fitted state is replaced.
func (imp *KNNImputer) Fit(x mat.Matrix) error {
	r, c := x.Dims()
	if r == 0 || c == 0 {
		return errors.New("unable to fit on empty data")
	}

	data := mat.DenseCopyOf(x)
	means := make([]float64, c)
	for j := 0; j < c; j++ {
		var sum float64
		var count int
		for i := 0; i < r; i++ {
			v := data.At(i, j)
			if !math.IsNaN(v) {
				sum += v
				count++
			}
		}
		if count > 0 {
			means[j] = sum / float64(count)
		}
	}

	imp.Data = data
	imp.Means = means

	return nil
}

// Transform returns a copy of x with every missing value imputed.
func (imp *KNNImputer) Transform(x mat.Matrix) (*mat.Dense, error) {
	if !imp.IsFitted() {
		return nil, ErrNotFitted
	}
	_, fc := imp.Data.Dims()
	r, c := x.Dims()
	if c != fc {
		return nil, errors.Wrapf(ErrFeatureCount, "got %d features, fitted on %d", c, fc)
	}

	out := mat.DenseCopyOf(x)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, out)
		if !hasMissing(row) {
			continue
		}
		dists := imp.distances(row)
		for j, v := range row {
			if math.IsNaN(v) {
				out.Set(i, j, imp.impute(j, dists))
			}
		}
	}

	return out, nil
}

// FitTransform fits on x then imputes it.
func (imp *KNNImputer) FitTransform(x mat.Matrix) (*mat.Dense, error) {
	err := imp.Fit(x)
	if err != nil {
		return nil, err
	}

	return imp.Transform(x)
}

type neighbour struct {
	index int
	dist  float64
}

// distances from row to every fitted row, NaN when no coordinate is shared.
func (imp *KNNImputer) distances(row []float64) []float64 {
	n, c := imp.Data.Dims()
	dists := make([]float64, n)
	for i := 0; i < n; i++ {
		var sq float64
		var present int
		for j := 0; j < c; j++ {
			a, b := row[j], imp.Data.At(i, j)
			if math.IsNaN(a) || math.IsNaN(b) {
				continue
			}
			sq += (a - b) * (a - b)
			present++
		}
		if present == 0 {
			dists[i] = math.NaN()
			continue
		}
		dists[i] = math.Sqrt(float64(c) / float64(present) * sq)
	}

	return dists
}

func (imp *KNNImputer) impute(col int, dists []float64) float64 {
	donors := make([]neighbour, 0, len(dists))
	for i, d := range dists {
		if math.IsNaN(d) || math.IsNaN(imp.Data.At(i, col)) {
			continue
		}
		donors = append(donors, neighbour{index: i, dist: d})
	}
	if len(donors) == 0 {
		return imp.Means[col]
	}

	sort.SliceStable(donors, func(a, b int) bool { return donors[a].dist < donors[b].dist })
	if len(donors) > imp.NNeighbors {
		donors = donors[:imp.NNeighbors]
	}

	weights := imp.weights(donors)
	var sum, total float64
	for k, nb := range donors {
		sum += weights[k] * imp.Data.At(nb.index, col)
		total += weights[k]
	}

	return sum / total
}

func (imp *KNNImputer) weights(donors []neighbour) []float64 {
	w := make([]float64, len(donors))
	if imp.Weights != Distance {
		for k := range w {
			w[k] = 1
		}

		return w
	}

	// exact matches take all the weight
	exact := false
	for _, nb := range donors {
		if nb.dist == 0 {
			exact = true
			break
		}
	}
	for k, nb := range donors {
		switch {
		case exact && nb.dist == 0:
			w[k] = 1
		case exact:
			w[k] = 0
		default:
			w[k] = 1 / nb.dist
		}
	}

	return w
}

func hasMissing(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) {
			return true
		}
	}

	return false
}
