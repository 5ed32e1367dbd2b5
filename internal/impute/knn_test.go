package impute_test

import (
	"bytes"
	"encoding/gob"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/netsec-pipeline/internal/impute"
)

var nan = math.NaN()

func TestNewKNNImputer(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		k       int
		weights impute.Weighting
		wantErr bool
	}{
		"uniform":        {k: 3, weights: impute.Uniform},
		"distance":       {k: 1, weights: impute.Distance},
		"zero neighbour": {k: 0, weights: impute.Uniform, wantErr: true},
		"unknown weight": {k: 3, weights: "median", wantErr: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			imp, err := impute.NewKNNImputer(tc.k, tc.weights)
			if tc.wantErr {
				assert.ErrorIs(t, err, impute.ErrInvalidParams)
				return
			}
			require.NoError(t, err)
			assert.False(t, imp.IsFitted())
		})
	}
}

func TestKNNImputerTransform(t *testing.T) {
	t.Parallel()

	x := mat.NewDense(4, 3, []float64{
		1, 2, nan,
		3, 4, 3,
		nan, 6, 5,
		8, 8, 7,
	})

	tcs := map[string]struct {
		k       int
		weights impute.Weighting
		want    []float64
	}{
		"two uniform neighbours": {
			k:       2,
			weights: impute.Uniform,
			want: []float64{
				1, 2, 4,
				3, 4, 3,
				5.5, 6, 5,
				8, 8, 7,
			},
		},
		"more neighbours than donors": {
			k:       10,
			weights: impute.Uniform,
			want: []float64{
				1, 2, 5,
				3, 4, 3,
				4, 6, 5,
				8, 8, 7,
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			imp, err := impute.NewKNNImputer(tc.k, tc.weights)
			require.NoError(t, err)

			got, err := imp.FitTransform(x)
			require.NoError(t, err)
			assert.True(t, mat.EqualApprox(mat.NewDense(4, 3, tc.want), got, 1e-9), "got %v", mat.Formatted(got))
		})
	}
}

func TestKNNImputerDistanceWeights(t *testing.T) {
	t.Parallel()

	imp, err := impute.NewKNNImputer(2, impute.Distance)
	require.NoError(t, err)
	require.NoError(t, imp.Fit(mat.NewDense(3, 2, []float64{
		0, 10,
		2, 20,
		3, 30,
	})))

	got, err := imp.Transform(mat.NewDense(2, 2, []float64{
		1, nan,
		2, nan,
	}))
	require.NoError(t, err)
	// equidistant neighbours share the weight, an exact match takes all of it
	assert.InDelta(t, 15, got.At(0, 1), 1e-9)
	assert.InDelta(t, 20, got.At(1, 1), 1e-9)
}

func TestKNNImputerFitInvariance(t *testing.T) {
	t.Parallel()

	train := mat.NewDense(5, 3, []float64{
		1, 0, -1,
		1, 1, 1,
		0, nan, -1,
		-1, -1, 1,
		1, 0, 0,
	})
	testA := mat.NewDense(1, 3, []float64{1, nan, 1})
	testAB := mat.NewDense(2, 3, []float64{
		1, nan, 1,
		nan, nan, 0,
	})

	imp, err := impute.NewKNNImputer(3, impute.Uniform)
	require.NoError(t, err)
	require.NoError(t, imp.Fit(train))

	data := mat.DenseCopyOf(imp.Data)
	means := append([]float64(nil), imp.Means...)

	alone, err := imp.Transform(testA)
	require.NoError(t, err)
	together, err := imp.Transform(testAB)
	require.NoError(t, err)

	assert.Equal(t, mat.Row(nil, 0, alone), mat.Row(nil, 0, together))
	assert.False(t, math.IsNaN(together.At(1, 0)))
	assert.True(t, mat.Equal(data, imp.Data), "transform must not change fitted rows")
	assert.Equal(t, means, imp.Means)
	assert.True(t, math.IsNaN(testAB.At(1, 1)), "transform must not change its input")
}

func TestKNNImputerEmptyFeature(t *testing.T) {
	t.Parallel()

	imp, err := impute.NewKNNImputer(3, impute.Uniform)
	require.NoError(t, err)

	got, err := imp.FitTransform(mat.NewDense(2, 2, []float64{
		1, nan,
		2, nan,
	}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.At(0, 1))
	assert.Equal(t, 0.0, got.At(1, 1))
}

func TestKNNImputerErrors(t *testing.T) {
	t.Parallel()

	imp, err := impute.NewKNNImputer(3, impute.Uniform)
	require.NoError(t, err)

	_, err = imp.Transform(mat.NewDense(1, 2, nil))
	assert.ErrorIs(t, err, impute.ErrNotFitted)

	require.NoError(t, imp.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	_, err = imp.Transform(mat.NewDense(1, 3, nil))
	assert.ErrorIs(t, err, impute.ErrFeatureCount)
}

func TestKNNImputerGob(t *testing.T) {
	t.Parallel()

	imp, err := impute.NewKNNImputer(3, impute.Uniform)
	require.NoError(t, err)
	require.NoError(t, imp.Fit(mat.NewDense(3, 2, []float64{1, 2, 3, nan, 5, 6})))

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(imp))

	var back impute.KNNImputer
	require.NoError(t, gob.NewDecoder(&buf).Decode(&back))
	assert.Equal(t, imp.NNeighbors, back.NNeighbors)
	assert.Equal(t, imp.Weights, back.Weights)
	assert.Equal(t, imp.Means, back.Means)

	x := mat.NewDense(1, 2, []float64{nan, 2})
	want, err := imp.Transform(x)
	require.NoError(t, err)
	got, err := back.Transform(x)
	require.NoError(t, err)
	assert.True(t, mat.Equal(want, got))
}
