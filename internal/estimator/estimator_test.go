package estimator_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/netsec-pipeline/internal/classifier"
	"github.com/askiada/netsec-pipeline/internal/estimator"
	"github.com/askiada/netsec-pipeline/internal/frame"
	"github.com/askiada/netsec-pipeline/internal/impute"
)

func trainTable(t *testing.T) *frame.Table {
	t.Helper()

	tbl, err := frame.New([]string{"a", "b", "Result"}, [][]float64{
		{-1, 1, 0},
		{-1, -1, 0},
		{-1, math.NaN(), 0},
		{1, 1, 1},
		{1, -1, 1},
		{1, 0, 1},
	})
	require.NoError(t, err)

	return tbl
}

func fittedModel(t *testing.T) *estimator.NetworkModel {
	t.Helper()

	tbl := trainTable(t)
	imp, err := impute.NewKNNImputer(3, impute.Uniform)
	require.NoError(t, err)
	pre, err := estimator.NewPreprocessor(tbl, []string{"a", "b"}, imp)
	require.NoError(t, err)

	x, err := pre.Transform(tbl)
	require.NoError(t, err)
	y, err := tbl.Column("Result")
	require.NoError(t, err)

	knn := classifier.NewKNN(3)
	require.NoError(t, knn.Fit(x, y))

	m, err := estimator.New(pre, knn)
	require.NoError(t, err)

	return m
}

func TestNetworkModelPredict(t *testing.T) {
	t.Parallel()

	m := fittedModel(t)

	// reordered columns, missing value and no target
	in, err := frame.New([]string{"b", "a"}, [][]float64{{math.NaN(), -1}, {1, 1}})
	require.NoError(t, err)

	got, err := m.Predict(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, got)

	out, err := m.PredictTable(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", estimator.PredictionColumn}, out.Columns)
	assert.Equal(t, 1.0, out.Rows[1][2])
}

func TestNetworkModelPredictErrors(t *testing.T) {
	t.Parallel()

	m := fittedModel(t)

	missing, err := frame.New([]string{"a"}, [][]float64{{1}})
	require.NoError(t, err)
	_, err = m.Predict(context.Background(), missing)
	assert.ErrorIs(t, err, frame.ErrUnknownColumn)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Predict(ctx, trainTable(t))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = estimator.New(nil, classifier.NewKNN(3))
	assert.Error(t, err)

	var empty estimator.Preprocessor
	_, err = empty.Transform(trainTable(t))
	assert.ErrorIs(t, err, estimator.ErrNotReady)
}

func TestNetworkModelSaveLoad(t *testing.T) {
	t.Parallel()

	m := fittedModel(t)
	path := filepath.Join(t.TempDir(), "final_model", "model.gob")
	require.NoError(t, m.Save(path))

	back, err := estimator.LoadNetworkModel(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, back.Preprocessor.FeatureColumns)
	assert.Equal(t, "knn", back.Model.Name())

	tbl := trainTable(t)
	want, err := m.Predict(context.Background(), tbl)
	require.NoError(t, err)
	got, err := back.Predict(context.Background(), tbl)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = estimator.LoadNetworkModel(filepath.Join(t.TempDir(), "missing.gob"))
	assert.Error(t, err)
}

func TestPreprocessorSaveLoad(t *testing.T) {
	t.Parallel()

	m := fittedModel(t)
	path := filepath.Join(t.TempDir(), "preprocessing.gob")
	require.NoError(t, m.Preprocessor.Save(path))

	back, err := estimator.LoadPreprocessor(path)
	require.NoError(t, err)

	x, err := back.Transform(trainTable(t))
	require.NoError(t, err)
	assert.False(t, math.IsNaN(x.At(2, 1)))
}
