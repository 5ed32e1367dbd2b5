package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/netsec-pipeline/internal/store"
)

type fitted struct {
	Name    string
	Weights []float64
}

func TestObject(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "object.gob")
	in := fitted{Name: "knn", Weights: []float64{0.5, -1}}
	require.NoError(t, store.SaveObject(path, in))

	var out fitted
	require.NoError(t, store.LoadObject(path, &out))
	assert.Equal(t, in, out)

	err := store.LoadObject(filepath.Join(t.TempDir(), "missing.gob"), &out)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestArray(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "train.mat")
	in := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 0})
	require.NoError(t, store.SaveArray(path, in))

	out, err := store.LoadArray(path)
	require.NoError(t, err)
	assert.True(t, mat.Equal(in, out))

	assert.Error(t, store.SaveArray(path, nil))

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))
	_, err = store.LoadArray(path)
	assert.Error(t, err)
}

func TestYAML(t *testing.T) {
	t.Parallel()

	type report struct {
		PValue      float64 `yaml:"p_value"`
		DriftStatus bool    `yaml:"drift_status"`
	}

	path := filepath.Join(t.TempDir(), "report.yaml")
	in := map[string]report{"a": {PValue: 0.5}, "b": {PValue: 0.01, DriftStatus: true}}
	require.NoError(t, store.WriteYAML(path, in))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "p_value: 0.01")
	assert.Contains(t, string(raw), "drift_status: true")

	var out map[string]report
	require.NoError(t, store.ReadYAML(path, &out))
	assert.Equal(t, in, out)
}

func TestCopyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "final_model", "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0o600))

	require.NoError(t, store.CopyFile(src, dst))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(got))

	assert.Error(t, store.CopyFile(filepath.Join(dir, "missing"), dst))
}
