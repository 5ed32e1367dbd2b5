package entity_test

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/netsec-pipeline/internal/entity"
)

func TestNewRunID(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)
	assert.Equal(t, "03_05_2024_14_07_09", entity.NewRunID(ts))
}

func TestNewTrainingPipelineConfig(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		root    string
		runID   string
		wantDir string
		wantErr bool
	}{
		"default root": {runID: "run-1", wantDir: filepath.Join("Artifacts", "run-1")},
		"custom root":  {root: "/tmp/out", runID: "run-2", wantDir: filepath.Join("/tmp/out", "run-2")},
		"empty run id": {root: "/tmp/out", wantErr: true},
		"path run id":  {runID: "../escape", wantErr: true},
		"dot run id":   {runID: "..", wantErr: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg, err := entity.NewTrainingPipelineConfig(tc.root, tc.runID, "")
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantDir, cfg.ArtifactDir)
			assert.Equal(t, entity.PipelineName, cfg.PipelineName)
		})
	}
}

func TestStageConfigsDeriveFromRun(t *testing.T) {
	t.Parallel()

	pc, err := entity.NewTrainingPipelineConfig("root", "run", "final")
	require.NoError(t, err)

	ing := entity.NewDataIngestionConfig(pc, 7)
	assert.Equal(t, filepath.Join("root", "run", "data_ingestion", "feature_store", "phisingData.csv"), ing.FeatureStoreFilePath)
	assert.Equal(t, filepath.Join("root", "run", "data_ingestion", "ingested", "train.csv"), ing.TrainingFilePath)
	assert.Equal(t, filepath.Join("root", "run", "data_ingestion", "ingested", "test.csv"), ing.TestingFilePath)
	assert.InDelta(t, 0.2, ing.TrainTestSplitRatio, 0)
	assert.Equal(t, int64(7), ing.SplitSeed)

	val := entity.NewDataValidationConfig(pc)
	assert.Equal(t, filepath.Join("root", "run", "data_validation", "drift_report", "report.yaml"), val.DriftReportFilePath)
	assert.Equal(t, filepath.Join("root", "run", "data_validation", "invalid", "train.csv"), val.InvalidTrainFilePath)
	assert.InDelta(t, 0.05, val.DriftThreshold, 0)

	tr := entity.NewDataTransformationConfig(pc)
	assert.Equal(t, filepath.Join("root", "run", "data_transformation", "transformed", "train.mat"), tr.TransformedTrainFilePath)
	assert.Equal(t, 3, tr.Imputer.NNeighbors)
	assert.Equal(t, "uniform", tr.Imputer.Weights)
	assert.True(t, math.IsNaN(tr.Imputer.MissingValues))

	mt := entity.NewModelTrainerConfig(pc)
	assert.Equal(t, filepath.Join("root", "run", "model_trainer", "trained_model", "model.gob"), mt.TrainedModelFilePath)
	assert.Equal(t, filepath.Join("final", "model.gob"), mt.FinalModelFilePath)
	assert.Equal(t, filepath.Join("final", "preprocessor.gob"), mt.FinalPreprocessorFilePath)

	noFinal, err := entity.NewTrainingPipelineConfig("root", "run", "")
	require.NoError(t, err)
	assert.Empty(t, entity.NewModelTrainerConfig(noFinal).FinalModelFilePath)
	assert.Empty(t, entity.NewModelTrainerConfig(noFinal).FinalPreprocessorFilePath)
}
