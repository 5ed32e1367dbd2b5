package component_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/netsec-pipeline/internal/component"
	"github.com/askiada/netsec-pipeline/internal/datasource"
	"github.com/askiada/netsec-pipeline/internal/entity"
	"github.com/askiada/netsec-pipeline/internal/frame"
	"github.com/askiada/netsec-pipeline/internal/schema/schematest"
)

func TestDataIngestion(t *testing.T) {
	t.Parallel()

	tbl := schematest.PhishingTable(t, 100, 1)
	ids := make([]float64, tbl.NumRows())
	withID, err := tbl.WithColumn(datasource.IDField, ids)
	require.NoError(t, err)

	run := func() (entity.DataIngestionArtifact, entity.DataIngestionConfig) {
		cfg := entity.NewDataIngestionConfig(pipelineConfig(t), 42)
		ing, err := component.NewDataIngestion(cfg, datasource.MemorySource{Table: withID})
		require.NoError(t, err)
		art, err := ing.InitiateDataIngestion(context.Background())
		require.NoError(t, err)

		return art, cfg
	}

	art, cfg := run()
	assert.Equal(t, cfg.TrainingFilePath, art.TrainFilePath)
	assert.Equal(t, cfg.TestingFilePath, art.TestFilePath)
	assert.FileExists(t, cfg.FeatureStoreFilePath)

	train, err := frame.ReadCSVFile(art.TrainFilePath)
	require.NoError(t, err)
	test, err := frame.ReadCSVFile(art.TestFilePath)
	require.NoError(t, err)
	assert.Equal(t, 80, train.NumRows())
	assert.Equal(t, 20, test.NumRows())
	assert.Equal(t, tbl.Columns, train.Columns, "_id must be dropped")

	again, _ := run()
	first, err := os.ReadFile(art.TestFilePath)
	require.NoError(t, err)
	second, err := os.ReadFile(again.TestFilePath)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second), "same seed must give the same split")
}

func TestDataIngestionEmpty(t *testing.T) {
	t.Parallel()

	cfg := entity.NewDataIngestionConfig(pipelineConfig(t), 42)
	empty, err := frame.New([]string{"a", datasource.IDField}, nil)
	require.NoError(t, err)

	ing, err := component.NewDataIngestion(cfg, datasource.MemorySource{Table: empty})
	require.NoError(t, err)

	_, err = ing.InitiateDataIngestion(context.Background())
	assert.ErrorIs(t, err, component.ErrEmptyDataset)
	assert.NoFileExists(t, cfg.TrainingFilePath)
	assert.NoFileExists(t, cfg.TestingFilePath)

	_, err = component.NewDataIngestion(cfg, nil)
	assert.Error(t, err)
}
