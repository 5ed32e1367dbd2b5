package component

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/askiada/netsec-pipeline/internal/datasource"
	"github.com/askiada/netsec-pipeline/internal/entity"
	"github.com/askiada/netsec-pipeline/internal/frame"
	"github.com/askiada/netsec-pipeline/internal/logging"
)

type DataIngestion struct {
	config entity.DataIngestionConfig
	source datasource.Source
	logger *slog.Logger
}

func NewDataIngestion(config entity.DataIngestionConfig, source datasource.Source) (*DataIngestion, error) {
	if source == nil {
		return nil, errors.New("source must be set")
	}

	return &DataIngestion{config: config, source: source, logger: logging.New("data_ingestion")}, nil
}

// InitiateDataIngestion exports the source into the feature store file then splits it into the
// train and test files.
func (d *DataIngestion) InitiateDataIngestion(ctx context.Context) (entity.DataIngestionArtifact, error) {
	tbl, err := d.source.Fetch(ctx)
	if err != nil {
		return entity.DataIngestionArtifact{}, errors.Wrap(err, "unable to fetch dataset")
	}
	tbl = tbl.Drop(datasource.IDField)
	if tbl.NumRows() == 0 {
		return entity.DataIngestionArtifact{}, ErrEmptyDataset
	}
	d.logger.Info("fetched dataset", "rows", tbl.NumRows(), "columns", tbl.NumCols())

	err = tbl.WriteCSVFile(d.config.FeatureStoreFilePath)
	if err != nil {
		return entity.DataIngestionArtifact{}, errors.Wrap(err, "unable to export feature store")
	}

	train, test, err := frame.TrainTestSplit(tbl, d.config.TrainTestSplitRatio, d.config.SplitSeed)
	if err != nil {
		return entity.DataIngestionArtifact{}, errors.Wrap(err, "unable to split dataset")
	}

	err = train.WriteCSVFile(d.config.TrainingFilePath)
	if err != nil {
		return entity.DataIngestionArtifact{}, errors.Wrap(err, "unable to write train set")
	}
	err = test.WriteCSVFile(d.config.TestingFilePath)
	if err != nil {
		return entity.DataIngestionArtifact{}, errors.Wrap(err, "unable to write test set")
	}
	d.logger.Info("split dataset", "train_rows", train.NumRows(), "test_rows", test.NumRows())

	return entity.DataIngestionArtifact{
		TrainFilePath: d.config.TrainingFilePath,
		TestFilePath:  d.config.TestingFilePath,
	}, nil
}
