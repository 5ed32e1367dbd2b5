package component

import (
	"context"
	"log/slog"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/netsec-pipeline/internal/entity"
	"github.com/askiada/netsec-pipeline/internal/estimator"
	"github.com/askiada/netsec-pipeline/internal/frame"
	"github.com/askiada/netsec-pipeline/internal/impute"
	"github.com/askiada/netsec-pipeline/internal/logging"
	"github.com/askiada/netsec-pipeline/internal/store"
)

type DataTransformation struct {
	config entity.DataTransformationConfig
	logger *slog.Logger
}

func NewDataTransformation(config entity.DataTransformationConfig) (*DataTransformation, error) {
	if !math.IsNaN(config.Imputer.MissingValues) {
		return nil, errors.Errorf("only NaN missing values can be imputed, got %v", config.Imputer.MissingValues)
	}

	return &DataTransformation{config: config, logger: logging.New("data_transformation")}, nil
}

// InitiateDataTransformation fits the preprocessor on the train features and writes both
// partitions as numeric arrays whose last column is the target.
func (d *DataTransformation) InitiateDataTransformation(ctx context.Context, in entity.DataValidationArtifact) (entity.DataTransformationArtifact, error) {
	if !in.ValidationStatus {
		if in.Message == "" {
			return entity.DataTransformationArtifact{}, ErrInvalidData
		}

		return entity.DataTransformationArtifact{}, errors.Wrap(ErrInvalidData, in.Message)
	}

	train, err := frame.ReadCSVFile(in.ValidTrainFilePath)
	if err != nil {
		return entity.DataTransformationArtifact{}, errors.Wrap(err, "unable to read train set")
	}
	test, err := frame.ReadCSVFile(in.ValidTestFilePath)
	if err != nil {
		return entity.DataTransformationArtifact{}, errors.Wrap(err, "unable to read test set")
	}

	trainY, err := train.Column(d.config.TargetColumn)
	if err != nil {
		return entity.DataTransformationArtifact{}, errors.Wrap(err, "train set has no target")
	}
	testY, err := test.Column(d.config.TargetColumn)
	if err != nil {
		return entity.DataTransformationArtifact{}, errors.Wrap(err, "test set has no target")
	}
	trainY, testY = RemapTarget(trainY), RemapTarget(testY)

	features := train.Drop(d.config.TargetColumn).Columns

	imputer, err := impute.NewKNNImputer(d.config.Imputer.NNeighbors, impute.Weighting(d.config.Imputer.Weights))
	if err != nil {
		return entity.DataTransformationArtifact{}, err
	}
	pre, err := estimator.NewPreprocessor(train, features, imputer)
	if err != nil {
		return entity.DataTransformationArtifact{}, errors.Wrap(err, "unable to fit preprocessor")
	}

	err = ctx.Err()
	if err != nil {
		return entity.DataTransformationArtifact{}, err
	}

	trainX, err := pre.Transform(train)
	if err != nil {
		return entity.DataTransformationArtifact{}, errors.Wrap(err, "unable to transform train set")
	}
	testX, err := pre.Transform(test)
	if err != nil {
		return entity.DataTransformationArtifact{}, errors.Wrap(err, "unable to transform test set")
	}

	err = store.SaveArray(d.config.TransformedTrainFilePath, AppendTarget(trainX, trainY))
	if err != nil {
		return entity.DataTransformationArtifact{}, err
	}
	err = store.SaveArray(d.config.TransformedTestFilePath, AppendTarget(testX, testY))
	if err != nil {
		return entity.DataTransformationArtifact{}, err
	}

	err = pre.Save(d.config.TransformedObjectFilePath)
	if err != nil {
		return entity.DataTransformationArtifact{}, err
	}

	d.logger.Info("transformed dataset", "features", len(features), "train_rows", train.NumRows(), "test_rows", test.NumRows())

	return entity.DataTransformationArtifact{
		TransformedObjectFilePath: d.config.TransformedObjectFilePath,
		TransformedTrainFilePath:  d.config.TransformedTrainFilePath,
		TransformedTestFilePath:   d.config.TransformedTestFilePath,
	}, nil
}

// RemapTarget maps the -1 label to 0 and keeps every other value. Applying it twice gives the
// same result as applying it once.
func RemapTarget(y []float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		if v == -1 {
			v = 0
		}
		out[i] = v
	}

	return out
}

// AppendTarget returns x with y as an extra last column.
func AppendTarget(x *mat.Dense, y []float64) *mat.Dense {
	r, c := x.Dims()
	out := mat.NewDense(r, c+1, nil)
	out.Slice(0, r, 0, c).(*mat.Dense).Copy(x)
	out.SetCol(c, y)

	return out
}

// SplitTarget is the inverse of AppendTarget.
func SplitTarget(m *mat.Dense) (*mat.Dense, []float64) {
	r, c := m.Dims()

	return mat.DenseCopyOf(m.Slice(0, r, 0, c-1)), mat.Col(nil, c-1, m)
}
