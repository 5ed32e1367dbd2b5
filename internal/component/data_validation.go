package component

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/netsec-pipeline/internal/entity"
	"github.com/askiada/netsec-pipeline/internal/frame"
	"github.com/askiada/netsec-pipeline/internal/logging"
	"github.com/askiada/netsec-pipeline/internal/schema"
	"github.com/askiada/netsec-pipeline/internal/stats"
	"github.com/askiada/netsec-pipeline/internal/store"
)

// DriftEntry is the drift report line of one column.
type DriftEntry struct {
	PValue      float64 `yaml:"p_value"`
	DriftStatus bool    `yaml:"drift_status"`
}

// DriftReport is the persisted drift report. DriftDetected is set when any column drifted.
type DriftReport struct {
	DriftDetected bool                  `yaml:"drift_detected"`
	Columns       map[string]DriftEntry `yaml:"columns"`
}

type DataValidation struct {
	config entity.DataValidationConfig
	schema *schema.Schema
	logger *slog.Logger
}

func NewDataValidation(config entity.DataValidationConfig, sch *schema.Schema) (*DataValidation, error) {
	if sch == nil {
		return nil, errors.New("schema must be set")
	}

	return &DataValidation{config: config, schema: sch, logger: logging.New("data_validation")}, nil
}

// InitiateDataValidation checks both partitions against the schema and measures the drift between
// them. A schema failure is reported through the artifact, not as an error. Drift never fails
// validation.
func (v *DataValidation) InitiateDataValidation(ctx context.Context, in entity.DataIngestionArtifact) (entity.DataValidationArtifact, error) {
	train, err := frame.ReadCSVFile(in.TrainFilePath)
	if err != nil {
		return entity.DataValidationArtifact{}, errors.Wrap(err, "unable to read train set")
	}
	test, err := frame.ReadCSVFile(in.TestFilePath)
	if err != nil {
		return entity.DataValidationArtifact{}, errors.Wrap(err, "unable to read test set")
	}

	var problems []string
	for _, part := range []struct {
		name string
		tbl  *frame.Table
	}{{"train", train}, {"test", test}} {
		err = ValidateColumns(part.tbl, v.schema)
		if err != nil {
			problems = append(problems, part.name+": "+err.Error())
			v.logger.Error("schema validation failed", "partition", part.name, "error", err)
		}
	}

	err = ctx.Err()
	if err != nil {
		return entity.DataValidationArtifact{}, err
	}

	report, err := DetectDrift(train, test, v.config.DriftThreshold)
	if err != nil {
		return entity.DataValidationArtifact{}, err
	}
	err = store.WriteYAML(v.config.DriftReportFilePath, report)
	if err != nil {
		return entity.DataValidationArtifact{}, errors.Wrap(err, "unable to write drift report")
	}
	drift := report.DriftDetected
	if drift {
		v.logger.Warn("dataset drift detected", "report", v.config.DriftReportFilePath)
	}

	art := entity.DataValidationArtifact{
		ValidationStatus:    len(problems) == 0,
		DriftDetected:       drift,
		DriftReportFilePath: v.config.DriftReportFilePath,
	}

	trainPath, testPath := v.config.ValidTrainFilePath, v.config.ValidTestFilePath
	if art.ValidationStatus {
		art.ValidTrainFilePath, art.ValidTestFilePath = trainPath, testPath
	} else {
		trainPath, testPath = v.config.InvalidTrainFilePath, v.config.InvalidTestFilePath
		art.InvalidTrainFilePath, art.InvalidTestFilePath = trainPath, testPath
		art.Message = strings.Join(problems, "; ")
	}

	err = train.WriteCSVFile(trainPath)
	if err != nil {
		return entity.DataValidationArtifact{}, errors.Wrap(err, "unable to write train set")
	}
	err = test.WriteCSVFile(testPath)
	if err != nil {
		return entity.DataValidationArtifact{}, errors.Wrap(err, "unable to write test set")
	}

	v.logger.Info("validated dataset", "status", art.ValidationStatus, "drift", drift)

	return art, nil
}

// ValidateColumns checks the column count and the presence of every numerical column of the
// schema. The returned error wraps ErrSchemaMismatch.
func ValidateColumns(t *frame.Table, sch *schema.Schema) error {
	if t.NumCols() != len(sch.Columns) {
		return errors.Wrapf(ErrSchemaMismatch, "got %d columns, want %d", t.NumCols(), len(sch.Columns))
	}

	var missing []string
	for _, col := range sch.NumericalColumns {
		if t.ColumnIndex(col) < 0 {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return errors.Wrapf(ErrSchemaMismatch, "missing numerical columns %s", strings.Join(missing, ", "))
	}

	return nil
}

// DetectDrift runs a two-sample KS test on every column shared by both tables. A column drifts
// when its p-value is below threshold. Columns with no value in one of the partitions are
// skipped.
func DetectDrift(base, current *frame.Table, threshold float64) (DriftReport, error) {
	report := DriftReport{Columns: make(map[string]DriftEntry)}
	for _, col := range base.Columns {
		if current.ColumnIndex(col) < 0 {
			continue
		}
		x, err := base.Column(col)
		if err != nil {
			return DriftReport{}, err
		}
		y, err := current.Column(col)
		if err != nil {
			return DriftReport{}, err
		}

		res, err := stats.KSTwoSample(x, y)
		if errors.Is(err, stats.ErrEmptySample) {
			continue
		}
		if err != nil {
			return DriftReport{}, errors.Wrapf(err, "drift test on column %q", col)
		}
		entry := DriftEntry{PValue: res.PValue, DriftStatus: res.Drift(threshold)}
		report.Columns[col] = entry
		report.DriftDetected = report.DriftDetected || entry.DriftStatus
	}

	return report, nil
}
