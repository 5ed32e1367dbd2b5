package component

import (
	"context"
	"log/slog"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/netsec-pipeline/internal/classifier"
	"github.com/askiada/netsec-pipeline/internal/entity"
	"github.com/askiada/netsec-pipeline/internal/estimator"
	"github.com/askiada/netsec-pipeline/internal/logging"
	"github.com/askiada/netsec-pipeline/internal/store"
)

// DefaultCandidates are the classifiers compared by the trainer when none is given.
func DefaultCandidates() []classifier.Classifier {
	return []classifier.Classifier{
		classifier.NewLogisticRegression(0.1, 1000, 0.001),
		classifier.NewKNN(5),
	}
}

// TrainerReport is the YAML report written by the trainer.
type TrainerReport struct {
	ModelName   string                              `yaml:"model_name"`
	TrainMetric entity.ClassificationMetricArtifact `yaml:"train_metric"`
	TestMetric  entity.ClassificationMetricArtifact `yaml:"test_metric"`
	Overfitting bool                                `yaml:"overfitting"`
	// Candidates holds the test F1 score of every candidate.
	Candidates map[string]float64 `yaml:"candidates"`
}

type ModelTrainer struct {
	config     entity.ModelTrainerConfig
	candidates []classifier.Classifier
	logger     *slog.Logger
}

// NewModelTrainer uses DefaultCandidates when candidates is empty. Candidate names must be unique.
func NewModelTrainer(config entity.ModelTrainerConfig, candidates ...classifier.Classifier) (*ModelTrainer, error) {
	if len(candidates) == 0 {
		candidates = DefaultCandidates()
	}
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.Name()]; ok {
			return nil, errors.Errorf("duplicate candidate %s", c.Name())
		}
		seen[c.Name()] = struct{}{}
	}

	return &ModelTrainer{config: config, candidates: candidates, logger: logging.New("model_trainer")}, nil
}

type evaluation struct {
	model classifier.Classifier
	train classifier.Scores
	test  classifier.Scores
}

// InitiateModelTrainer fits every candidate on the train array, keeps the best test F1 and
// persists it together with the fitted preprocessor.
func (m *ModelTrainer) InitiateModelTrainer(ctx context.Context, in entity.DataTransformationArtifact) (entity.ModelTrainerArtifact, error) {
	trainX, trainY, err := loadArray(in.TransformedTrainFilePath)
	if err != nil {
		return entity.ModelTrainerArtifact{}, errors.Wrap(err, "unable to load train array")
	}
	testX, testY, err := loadArray(in.TransformedTestFilePath)
	if err != nil {
		return entity.ModelTrainerArtifact{}, errors.Wrap(err, "unable to load test array")
	}
	pre, err := estimator.LoadPreprocessor(in.TransformedObjectFilePath)
	if err != nil {
		return entity.ModelTrainerArtifact{}, err
	}

	report := TrainerReport{Candidates: make(map[string]float64, len(m.candidates))}
	var best *evaluation
	for _, candidate := range m.candidates {
		err = ctx.Err()
		if err != nil {
			return entity.ModelTrainerArtifact{}, err
		}

		var ev *evaluation
		ev, err = evaluate(candidate, trainX, trainY, testX, testY)
		if err != nil {
			return entity.ModelTrainerArtifact{}, errors.Wrapf(err, "unable to evaluate %s", candidate.Name())
		}
		m.logger.Info("evaluated candidate", "model", candidate.Name(), "train_f1", ev.train.F1, "test_f1", ev.test.F1)
		report.Candidates[candidate.Name()] = ev.test.F1
		if best == nil || ev.test.F1 > best.test.F1 {
			best = ev
		}
	}

	report.ModelName = best.model.Name()
	report.TrainMetric = metricArtifact(best.train)
	report.TestMetric = metricArtifact(best.test)
	report.Overfitting = math.Abs(best.train.F1-best.test.F1) > m.config.OverfittingThreshold

	err = store.WriteYAML(m.config.ReportFilePath, report)
	if err != nil {
		return entity.ModelTrainerArtifact{}, errors.Wrap(err, "unable to write trainer report")
	}

	if best.test.F1 < m.config.ExpectedScore {
		return entity.ModelTrainerArtifact{}, errors.Wrapf(ErrModelBelowExpected, "best model %s scored %.4f, expected %.4f",
			best.model.Name(), best.test.F1, m.config.ExpectedScore)
	}
	if report.Overfitting {
		m.logger.Warn("train and test scores diverge", "model", report.ModelName,
			"train_f1", best.train.F1, "test_f1", best.test.F1, "threshold", m.config.OverfittingThreshold)
	}

	nm, err := estimator.New(pre, best.model)
	if err != nil {
		return entity.ModelTrainerArtifact{}, err
	}
	err = nm.Save(m.config.TrainedModelFilePath)
	if err != nil {
		return entity.ModelTrainerArtifact{}, err
	}
	if m.config.FinalModelFilePath != "" {
		err = store.CopyFile(m.config.TrainedModelFilePath, m.config.FinalModelFilePath)
		if err != nil {
			return entity.ModelTrainerArtifact{}, errors.Wrap(err, "unable to publish model")
		}
	}
	if m.config.FinalPreprocessorFilePath != "" {
		err = store.CopyFile(in.TransformedObjectFilePath, m.config.FinalPreprocessorFilePath)
		if err != nil {
			return entity.ModelTrainerArtifact{}, errors.Wrap(err, "unable to publish preprocessor")
		}
	}

	m.logger.Info("trained model", "model", report.ModelName, "test_f1", best.test.F1)

	return entity.ModelTrainerArtifact{
		TrainedModelFilePath: m.config.TrainedModelFilePath,
		ReportFilePath:       m.config.ReportFilePath,
		ModelName:            report.ModelName,
		TrainMetric:          report.TrainMetric,
		TestMetric:           report.TestMetric,
		Overfitting:          report.Overfitting,
	}, nil
}

func evaluate(model classifier.Classifier, trainX *mat.Dense, trainY []float64, testX *mat.Dense, testY []float64) (*evaluation, error) {
	err := model.Fit(trainX, trainY)
	if err != nil {
		return nil, err
	}

	ev := &evaluation{model: model}
	pred, err := model.Predict(trainX)
	if err != nil {
		return nil, err
	}
	ev.train, err = classifier.Score(trainY, pred)
	if err != nil {
		return nil, err
	}

	pred, err = model.Predict(testX)
	if err != nil {
		return nil, err
	}
	ev.test, err = classifier.Score(testY, pred)
	if err != nil {
		return nil, err
	}

	return ev, nil
}

func loadArray(path string) (*mat.Dense, []float64, error) {
	m, err := store.LoadArray(path)
	if err != nil {
		return nil, nil, err
	}
	if _, c := m.Dims(); c < 2 {
		return nil, nil, errors.Errorf("array %s needs features and a target, got %d columns", path, c)
	}
	x, y := SplitTarget(m)

	return x, y, nil
}

func metricArtifact(s classifier.Scores) entity.ClassificationMetricArtifact {
	return entity.ClassificationMetricArtifact{
		F1Score:        s.F1,
		PrecisionScore: s.Precision,
		RecallScore:    s.Recall,
	}
}
