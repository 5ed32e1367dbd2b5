// Package trainpipe runs the training stages in order, ingestion to model training, on top of the
// stage pipeline.
package trainpipe

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/askiada/netsec-pipeline/internal/classifier"
	"github.com/askiada/netsec-pipeline/internal/component"
	"github.com/askiada/netsec-pipeline/internal/datasource"
	"github.com/askiada/netsec-pipeline/internal/entity"
	"github.com/askiada/netsec-pipeline/internal/logging"
	"github.com/askiada/netsec-pipeline/internal/schema"
	"github.com/askiada/netsec-pipeline/pkg/pipeline"
	"github.com/askiada/netsec-pipeline/pkg/pipeline/drawer"
	"github.com/askiada/netsec-pipeline/pkg/pipeline/measure"
	"github.com/askiada/netsec-pipeline/pkg/pipeline/model"
)

// Stage names, as reported by pipeline.StageError.
const (
	StageIngestion      = "data_ingestion"
	StageValidation     = "data_validation"
	StageTransformation = "data_transformation"
	StageTrainer        = "model_trainer"
)

type TrainingPipeline struct {
	config     entity.TrainingPipelineConfig
	source     datasource.Source
	schema     *schema.Schema
	seed       int64
	candidates []classifier.Classifier
	durations  *prometheus.HistogramVec
	drawGraph  bool
	logger     *slog.Logger
}

type Option func(tp *TrainingPipeline)

// WithSplitSeed sets the seed of the train/test split.
func WithSplitSeed(seed int64) Option {
	return func(tp *TrainingPipeline) { tp.seed = seed }
}

// WithCandidates replaces the default candidate classifiers.
func WithCandidates(candidates ...classifier.Classifier) Option {
	return func(tp *TrainingPipeline) { tp.candidates = candidates }
}

// WithStageDurations observes every stage duration in durations.
func WithStageDurations(durations *prometheus.HistogramVec) Option {
	return func(tp *TrainingPipeline) { tp.durations = durations }
}

// WithoutGraph disables drawing the stage graph into the run directory.
func WithoutGraph() Option {
	return func(tp *TrainingPipeline) { tp.drawGraph = false }
}

func New(config entity.TrainingPipelineConfig, source datasource.Source, sch *schema.Schema, opts ...Option) (*TrainingPipeline, error) {
	if source == nil {
		return nil, errors.New("source must be set")
	}
	if sch == nil {
		return nil, errors.New("schema must be set")
	}

	tp := &TrainingPipeline{
		config:    config,
		source:    source,
		schema:    sch,
		seed:      entity.DataIngestionSplitSeed,
		drawGraph: true,
		logger:    logging.New("training_pipeline").With("run_id", config.RunID),
	}
	for _, opt := range opts {
		opt(tp)
	}

	return tp, nil
}

// RunPipeline runs every stage of one training run. The first failing stage stops the run and is
// returned as a *pipeline.StageError.
func (tp *TrainingPipeline) RunPipeline(ctx context.Context) (entity.ModelTrainerArtifact, error) {
	ingestion, err := component.NewDataIngestion(entity.NewDataIngestionConfig(tp.config, tp.seed), tp.source)
	if err != nil {
		return entity.ModelTrainerArtifact{}, err
	}
	validation, err := component.NewDataValidation(entity.NewDataValidationConfig(tp.config), tp.schema)
	if err != nil {
		return entity.ModelTrainerArtifact{}, err
	}
	transformation, err := component.NewDataTransformation(entity.NewDataTransformationConfig(tp.config))
	if err != nil {
		return entity.ModelTrainerArtifact{}, err
	}
	trainer, err := component.NewModelTrainer(entity.NewModelTrainerConfig(tp.config), tp.candidates...)
	if err != nil {
		return entity.ModelTrainerArtifact{}, err
	}

	m := measure.NewDefaultMeasure()
	opts := []model.PipelineOption{measure.PipelineMeasure(m)}
	if tp.durations != nil {
		opts = append(opts, measure.PipelinePrometheus(tp.durations))
	}
	if tp.drawGraph {
		opts = append(opts, drawer.PipelineDrawer(drawer.NewDOTDrawer(), m, tp.config.GraphFilePath()))
	}

	pipe, err := pipeline.New(opts...)
	if err != nil {
		return entity.ModelTrainerArtifact{}, errors.Wrap(err, "unable to create pipeline")
	}

	ingested, err := pipeline.AddRootStage(pipe, StageIngestion, ingestion.InitiateDataIngestion)
	if err != nil {
		return entity.ModelTrainerArtifact{}, errors.Wrapf(err, "unable to add stage %s", StageIngestion)
	}
	validated, err := pipeline.AddStage(pipe, StageValidation, ingested, validation.InitiateDataValidation)
	if err != nil {
		return entity.ModelTrainerArtifact{}, errors.Wrapf(err, "unable to add stage %s", StageValidation)
	}
	transformed, err := pipeline.AddStage(pipe, StageTransformation, validated, transformation.InitiateDataTransformation)
	if err != nil {
		return entity.ModelTrainerArtifact{}, errors.Wrapf(err, "unable to add stage %s", StageTransformation)
	}
	trained, err := pipeline.AddStage(pipe, StageTrainer, transformed, trainer.InitiateModelTrainer)
	if err != nil {
		return entity.ModelTrainerArtifact{}, errors.Wrapf(err, "unable to add stage %s", StageTrainer)
	}

	tp.logger.Info("starting training run", "artifact_dir", tp.config.ArtifactDir)
	err = pipe.Run(ctx)
	tp.logDurations(m)
	if err != nil {
		tp.logger.Error("training run failed", "error", err)
		return entity.ModelTrainerArtifact{}, err
	}

	art, _ := trained.Output()
	tp.logger.Info("training run completed", "model", art.ModelName, "test_f1", art.TestMetric.F1Score)

	return art, nil
}

func (tp *TrainingPipeline) logDurations(m measure.Measure) {
	for name, metric := range m.AllMetrics() {
		if name == model.StartStage.Name {
			continue
		}
		tp.logger.Debug("stage duration", "stage", name, "duration", metric.Duration(), "failed", metric.Failed())
	}
}

// Runner starts training runs sharing one source, schema and set of directories.
type Runner struct {
	ArtifactRoot  string
	FinalModelDir string
	Source        datasource.Source
	Schema        *schema.Schema
	Options       []Option
}

// Run runs a new pipeline in the runID directory below ArtifactRoot.
func (r Runner) Run(ctx context.Context, runID string) (entity.ModelTrainerArtifact, error) {
	pc, err := entity.NewTrainingPipelineConfig(r.ArtifactRoot, runID, r.FinalModelDir)
	if err != nil {
		return entity.ModelTrainerArtifact{}, err
	}
	tp, err := New(pc, r.Source, r.Schema, r.Options...)
	if err != nil {
		return entity.ModelTrainerArtifact{}, err
	}

	return tp.RunPipeline(ctx)
}
