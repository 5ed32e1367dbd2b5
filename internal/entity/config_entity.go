package entity

import (
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// NewRunID formats t as a run identifier.
func NewRunID(t time.Time) string {
	return t.Format(RunIDLayout)
}

// TrainingPipelineConfig is the run-level configuration every stage config derives from.
type TrainingPipelineConfig struct {
	RunID           string
	ArtifactRootDir string
	PipelineName    string
	ArtifactDir     string
	// FinalModelDir receives a copy of the preprocessor and the model. Empty disables the copy.
	FinalModelDir string
}

// NewTrainingPipelineConfig creates the run configuration. Every run must use its own runID so
// concurrent or successive runs never write into the same directory.
func NewTrainingPipelineConfig(artifactRoot, runID, finalModelDir string) (TrainingPipelineConfig, error) {
	if runID == "" {
		return TrainingPipelineConfig{}, errors.New("run id must be set")
	}
	if strings.ContainsAny(runID, `/\`) || runID == "." || runID == ".." {
		return TrainingPipelineConfig{}, errors.Errorf("invalid run id %q", runID)
	}
	if artifactRoot == "" {
		artifactRoot = ArtifactDir
	}

	return TrainingPipelineConfig{
		RunID:           runID,
		ArtifactRootDir: artifactRoot,
		PipelineName:    PipelineName,
		ArtifactDir:     filepath.Join(artifactRoot, runID),
		FinalModelDir:   finalModelDir,
	}, nil
}

// GraphFilePath is where the executed stage graph of the run is drawn.
func (c TrainingPipelineConfig) GraphFilePath() string {
	return filepath.Join(c.ArtifactDir, PipelineGraphFileName)
}

type DataIngestionConfig struct {
	DataIngestionDir     string
	FeatureStoreFilePath string
	TrainingFilePath     string
	TestingFilePath      string
	TrainTestSplitRatio  float64
	SplitSeed            int64
	CollectionName       string
	DatabaseName         string
}

func NewDataIngestionConfig(pc TrainingPipelineConfig, seed int64) DataIngestionConfig {
	dir := filepath.Join(pc.ArtifactDir, DataIngestionDirName)

	return DataIngestionConfig{
		DataIngestionDir:     dir,
		FeatureStoreFilePath: filepath.Join(dir, DataIngestionFeatureStoreDir, FileName),
		TrainingFilePath:     filepath.Join(dir, DataIngestionIngestedDir, TrainFileName),
		TestingFilePath:      filepath.Join(dir, DataIngestionIngestedDir, TestFileName),
		TrainTestSplitRatio:  DataIngestionTrainTestSplitRatio,
		SplitSeed:            seed,
		CollectionName:       DataIngestionCollectionName,
		DatabaseName:         DataIngestionDatabaseName,
	}
}

type DataValidationConfig struct {
	DataValidationDir    string
	ValidTrainFilePath   string
	ValidTestFilePath    string
	InvalidTrainFilePath string
	InvalidTestFilePath  string
	DriftReportFilePath  string
	DriftThreshold       float64
}

func NewDataValidationConfig(pc TrainingPipelineConfig) DataValidationConfig {
	dir := filepath.Join(pc.ArtifactDir, DataValidationDirName)

	return DataValidationConfig{
		DataValidationDir:    dir,
		ValidTrainFilePath:   filepath.Join(dir, DataValidationValidDir, TrainFileName),
		ValidTestFilePath:    filepath.Join(dir, DataValidationValidDir, TestFileName),
		InvalidTrainFilePath: filepath.Join(dir, DataValidationInvalidDir, TrainFileName),
		InvalidTestFilePath:  filepath.Join(dir, DataValidationInvalidDir, TestFileName),
		DriftReportFilePath:  filepath.Join(dir, DataValidationDriftReportDir, DataValidationDriftReportFile),
		DriftThreshold:       DataValidationDriftThreshold,
	}
}

// ImputerParams are the KNN imputer parameters.
type ImputerParams struct {
	NNeighbors    int
	Weights       string
	MissingValues float64
}

type DataTransformationConfig struct {
	DataTransformationDir     string
	TransformedTrainFilePath  string
	TransformedTestFilePath   string
	TransformedObjectFilePath string
	TargetColumn              string
	Imputer                   ImputerParams
}

func NewDataTransformationConfig(pc TrainingPipelineConfig) DataTransformationConfig {
	dir := filepath.Join(pc.ArtifactDir, DataTransformationDirName)

	cfg := DataTransformationConfig{
		DataTransformationDir:     dir,
		TransformedTrainFilePath:  filepath.Join(dir, DataTransformationTransformedDataDir, replaceExt(TrainFileName, TransformedArrayExt)),
		TransformedTestFilePath:   filepath.Join(dir, DataTransformationTransformedDataDir, replaceExt(TestFileName, TransformedArrayExt)),
		TransformedObjectFilePath: filepath.Join(dir, DataTransformationObjectDir, PreprocessingObjectFileName),
		TargetColumn:              TargetColumn,
		Imputer: ImputerParams{
			NNeighbors:    ImputerNeighbors,
			Weights:       ImputerWeights,
			MissingValues: math.NaN(),
		},
	}

	return cfg
}

type ModelTrainerConfig struct {
	ModelTrainerDir           string
	TrainedModelFilePath      string
	ReportFilePath            string
	// FinalModelFilePath and FinalPreprocessorFilePath are published together, only when a
	// model passes the expected score.
	FinalModelFilePath        string
	FinalPreprocessorFilePath string
	ExpectedScore             float64
	OverfittingThreshold      float64
}

func NewModelTrainerConfig(pc TrainingPipelineConfig) ModelTrainerConfig {
	dir := filepath.Join(pc.ArtifactDir, ModelTrainerDirName)

	cfg := ModelTrainerConfig{
		ModelTrainerDir:      dir,
		TrainedModelFilePath: filepath.Join(dir, ModelTrainerTrainedModelDir, ModelFileName),
		ReportFilePath:       filepath.Join(dir, ModelTrainerReportFileName),
		ExpectedScore:        ModelTrainerExpectedScore,
		OverfittingThreshold: ModelTrainerOverfittingThreshold,
	}
	if pc.FinalModelDir != "" {
		cfg.FinalModelFilePath = filepath.Join(pc.FinalModelDir, FinalModelFileName)
		cfg.FinalPreprocessorFilePath = filepath.Join(pc.FinalModelDir, FinalModelPreprocessorFileName)
	}

	return cfg
}

func replaceExt(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}
