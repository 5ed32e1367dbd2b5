package entity

// Training pipeline constants.
const (
	TargetColumn = "Result"
	PipelineName = "NetworkSecurity"
	ArtifactDir  = "Artifacts"

	FileName      = "phisingData.csv"
	TrainFileName = "train.csv"
	TestFileName  = "test.csv"

	RunIDLayout = "01_02_2006_15_04_05"
)

// Data ingestion constants.
const (
	DataIngestionCollectionName      = "NetworkData"
	DataIngestionDatabaseName        = "KRISHAI"
	DataIngestionDirName             = "data_ingestion"
	DataIngestionFeatureStoreDir     = "feature_store"
	DataIngestionIngestedDir         = "ingested"
	DataIngestionTrainTestSplitRatio = 0.2
	DataIngestionSplitSeed           = 42
)

// Data validation constants.
const (
	DataValidationDirName         = "data_validation"
	DataValidationValidDir        = "validated"
	DataValidationInvalidDir      = "invalid"
	DataValidationDriftReportDir  = "drift_report"
	DataValidationDriftReportFile = "report.yaml"
	DataValidationDriftThreshold  = 0.05
)

// Data transformation constants.
const (
	DataTransformationDirName            = "data_transformation"
	DataTransformationTransformedDataDir = "transformed"
	DataTransformationObjectDir          = "transformed_object"
	PreprocessingObjectFileName          = "preprocessing.gob"
	TransformedArrayExt                  = ".mat"

	ImputerNeighbors = 3
	ImputerWeights   = "uniform"
)

// Model trainer constants.
const (
	ModelTrainerDirName              = "model_trainer"
	ModelTrainerTrainedModelDir      = "trained_model"
	ModelFileName                    = "model.gob"
	ModelTrainerReportFileName       = "report.yaml"
	ModelTrainerExpectedScore        = 0.6
	ModelTrainerOverfittingThreshold = 0.05
	FinalModelPreprocessorFileName   = "preprocessor.gob"
	FinalModelFileName               = "model.gob"
	PipelineGraphFileName            = "pipeline.dot"
)
