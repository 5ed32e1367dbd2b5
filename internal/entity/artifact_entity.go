package entity

type DataIngestionArtifact struct {
	TrainFilePath string
	TestFilePath  string
}

type DataValidationArtifact struct {
	ValidationStatus     bool
	DriftDetected        bool
	ValidTrainFilePath   string
	ValidTestFilePath    string
	InvalidTrainFilePath string
	InvalidTestFilePath  string
	DriftReportFilePath  string
	// Message explains why validation failed. Empty when ValidationStatus is true.
	Message string
}

type DataTransformationArtifact struct {
	TransformedObjectFilePath string
	TransformedTrainFilePath  string
	TransformedTestFilePath   string
}

type ClassificationMetricArtifact struct {
	F1Score        float64 `yaml:"f1_score"`
	PrecisionScore float64 `yaml:"precision_score"`
	RecallScore    float64 `yaml:"recall_score"`
}

type ModelTrainerArtifact struct {
	TrainedModelFilePath string
	ReportFilePath       string
	ModelName            string
	TrainMetric          ClassificationMetricArtifact
	TestMetric           ClassificationMetricArtifact
	Overfitting          bool
}
