package model

type StageType string

const (
	RootStageType   StageType = "root"
	NormalStageType StageType = "stage"
)

// StageInfo describes a stage registered in a pipeline.
type StageInfo struct {
	Type  StageType
	Name  string
	Index int
}

var (
	StartStage = &StageInfo{Name: "start", Index: -1}
	EndStage   = &StageInfo{Name: "end", Index: -1}
)
