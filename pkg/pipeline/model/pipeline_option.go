package model

import "time"

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error
	// PrepareStage runs when a stage is registered, before the pipeline starts.
	PrepareStage(parentStage, stage *StageInfo) error
	// OnStageDone runs after a stage returns. stageErr is the error returned by the stage, if any.
	OnStageDone(stage *StageInfo, elapsed time.Duration, stageErr error) error
	// Finish runs after the pipeline is finished, whether it succeeded or not.
	Finish(totalDuration time.Duration) error
}
