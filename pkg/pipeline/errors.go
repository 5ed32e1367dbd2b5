package pipeline

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet = errors.New("pipeline must be set")
	ErrInputMustBeSet    = errors.New("input must be set")
	ErrRootAlreadySet    = errors.New("root stage already set")
	ErrRootMustBeSet     = errors.New("root stage must be set")
	ErrNotLinear         = errors.New("input must be the last registered stage")
	ErrDuplicateStage    = errors.New("stage name already registered")
	ErrAlreadyRun        = errors.New("pipeline has already run")
)

// StageError is returned by Run when a stage fails. It keeps the name of the stage so callers can
// tell where a run aborted.
type StageError struct {
	Stage string
	Err   error
}

func newStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Cause makes StageError compatible with errors.Cause.
func (e *StageError) Cause() error {
	return e.Err
}

// StageOf returns the name of the stage that produced err, if err wraps a *StageError.
func StageOf(err error) (string, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}

	return "", false
}
