package pipeline

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/netsec-pipeline/pkg/pipeline/model"
)

// Stage is a registered stage. Its output is available once the stage has run successfully.
type Stage[O any] struct {
	details *model.StageInfo
	output  O
	done    bool
}

// Name returns the stage name.
func (s *Stage[O]) Name() string {
	return s.details.Name
}

// Output returns the artifact produced by the stage and whether the stage completed.
func (s *Stage[O]) Output() (O, bool) {
	return s.output, s.done
}

func prepareStage[O any](pipe *Pipeline, name string, stageType model.StageType, parent *model.StageInfo) (*Stage[O], error) {
	if _, ok := pipe.names[name]; ok {
		return nil, errors.Wrapf(ErrDuplicateStage, "stage %q", name)
	}

	stage := &Stage[O]{
		details: &model.StageInfo{
			Type:  stageType,
			Name:  name,
			Index: len(pipe.runners),
		},
	}

	for _, opt := range pipe.opts {
		err := opt.PrepareStage(parent, stage.details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run prepare stage function")
		}
	}

	pipe.names[name] = struct{}{}
	pipe.last = stage.details

	return stage, nil
}

// AddRootStage registers the first stage of the pipeline. It takes no input artifact.
func AddRootStage[O any](pipe *Pipeline, name string, stageFn func(ctx context.Context) (O, error)) (*Stage[O], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}
	if pipe.last != nil {
		return nil, ErrRootAlreadySet
	}

	stage, err := prepareStage[O](pipe, name, model.RootStageType, model.StartStage)
	if err != nil {
		return nil, err
	}

	pipe.runners = append(pipe.runners, &runner{
		details: stage.details,
		fn: func(ctx context.Context) error {
			out, err := stageFn(ctx)
			if err != nil {
				return err
			}
			stage.output, stage.done = out, true

			return nil
		},
	})

	return stage, nil
}

// AddStage registers a stage consuming the artifact of input. input must be the last stage
// registered in the pipeline.
func AddStage[I any, O any](pipe *Pipeline, name string, input *Stage[I], stageFn func(ctx context.Context, input I) (O, error)) (*Stage[O], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}
	if input == nil {
		return nil, ErrInputMustBeSet
	}
	if pipe.last != input.details {
		return nil, errors.Wrapf(ErrNotLinear, "stage %q", input.details.Name)
	}

	stage, err := prepareStage[O](pipe, name, model.NormalStageType, input.details)
	if err != nil {
		return nil, err
	}

	pipe.runners = append(pipe.runners, &runner{
		details: stage.details,
		fn: func(ctx context.Context) error {
			in, ok := input.Output()
			if !ok {
				return errors.Wrapf(ErrInputMustBeSet, "stage %q has no output", input.details.Name)
			}
			out, err := stageFn(ctx, in)
			if err != nil {
				return err
			}
			stage.output, stage.done = out, true

			return nil
		},
	})

	return stage, nil
}
