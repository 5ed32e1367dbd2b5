package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/netsec-pipeline/pkg/pipeline/model"
)

// Pipeline is a linear pipeline of stages.
type Pipeline struct {
	opts      []model.PipelineOption
	runners   []*runner
	names     map[string]struct{}
	last      *model.StageInfo
	startTime time.Time
	ran       bool
}

type runner struct {
	details *model.StageInfo
	fn      func(ctx context.Context) error
}

// New creates a new pipeline.
func New(opts ...model.PipelineOption) (*Pipeline, error) {
	pipe := &Pipeline{
		opts:  opts,
		names: make(map[string]struct{}),
	}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// Stages returns the registered stages in execution order.
func (p *Pipeline) Stages() []model.StageInfo {
	res := make([]model.StageInfo, 0, len(p.runners))
	for _, r := range p.runners {
		res = append(res, *r.details)
	}

	return res
}

// Run executes every stage in registration order and waits for the last one to finish.
// It returns early on the first error.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.ran {
		return ErrAlreadyRun
	}
	p.ran = true

	if len(p.runners) == 0 {
		return ErrRootMustBeSet
	}

	p.startTime = time.Now()

	runErr := p.runStages(ctx)

	err := p.finishRun()
	if runErr != nil {
		return runErr
	}

	return err
}

func (p *Pipeline) runStages(ctx context.Context) error {
	for _, r := range p.runners {
		// stages are not interrupted, but a cancelled run does not start the next one
		if err := ctx.Err(); err != nil {
			return newStageError(r.details.Name, err)
		}

		start := time.Now()
		stageErr := r.fn(ctx)
		elapsed := time.Since(start)

		for _, opt := range p.opts {
			err := opt.OnStageDone(r.details, elapsed, stageErr)
			if err != nil && stageErr == nil {
				stageErr = errors.Wrap(err, "unable to run stage done function")
			}
		}

		if stageErr != nil {
			return newStageError(r.details.Name, stageErr)
		}
	}

	return nil
}

func (p *Pipeline) finishRun() error {
	total := time.Since(p.startTime)
	for _, opt := range p.opts {
		err := opt.Finish(total)
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}
