package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/netsec-pipeline/pkg/pipeline"
	"github.com/askiada/netsec-pipeline/pkg/pipeline/drawer"
	"github.com/askiada/netsec-pipeline/pkg/pipeline/measure"
)

func TestAddRootStageNilPipe(t *testing.T) {
	t.Parallel()

	_, err := pipeline.AddRootStage(nil, "root stage", func(ctx context.Context) (int, error) {
		return 1, nil
	})
	assert.ErrorIs(t, err, pipeline.ErrPipelineMustBeSet)
}

func TestAddRootStageTwice(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	_, err = pipeline.AddRootStage(pipe, "root stage", func(ctx context.Context) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)

	_, err = pipeline.AddRootStage(pipe, "other root stage", func(ctx context.Context) (int, error) {
		return 1, nil
	})
	assert.ErrorIs(t, err, pipeline.ErrRootAlreadySet)
}

func TestAddStageNilInput(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	_, err = pipeline.AddStage(pipe, "stage", (*pipeline.Stage[int])(nil), func(ctx context.Context, input int) (int, error) {
		return input, nil
	})
	assert.ErrorIs(t, err, pipeline.ErrInputMustBeSet)
}

func TestAddStageNotLinear(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	root, err := pipeline.AddRootStage(pipe, "root", func(ctx context.Context) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)

	_, err = pipeline.AddStage(pipe, "first", root, func(ctx context.Context, input int) (int, error) {
		return input, nil
	})
	require.NoError(t, err)

	_, err = pipeline.AddStage(pipe, "branch", root, func(ctx context.Context, input int) (int, error) {
		return input, nil
	})
	assert.ErrorIs(t, err, pipeline.ErrNotLinear)
}

func TestAddStageDuplicateName(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	root, err := pipeline.AddRootStage(pipe, "root", func(ctx context.Context) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)

	_, err = pipeline.AddStage(pipe, "root", root, func(ctx context.Context, input int) (int, error) {
		return input, nil
	})
	assert.ErrorIs(t, err, pipeline.ErrDuplicateStage)
}

func TestRunWithoutStages(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)
	assert.ErrorIs(t, pipe.Run(context.Background()), pipeline.ErrRootMustBeSet)
}

func TestRunPassesArtifacts(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	var order []string

	root, err := pipeline.AddRootStage(pipe, "ingest", func(ctx context.Context) ([]int, error) {
		order = append(order, "ingest")
		return []int{1, 2, 3}, nil
	})
	require.NoError(t, err)

	sum, err := pipeline.AddStage(pipe, "sum", root, func(ctx context.Context, input []int) (int, error) {
		order = append(order, "sum")
		total := 0
		for _, v := range input {
			total += v
		}

		return total, nil
	})
	require.NoError(t, err)

	label, err := pipeline.AddStage(pipe, "label", sum, func(ctx context.Context, input int) (string, error) {
		order = append(order, "label")
		if input > 5 {
			return "big", nil
		}

		return "small", nil
	})
	require.NoError(t, err)

	_, done := label.Output()
	assert.False(t, done)

	require.NoError(t, pipe.Run(context.Background()))

	got, done := label.Output()
	assert.True(t, done)
	assert.Equal(t, "big", got)
	assert.Equal(t, []string{"ingest", "sum", "label"}, order)
	assert.ErrorIs(t, pipe.Run(context.Background()), pipeline.ErrAlreadyRun)
}

func TestRunStopsOnFirstError(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	lastRan := false

	root, err := pipeline.AddRootStage(pipe, "ingest", func(ctx context.Context) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)

	failing, err := pipeline.AddStage(pipe, "validate", root, func(ctx context.Context, input int) (int, error) {
		return 0, errors.Wrap(assert.AnError, "unable to validate")
	})
	require.NoError(t, err)

	last, err := pipeline.AddStage(pipe, "transform", failing, func(ctx context.Context, input int) (int, error) {
		lastRan = true
		return input, nil
	})
	require.NoError(t, err)

	err = pipe.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)

	stage, ok := pipeline.StageOf(err)
	require.True(t, ok)
	assert.Equal(t, "validate", stage)
	assert.False(t, lastRan)

	_, done := last.Output()
	assert.False(t, done)
}

func TestRunCancelledContext(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	ran := false
	_, err = pipeline.AddRootStage(pipe, "ingest", func(ctx context.Context) (int, error) {
		ran = true
		return 1, nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = pipe.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestRunWithMeasureAndDrawer(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	dotFile := filepath.Join(t.TempDir(), "run", "pipeline.dot")

	pipe, err := pipeline.New(
		measure.PipelineMeasure(msr),
		drawer.PipelineDrawer(drawer.NewDOTDrawer(), msr, dotFile),
	)
	require.NoError(t, err)

	root, err := pipeline.AddRootStage(pipe, "ingest", func(ctx context.Context) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)
	_, err = pipeline.AddStage(pipe, "validate", root, func(ctx context.Context, input int) (int, error) {
		return 0, assert.AnError
	})
	require.NoError(t, err)

	err = pipe.Run(context.Background())
	require.ErrorIs(t, err, assert.AnError)

	assert.True(t, msr.GetMetric("validate").Failed())
	assert.False(t, msr.GetMetric("ingest").Failed())

	content, err := os.ReadFile(dotFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"start" -> "ingest"`)
	assert.Contains(t, string(content), `"ingest" -> "validate"`)
	assert.Contains(t, string(content), `"validate" -> "end"`)
	assert.Contains(t, string(content), `fillcolor="#ff0000"`)
}

func TestStages(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	root, err := pipeline.AddRootStage(pipe, "ingest", func(ctx context.Context) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)
	_, err = pipeline.AddStage(pipe, "validate", root, func(ctx context.Context, input int) (int, error) {
		return input, nil
	})
	require.NoError(t, err)

	stages := pipe.Stages()
	require.Len(t, stages, 2)
	assert.Equal(t, "ingest", stages[0].Name)
	assert.Equal(t, 0, stages[0].Index)
	assert.Equal(t, "validate", stages[1].Name)
	assert.Equal(t, 1, stages[1].Index)
}
