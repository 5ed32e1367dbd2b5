package measure

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/netsec-pipeline/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	pm.AddMetric(model.StartStage.Name)
	pm.AddMetric(model.EndStage.Name)

	return nil
}

func (pm *pipelineMeasure) PrepareStage(_, stage *model.StageInfo) error {
	pm.AddMetric(stage.Name)

	return nil
}

func (pm *pipelineMeasure) OnStageDone(stage *model.StageInfo, elapsed time.Duration, stageErr error) error {
	mt := pm.GetMetric(stage.Name)
	if mt == nil {
		return errors.Errorf("no metric for stage %s", stage.Name)
	}
	mt.AddDuration(elapsed)
	mt.SetFailed(stageErr != nil)

	return nil
}

func (pm *pipelineMeasure) Finish(totalDuration time.Duration) error {
	pm.GetMetric(model.EndStage.Name).AddDuration(totalDuration)

	return nil
}

// PipelineMeasure records the duration of every stage, and of the whole run under the end stage.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
