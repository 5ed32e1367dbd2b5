package drawer

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/netsec-pipeline/pkg/pipeline/measure"
	"github.com/askiada/netsec-pipeline/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m         measure.Measure
	fileName  string
	lastStage string
}

func (pd *pipelineDrawer) New() error {
	err := pd.AddStage(model.StartStage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start stage to drawer")
	}
	err = pd.AddStage(model.EndStage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end stage to drawer")
	}
	pd.lastStage = model.StartStage.Name

	return nil
}

func (pd *pipelineDrawer) PrepareStage(parentStage, stage *model.StageInfo) error {
	err := pd.AddStage(stage.Name)
	if err != nil {
		return err
	}
	err = pd.AddLink(parentStage.Name, stage.Name)
	if err != nil {
		return err
	}
	pd.lastStage = stage.Name

	return nil
}

func (pd *pipelineDrawer) OnStageDone(_ *model.StageInfo, _ time.Duration, _ error) error {
	return nil
}

func (pd *pipelineDrawer) Finish(totalDuration time.Duration) error {
	err := pd.AddLink(pd.lastStage, model.EndStage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to link end stage")
	}
	err = pd.SetTotalTime(model.EndStage.Name, totalDuration)
	if err != nil {
		return errors.Wrap(err, "unable to set total time")
	}
	if pd.m != nil {
		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = os.MkdirAll(filepath.Dir(pd.fileName), 0o755)
	if err != nil {
		return errors.Wrapf(err, "unable to create directory for %s", pd.fileName)
	}
	file, err := os.Create(pd.fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", pd.fileName)
	}
	defer file.Close()

	err = pd.Draw(file)
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer draws the stage graph into fileName when the pipeline finishes. When measure is
// set, stages are labelled and coloured by duration. measure must be registered on the pipeline
// before the drawer so it is up to date when the drawer finishes.
func PipelineDrawer(drawer Drawer, measure measure.Measure, fileName string) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, m: measure, fileName: fileName}
}
