package drawer

import (
	"io"
	"time"

	"github.com/askiada/netsec-pipeline/pkg/pipeline/measure"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// AddStage adds a stage to the pipeline drawer.
	AddStage(stageName string) error
	// AddLink adds a link between parent and child stages.
	AddLink(parentStageName, childStageName string) error
	// Draw writes the pipeline graph.
	Draw(w io.Writer) error
	// SetTotalTime sets the total time label of the stage.
	SetTotalTime(stageName string, totalTime time.Duration) error
	// AddMeasure adds a measure to the pipeline drawer.
	AddMeasure(measure measure.Measure) error
}
