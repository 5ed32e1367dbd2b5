package measure

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/askiada/netsec-pipeline/pkg/pipeline/model"
)

// NewStageHistogram creates the histogram observed by PipelinePrometheus. Callers register it.
func NewStageHistogram(namespace string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_stage_duration_seconds",
		Help:      "Duration of pipeline stages.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"stage", "status"})
}

const (
	statusOK    = "ok"
	statusError = "error"
)

type pipelinePrometheus struct {
	durations *prometheus.HistogramVec
	// failed is set once any stage returns an error. The end sample carries it.
	failed bool
}

func (pp *pipelinePrometheus) New() error {
	pp.failed = false

	return nil
}

func (pp *pipelinePrometheus) PrepareStage(_, _ *model.StageInfo) error { return nil }

func (pp *pipelinePrometheus) OnStageDone(stage *model.StageInfo, elapsed time.Duration, stageErr error) error {
	status := statusOK
	if stageErr != nil {
		status = statusError
		pp.failed = true
	}
	pp.durations.WithLabelValues(stage.Name, status).Observe(elapsed.Seconds())

	return nil
}

func (pp *pipelinePrometheus) Finish(totalDuration time.Duration) error {
	status := statusOK
	if pp.failed {
		status = statusError
	}
	pp.durations.WithLabelValues(model.EndStage.Name, status).Observe(totalDuration.Seconds())

	return nil
}

// PipelinePrometheus observes stage durations in a histogram labelled by stage and status.
func PipelinePrometheus(durations *prometheus.HistogramVec) model.PipelineOption {
	return &pipelinePrometheus{durations: durations}
}
