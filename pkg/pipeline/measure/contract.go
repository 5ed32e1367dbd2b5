package measure

import "time"

type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

type Metric interface {
	AddDuration(elapsed time.Duration)
	Duration() time.Duration
	SetFailed(failed bool)
	Failed() bool
}
