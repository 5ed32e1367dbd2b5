package server

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

type metrics struct {
	trainRuns       *prometheus.CounterVec
	predictRequests *prometheus.CounterVec
	predictedRows   prometheus.Counter
}

func newMetrics() *metrics {
	return &metrics{
		trainRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netsec",
			Name:      "train_runs_total",
			Help:      "Training runs by outcome.",
		}, []string{"status"}),
		predictRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netsec",
			Name:      "predict_requests_total",
			Help:      "Prediction requests by outcome.",
		}, []string{"status"}),
		predictedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netsec",
			Name:      "predicted_rows_total",
			Help:      "Rows classified by prediction requests.",
		}),
	}
}

func (m *metrics) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.trainRuns, m.predictRequests, m.predictedRows} {
		err := reg.Register(c)
		if err != nil {
			return errors.Wrap(err, "unable to register server metrics")
		}
	}

	return nil
}
