// Package server exposes training and prediction over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/askiada/netsec-pipeline/internal/entity"
	"github.com/askiada/netsec-pipeline/internal/logging"
)

// TrainFunc runs one training run identified by runID.
type TrainFunc func(ctx context.Context, runID string) (entity.ModelTrainerArtifact, error)

// Config locates the files the server reads and writes.
type Config struct {
	// ModelPath is the published inference object, loaded on every prediction.
	ModelPath string
	// PredictionOutputDir receives one CSV per prediction request.
	PredictionOutputDir string
	// ArtifactRoot holds the run directories, searched for the latest stage graph.
	ArtifactRoot string
	// MaxUploadBytes bounds the prediction upload size. Zero means 32 MiB.
	MaxUploadBytes int64
}

type Server struct {
	config   Config
	train    TrainFunc
	metrics  *metrics
	registry *prometheus.Registry
	logger   *slog.Logger

	// trainMu serialises training runs, which share the final model directory.
	trainMu    sync.Mutex
	usedRunIDs map[string]struct{}

	mu      sync.RWMutex
	lastRun *runSummary
}

type runSummary struct {
	RunID    string
	Artifact entity.ModelTrainerArtifact
	Err      string
	Stage    string
}

// New creates a server. Its metrics are registered in reg, which /metrics serves.
func New(config Config, train TrainFunc, reg *prometheus.Registry) (*Server, error) {
	if train == nil {
		return nil, errors.New("train function must be set")
	}
	if reg == nil {
		return nil, errors.New("registry must be set")
	}
	if config.MaxUploadBytes == 0 {
		config.MaxUploadBytes = 32 << 20
	}

	m := newMetrics()
	err := m.register(reg)
	if err != nil {
		return nil, err
	}

	return &Server{
		config:     config,
		train:      train,
		metrics:    m,
		registry:   reg,
		logger:     logging.New("server"),
		usedRunIDs: make(map[string]struct{}),
	}, nil
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.dashboard)
	mux.HandleFunc("GET /train", s.handleTrain)
	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("GET /visualize", s.visualize)
	mux.HandleFunc("GET /healthz", healthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return loggingMiddleware(s.logger)(mux)
}
