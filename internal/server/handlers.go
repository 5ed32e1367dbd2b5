package server

import (
	"encoding/json"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/askiada/netsec-pipeline/internal/entity"
	"github.com/askiada/netsec-pipeline/internal/estimator"
	"github.com/askiada/netsec-pipeline/internal/frame"
	"github.com/askiada/netsec-pipeline/pkg/pipeline"
)

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Stage  string `json:"stage,omitempty"`
}

type trainResponse struct {
	Message     string  `json:"message"`
	RunID       string  `json:"run_id"`
	ModelName   string  `json:"model_name"`
	TestF1Score float64 `json:"test_f1_score"`
}

type predictResponse struct {
	Status      string    `json:"status"`
	Predictions []float64 `json:"predictions"`
	Output      string    `json:"output"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	resp := errorResponse{Status: statusError, Error: err.Error()}
	if stage, ok := pipeline.StageOf(err); ok {
		resp.Stage = stage
	}
	writeJSON(w, code, resp)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	s.trainMu.Lock()
	defer s.trainMu.Unlock()

	runID := s.nextRunID(time.Now())

	art, err := s.train(r.Context(), runID)
	summary := &runSummary{RunID: runID, Artifact: art}
	if err != nil {
		summary.Err = err.Error()
		summary.Stage, _ = pipeline.StageOf(err)
	}
	s.mu.Lock()
	s.lastRun = summary
	s.mu.Unlock()

	if err != nil {
		s.metrics.trainRuns.WithLabelValues(statusError).Inc()
		s.logger.Error("training failed", "run_id", runID, "error", err)
		writeError(w, http.StatusInternalServerError, err)

		return
	}

	s.metrics.trainRuns.WithLabelValues(statusSuccess).Inc()
	writeJSON(w, http.StatusOK, trainResponse{
		Message:     "Training has been completed",
		RunID:       runID,
		ModelName:   art.ModelName,
		TestF1Score: art.TestMetric.F1Score,
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	code, resp, err := s.predict(w, r)
	if err != nil {
		s.metrics.predictRequests.WithLabelValues(statusError).Inc()
		s.logger.Warn("prediction failed", "error", err)
		writeError(w, code, err)

		return
	}

	s.metrics.predictRequests.WithLabelValues(statusSuccess).Inc()
	s.metrics.predictedRows.Add(float64(len(resp.Predictions)))
	writeJSON(w, code, resp)
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request) (int, *predictResponse, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		return http.StatusBadRequest, nil, errors.Wrap(err, "missing csv file")
	}
	defer file.Close()

	tbl, err := frame.ReadCSV(file)
	if err != nil {
		return http.StatusBadRequest, nil, errors.Wrap(err, "invalid csv file")
	}

	model, err := estimator.LoadNetworkModel(s.config.ModelPath)
	if errors.Is(err, os.ErrNotExist) {
		return http.StatusServiceUnavailable, nil, errors.Wrap(err, "no trained model, run /train first")
	}
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}

	out, err := model.PredictTable(r.Context(), tbl)
	if errors.Is(err, frame.ErrUnknownColumn) || errors.Is(err, frame.ErrEmptyTable) {
		return http.StatusBadRequest, nil, err
	}
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}

	path := filepath.Join(s.config.PredictionOutputDir, uuid.NewString()+".csv")
	err = out.WriteCSVFile(path)
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}

	predictions, err := out.Column(estimator.PredictionColumn)
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}

	return http.StatusOK, &predictResponse{Status: statusSuccess, Predictions: predictions, Output: path}, nil
}

// nextRunID returns a run id whose directory is unused. Callers hold trainMu.
func (s *Server) nextRunID(now time.Time) string {
	base := entity.NewRunID(now)
	runID := base
	for s.runIDTaken(runID) {
		// run ids have a one second resolution
		runID = base + "_" + uuid.NewString()[:8]
	}
	s.usedRunIDs[runID] = struct{}{}

	return runID
}

func (s *Server) runIDTaken(runID string) bool {
	if _, ok := s.usedRunIDs[runID]; ok {
		return true
	}
	_, err := os.Stat(filepath.Join(s.config.ArtifactRoot, runID))

	return err == nil
}

func (s *Server) lastRunSummary() *runSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastRun
}

func (s *Server) visualize(w http.ResponseWriter, _ *http.Request) {
	path, ok := s.latestGraph()
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no pipeline graph yet, run /train first"))
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(err, "unable to read pipeline graph"))
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write(data)
}

// latestGraph prefers the graph of the last run served by this process, then the most recent
// graph found under the artifact root.
func (s *Server) latestGraph() (string, bool) {
	if last := s.lastRunSummary(); last != nil {
		path := filepath.Join(s.config.ArtifactRoot, last.RunID, entity.PipelineGraphFileName)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}

	entries, err := os.ReadDir(s.config.ArtifactRoot)
	if err != nil {
		return "", false
	}

	var latest string
	var latestMod time.Time
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(s.config.ArtifactRoot, e.Name(), entity.PipelineGraphFileName)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest, latestMod = path, info.ModTime()
		}
	}

	return latest, latest != ""
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head><title>Network Security</title></head>
<body>
<h1>Network Security phishing detection</h1>
{{if .LastRun}}
<h2>Last training run {{.LastRun.RunID}}</h2>
{{if .LastRun.Err}}
<p>Failed{{if .LastRun.Stage}} at stage <b>{{.LastRun.Stage}}</b>{{end}}: {{.LastRun.Err}}</p>
{{else}}
<table>
<tr><th></th><th>F1</th><th>Precision</th><th>Recall</th></tr>
<tr><td>train</td><td>{{printf "%.4f" .LastRun.Artifact.TrainMetric.F1Score}}</td><td>{{printf "%.4f" .LastRun.Artifact.TrainMetric.PrecisionScore}}</td><td>{{printf "%.4f" .LastRun.Artifact.TrainMetric.RecallScore}}</td></tr>
<tr><td>test</td><td>{{printf "%.4f" .LastRun.Artifact.TestMetric.F1Score}}</td><td>{{printf "%.4f" .LastRun.Artifact.TestMetric.PrecisionScore}}</td><td>{{printf "%.4f" .LastRun.Artifact.TestMetric.RecallScore}}</td></tr>
</table>
<p>Model: {{.LastRun.Artifact.ModelName}}{{if .LastRun.Artifact.Overfitting}} (train and test scores diverge){{end}}</p>
{{end}}
{{else}}
<p>No training run yet.</p>
{{end}}
<p><a href="/train">Train</a> | <a href="/visualize">Stage graph</a> | <a href="/metrics">Metrics</a></p>
<form action="/predict" method="post" enctype="multipart/form-data">
<input type="file" name="file" accept=".csv">
<input type="submit" value="Predict">
</form>
</body>
</html>
`))

func (s *Server) dashboard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := dashboardTemplate.Execute(w, struct{ LastRun *runSummary }{LastRun: s.lastRunSummary()})
	if err != nil {
		s.logger.Error("unable to render dashboard", "error", err)
	}
}
