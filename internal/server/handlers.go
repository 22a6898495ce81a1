package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/claude/healthlens/internal/analysis"
	"github.com/claude/healthlens/internal/ingest"
	"github.com/claude/healthlens/internal/ingest/csvfile"
	"github.com/claude/healthlens/internal/insights"
	"github.com/claude/healthlens/internal/models"
	"github.com/claude/healthlens/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "healthlens",
		"version":   s.version,
		"timestamp": s.now().UTC(),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	var u models.HealthDataUpload
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	result, err := s.manual.Ingest(r.Context(), u)
	if err != nil {
		s.writeIngestError(w, r, err)
		return
	}

	report := result.Run.Report
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Health data uploaded and analyzed successfully",
		"data_id": result.DataID,
		"summary": map[string]any{
			"steps":       u.Steps,
			"sleepHours":  u.SleepHours,
			"heartRate":   u.HeartRate,
			"calories":    u.Calories,
			"waterIntake": u.Water(),
			"date":        u.Day(result.Run.CreatedAt),
			"aiInsights":  report.Messages,
			"healthScore": report.HealthScore,
		},
	})
}

// uploadResponse flattens the ingest result next to the status field.
type uploadResponse struct {
	Status string `json:"status"`
	*ingest.Result
}

func (s *Server) handleUploadCSV(w http.ResponseWriter, r *http.Request) {
	body, filename, err := csvBody(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	defer body.Close()

	result, err := s.csv.Ingest(r.Context(), body, filename)
	if err != nil {
		s.writeIngestError(w, r, err)
		return
	}
	if result.Message == "" {
		result.Message = "CSV processed successfully"
	}
	writeJSON(w, http.StatusOK, uploadResponse{Status: "success", Result: result})
}

// csvBody returns the uploaded CSV from multipart field "file" or, for any
// other content type, the raw request body.
func csvBody(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, csvfile.MaxSize+1<<20)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, "upload.csv", nil
	}

	f, hdr, err := r.FormFile("file")
	if err != nil {
		return nil, "", errors.New(`multipart upload requires a "file" field`)
	}
	return f, hdr.Filename, nil
}

func (s *Server) writeIngestError(w http.ResponseWriter, r *http.Request, err error) {
	if ingest.IsBadInput(err) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.log.Error("ingest error", "path", r.URL.Path, "user", userInfoFromContext(r).Login, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// latestRun writes the empty response and returns nil when nothing is stored.
func (s *Server) latestRun(w http.ResponseWriter, r *http.Request, empty any) *store.Run {
	run, err := s.store.Latest(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, empty)
		return nil
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil
	}
	return run
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	run := s.latestRun(w, r, map[string]any{"message": "No health data available", "total_records": 0})
	if run == nil {
		return
	}

	total, err := s.store.Count(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	resp := map[string]any{
		"data_id":       run.ID,
		"source":        run.Source,
		"ai_insights":   run.Report.Messages,
		"insights":      run.Report.Insights,
		"health_score":  run.Report.HealthScore,
		"total_records": total,
		"last_updated":  run.CreatedAt,
		"summary":       map[string]float64{},
		"trends":        []analysis.Trend{},
		"anomalies":     []analysis.Anomaly{},
	}
	if run.Result != nil {
		resp["summary"] = run.Result.Summary
		resp["trends"] = run.Result.Trends
		resp["anomalies"] = run.Result.Anomalies
		resp["patterns"] = run.Result.Patterns
	}
	if run.Upload != nil {
		resp["upload"] = run.Upload
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	run := s.latestRun(w, r, insights.Empty())
	if run == nil {
		return
	}
	writeJSON(w, http.StatusOK, run.Report)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	empty := map[string]any{"trends": []analysis.Trend{}, "timeseries": []analysis.TimeseriesRow{}}
	run := s.latestRun(w, r, empty)
	if run == nil {
		return
	}
	if run.Result == nil {
		writeJSON(w, http.StatusOK, empty)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data_id":    run.ID,
		"trends":     run.Result.Trends,
		"timeseries": run.Result.Timeseries,
	})
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit: " + v})
			return
		}
		limit = min(n, maxListLimit)
	}

	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleLatestAnalysis(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.Latest(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no analyses stored yet"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid analysis ID"})
		return
	}

	run, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "analysis not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
