package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/straja-ai/rakshak/internal/detect"
	"github.com/straja-ai/rakshak/internal/estimator"
	"github.com/straja-ai/rakshak/internal/logging"
)

const robotsTxt = "User-agent: *\nDisallow: /\n"

// Error details produced by the HTTP layer itself.
const (
	detailInvalidJSON  = "Invalid JSON body"
	detailBodyTooLarge = "Request body too large"
	detailRateLimited  = "Too many requests"
)

type messageRequest struct {
	Message string `json:"message"`
}

type urlRequest struct {
	URL string `json:"url"`
}

type rootResponse struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Description  string   `json:"description"`
	Status       string   `json:"status"`
	ModelsLoaded []string `json:"models_loaded"`
	Endpoints    []string `json:"endpoints"`
}

type healthResponse struct {
	Status       string    `json:"status"`
	ModelsLoaded int       `json:"models_loaded"`
	Timestamp    time.Time `json:"timestamp"`
}

type modelStatusResponse struct {
	Models      map[string]estimator.ArtifactStatus `json:"models"`
	TotalLoaded int                                 `json:"total_loaded"`
}

type errorBody struct {
	Detail string `json:"detail"`
}

func handleRobots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = io.WriteString(w, robotsTxt)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Name:         Name,
		Version:      Version,
		Description:  Description,
		Status:       "active",
		ModelsLoaded: s.svc.Models().Loaded(),
		Endpoints:    scanEndpoints,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "healthy",
		ModelsLoaded: len(s.svc.Models().Loaded()),
		Timestamp:    s.now(),
	})
}

func (s *Server) handleDetectMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := s.svc.DetectMessage(r.Context(), req.Message)
	if err != nil {
		s.writeScanError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleScanURL(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := s.svc.ScanURL(r.Context(), req.URL)
	if err != nil {
		s.writeScanError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDetectJob(w http.ResponseWriter, r *http.Request) {
	var req detect.JobPosting
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := s.svc.DetectJob(r.Context(), req)
	if err != nil {
		s.writeScanError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, _ *http.Request) {
	set := s.svc.Models()
	opts := s.analytics
	opts.ModelsActive = len(set.Loaded())
	opts.ModelInfo = set.Info()
	writeJSON(w, http.StatusOK, s.ledger.Analytics(opts))
}

func (s *Server) handleModelStatus(w http.ResponseWriter, _ *http.Request) {
	set := s.svc.Models()
	writeJSON(w, http.StatusOK, modelStatusResponse{
		Models:      set.Status(),
		TotalLoaded: len(set.Loaded()),
	})
}

// decodeJSON reads the whole body into v. On failure it writes the error
// response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, detailBodyTooLarge)
			return false
		}
		writeDetail(w, http.StatusBadRequest, detailInvalidJSON)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeDetail(w, http.StatusBadRequest, detailInvalidJSON)
		return false
	}
	return true
}

// writeScanError maps a detect error onto its status code. Only the
// caller-facing detail is sent; the cause is logged.
func (s *Server) writeScanError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	fields := []logging.Field{
		logging.String("path", r.URL.Path),
		logging.Int("status", status),
		logging.Error(err),
	}
	switch status {
	case http.StatusInternalServerError:
		s.logger.Error("scan failed", fields...)
	case http.StatusServiceUnavailable:
		s.logger.Warn("scan unavailable", fields...)
	}
	writeDetail(w, status, detect.Detail(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, detect.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, detect.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
