// Package api implements the HTTP service behind `blockplan serve`.
//
// The service exposes a small JSON API over the solve pipeline:
//
//	POST /v1/solve            solve a layout from a JSON request body
//	GET  /v1/rulesets/default the embedded dental ruleset
//	GET  /healthz             liveness probe
//
// Each solve request is tagged with a UUID job id that appears in logs and
// in the response, so a client can correlate a slow solve with server logs.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	bperrors "github.com/planwright/blockplan/pkg/errors"
	"github.com/planwright/blockplan/pkg/pipeline"
	"github.com/planwright/blockplan/pkg/rules"
)

// Server serves the solve API. Construct with NewServer.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer creates a server around a pipeline runner.
// A nil runner gets a cacheless default; a nil logger logs to the default.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	return &Server{runner: runner, logger: logger}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/solve", s.handleSolve)
		r.Get("/rulesets/default", s.handleDefaultRuleset)
	})
	return r
}

// ListenAndServe runs the server until the context is canceled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDefaultRuleset(w http.ResponseWriter, _ *http.Request) {
	reg := rules.Dental()
	records := make([]*rules.RoomTypeRule, 0, reg.Len())
	for _, t := range reg.Types() {
		rec, _ := reg.Lookup(t)
		records = append(records, rec)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":  "dental",
		"rooms": records,
	})
}

// SolveResponse is the JSON body returned by POST /v1/solve.
type SolveResponse struct {
	JobID     string             `json:"job_id"`
	Status    string             `json:"status"`
	InputHash string             `json:"input_hash,omitempty"`
	Solution  json.RawMessage    `json:"solution,omitempty"`
	Conflicts []string           `json:"conflicts,omitempty"`
	Artifacts map[string]string  `json:"artifacts,omitempty"` // format → content (dot/svg only)
	Stats     pipeline.Stats     `json:"stats"`
	CacheInfo pipeline.CacheInfo `json:"cache_info"`
}

// ErrorResponse is the JSON body returned on failure.
type ErrorResponse struct {
	JobID   string `json:"job_id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	jobID := uuid.NewString()
	logger := s.logger.With("job", jobID)

	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			JobID:   jobID,
			Code:    string(bperrors.ErrCodeInvalidInput),
			Message: "invalid request body: " + err.Error(),
		})
		return
	}
	opts.Logger = logger

	logger.Info("solve request",
		"rooms", len(opts.Inventory),
		"plate", [2]int{opts.FloorWidth, opts.FloorHeight})

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		status, resp := errorResponse(jobID, err)
		logger.Warn("solve failed", "code", resp.Code, "err", err)
		writeJSON(w, status, resp)
		return
	}

	resp := SolveResponse{
		JobID:     jobID,
		Status:    string(result.Status),
		InputHash: result.InputHash,
		Stats:     result.Stats,
		CacheInfo: result.CacheInfo,
	}
	for _, c := range result.Conflicts {
		resp.Conflicts = append(resp.Conflicts, c.String())
	}
	if data, ok := result.Artifacts[pipeline.FormatJSON]; ok {
		resp.Solution = data
	}
	for format, data := range result.Artifacts {
		if format == pipeline.FormatJSON {
			continue
		}
		if resp.Artifacts == nil {
			resp.Artifacts = make(map[string]string)
		}
		resp.Artifacts[format] = string(data)
	}

	writeJSON(w, http.StatusOK, resp)
}

// errorResponse maps a pipeline error to an HTTP status and response body.
func errorResponse(jobID string, err error) (int, ErrorResponse) {
	resp := ErrorResponse{
		JobID:   jobID,
		Code:    string(bperrors.GetCode(err)),
		Message: bperrors.UserMessage(err),
	}
	switch {
	case resp.Code == "":
		// Option validation errors are plain fmt errors with no code.
		resp.Code = string(bperrors.ErrCodeInvalidInput)
		return http.StatusBadRequest, resp
	case bperrors.IsConfig(err),
		bperrors.Is(err, bperrors.ErrCodeInvalidRule),
		bperrors.Is(err, bperrors.ErrCodeInvalidRoomType),
		bperrors.Is(err, bperrors.ErrCodeFileNotFound):
		return http.StatusBadRequest, resp
	case bperrors.Is(err, bperrors.ErrCodeTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, resp
	default:
		return http.StatusInternalServerError, resp
	}
}

// logRequests logs each request with its duration and status.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
