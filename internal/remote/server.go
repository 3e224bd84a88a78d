package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/profdiff/internal/engine"
	"github.com/rshade/profdiff/internal/logging"
)

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

type profilesResponse struct {
	Profiles []engine.ProfileInfo `json:"profiles"`
}

type fieldsResponse struct {
	Object string             `json:"object"`
	Fields []engine.DetailRow `json:"fields"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server serves an engine.Service over HTTP.
type Server struct {
	svc    engine.Service
	mux    *http.ServeMux
	logger zerolog.Logger
}

// NewServer creates a server for svc. It logs with the logger in ctx.
func NewServer(ctx context.Context, svc engine.Service) *Server {
	s := &Server{
		svc:    svc,
		mux:    http.NewServeMux(),
		logger: logging.FromContext(ctx).With().Str("component", "server").Logger(),
	}
	s.mux.HandleFunc("GET "+PathProfiles, s.handleProfiles)
	s.mux.HandleFunc("GET "+PathCompare, s.handleCompare)
	s.mux.HandleFunc("GET "+PathFields, s.handleFields)
	s.mux.HandleFunc("GET "+PathHealth, s.handleHealth)
	return s
}

// Handler returns the HTTP handler with request logging and trace IDs.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		traceID := r.Header.Get("X-Trace-Id")
		if traceID == "" {
			traceID = logging.NewID()
		}
		ctx := logging.ContextWithTraceID(r.Context(), traceID)
		ctx = s.logger.WithContext(ctx)
		w.Header().Set("X-Trace-Id", traceID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		s.mux.ServeHTTP(rec, r.WithContext(ctx))

		s.logger.Debug().Ctx(ctx).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request served")
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	s.logger.Info().Msg("server stopped")
	return nil
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.svc.ListProfiles(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if profiles == nil {
		profiles = []engine.ProfileInfo{}
	}
	s.writeJSON(w, r, http.StatusOK, profilesResponse{Profiles: profiles})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.svc.Compare(r.Context(), q.Get("profile1"), q.Get("profile2"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	object := q.Get("object")
	rows, err := s.svc.FetchDetail(r.Context(), q.Get("profile1"), q.Get("profile2"), object)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []engine.DetailRow{}
	}
	s.writeJSON(w, r, http.StatusOK, fieldsResponse{Object: object, Fields: rows})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Code: engine.CodeInternal, Message: "internal error"}
	var svcErr *engine.ServiceError
	if errors.As(err, &svcErr) {
		resp.Code = svcErr.Code
		if svcErr.Message != "" {
			resp.Message = svcErr.Message
		}
	}

	status := statusForCode(resp.Code)
	event := s.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.Ctx(r.Context()).Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")

	s.writeJSON(w, r, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug().Ctx(r.Context()).Err(err).Msg("writing response")
	}
}

func statusForCode(code string) int {
	switch code {
	case engine.CodeInvalidRequest:
		return http.StatusBadRequest
	case engine.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type statusRecorder struct {
	http.ResponseWriter

	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
