// Package server exposes layout generation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Afinucci/Design-Copilot-sub000/internal/export"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/engine"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/relations"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/requirements"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/spec"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/textgen"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Server serves the generation API.
type Server struct {
	svc     *engine.Service
	addr    string
	maxBody int64
	logger  *zap.Logger
}

// New creates a server for svc listening on addr.
func New(svc *engine.Service, addr string, maxBody int64, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &Server{svc: svc, addr: addr, maxBody: maxBody, logger: logger}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/validate", s.handleValidate)
	mux.HandleFunc("GET /api/reference", s.handleReference)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gmpplanner server starting", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("gmpplanner server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	// Request bodies are JSON; the YAML request parser accepts them as is.
	req, err := spec.Parse(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	l, err := s.svc.Generate(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("generation failed", zap.Error(err))
		}
		writeError(w, status, err)
		return
	}

	if r.URL.Query().Get("format") == "xlsx" {
		data, err := export.Schedule(l)
		if err != nil {
			s.logger.Error("schedule export failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="layout.xlsx"`)
		w.Write(data)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var l facility.Layout
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err := dec.Decode(&l); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding layout: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Validate(&l))
}

func (s *Server) handleReference(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"rooms": s.svc.Table().Records(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps pipeline errors to HTTP statuses: bad input is the
// caller's fault, collaborator failures are upstream failures.
func statusFor(err error) int {
	switch {
	case errors.Is(err, requirements.ErrNoInput), errors.Is(err, requirements.ErrNoRooms):
		return http.StatusBadRequest
	case errors.Is(err, textgen.ErrMalformed), errors.Is(err, relations.ErrLookup):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
