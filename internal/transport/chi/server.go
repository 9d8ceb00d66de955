// Package chi exposes the dialogue engine over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nuvet/searchdialog/internal/domain/turn"
	healthuc "github.com/nuvet/searchdialog/internal/usecase/health"
	mergeuc "github.com/nuvet/searchdialog/internal/usecase/merge"
)

// errorCode labels error responses for clients.
type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeValidationFailed errorCode = "validation_failed"
	codeUnauthorized     errorCode = "unauthorized"
	codeInternalError    errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// turnResponse is the reply to a processed turn.
type turnResponse struct {
	TurnID   string             `json:"turn_id"`
	Events   []turn.StateChange `json:"events"`
	Messages []turn.Message     `json:"messages"`
}

// TurnProcessor merges one classified turn into conversation state.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, in turn.Input) (turn.Output, error)
	Reset(ctx context.Context, conversationID string) error
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements the dialogue HTTP API.
type Server struct {
	turns         TurnProcessor
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(turns TurnProcessor, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		turns:  turns,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(mergeuc.ErrEmptyConversationID, http.StatusBadRequest, codeValidationFailed),
	}
	return s
}

// Routes assembles the API router. Cross-cutting middleware is attached
// by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/api/v1/turns", s.ProcessTurn)
	r.Delete("/api/v1/conversations/{conversationID}", s.ResetConversation)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

// ProcessTurn handles POST /api/v1/turns.
func (s *Server) ProcessTurn(w http.ResponseWriter, r *http.Request) {
	var in turn.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if in.ConversationID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "conversation_id is required")
		return
	}
	if in.Intent == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "intent is required")
		return
	}

	out, err := s.turns.ProcessTurn(r.Context(), in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, turnResponse{
		TurnID:   uuid.NewString(),
		Events:   out.Events,
		Messages: out.Messages,
	})
}

// ResetConversation handles DELETE /api/v1/conversations/{conversationID}.
func (s *Server) ResetConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "conversation_id is required")
		return
	}

	if err := s.turns.Reset(r.Context(), conversationID); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	writeJSON(w, httpStatus, map[string]any{
		"status": string(report.Status),
		"checks": checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		mergeuc.ErrEmptyConversationID,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
