package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/foliochat/foliochat/internal/domain"
	chatuc "github.com/foliochat/foliochat/internal/usecase/chat"
	healthuc "github.com/foliochat/foliochat/internal/usecase/health"
)

const missingQuestionMessage = `Missing "q" in JSON body`

// ChatService answers questions from the corpus.
type ChatService interface {
	Ask(ctx context.Context, question string) (chatuc.Answer, error)
}

// HealthService aggregates component health checks.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server exposes the chat pipeline over HTTP.
type Server struct {
	chat          ChatService
	health        HealthService
	token         string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. token is the inference API token;
// when empty, chat requests are rejected so misconfiguration surfaces at the
// first call instead of as an opaque upstream 401.
func NewServer(chat ChatService, health HealthService, token string, logger *zap.Logger) *Server {
	s := &Server{
		chat:   chat,
		health: health,
		token:  token,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuestion, http.StatusBadRequest, missingQuestionMessage),
		sentinelHandler(domain.ErrMissingToken, http.StatusInternalServerError, "Missing HF_TOKEN env var"),
	}
	return s
}

// RegisterRoutes mounts the API on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.MethodNotAllowed(s.methodNotAllowed)
	r.Post("/api/chat", s.Chat)
	r.Options("/api/chat", s.preflight)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type chatRequest struct {
	Q *string `json:"q"`
}

type chatResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Chat handles POST /api/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	if s.token == "" {
		writeError(w, http.StatusInternalServerError, "Missing HF_TOKEN env var", "")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, missingQuestionMessage, "")
		return
	}
	if req.Q == nil || strings.TrimSpace(*req.Q) == "" {
		writeError(w, http.StatusBadRequest, missingQuestionMessage, "")
		return
	}

	answer, err := s.chat.Ask(r.Context(), *req.Q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Answer:  answer.Text,
		Sources: answer.Sources,
	})
}

// preflight handles OPTIONS /api/chat. The CORS headers themselves are set by
// the middleware on every response.
func (s *Server) preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusMethodNotAllowed)
	_, _ = w.Write([]byte("POST /api/chat"))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":     report.Status,
		"checks":     report.Checks,
		"cache_warm": report.CacheWarm,
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

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{Error: message, Details: details})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, message, "")
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			s.logger.Warn("request rejected", zap.Error(err))
			return
		}
	}
	s.logger.Error("pipeline error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Server error", err.Error())
}
