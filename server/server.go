// Package server exposes the companion over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/aqua777/ayurveda-companion/schema"
)

// QA is the question-answering surface the server needs. A turn either
// runs against an explicit history supplied by the client, or against a
// stored session.
type QA interface {
	Ask(ctx context.Context, question string, history schema.History) (string, schema.History, error)
	AskSession(ctx context.Context, sessionID, question string) (string, schema.History, error)
}

// Server is the HTTP boundary around a QA implementation.
type Server struct {
	qa     QA
	router *mux.Router
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a Server and registers its routes.
func New(qa QA, opts ...Option) *Server {
	s := &Server{
		qa:     qa,
		router: mux.NewRouter(),
		logger: slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.HandleFunc("/askanythingayurveda", s.handleAsk).Methods(http.MethodPost)
	s.router.HandleFunc("/askanythingayurveda", s.handleAskGet).Methods(http.MethodGet)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type askRequest struct {
	Question  string         `json:"question"`
	History   schema.History `json:"history,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
}

type askResponse struct {
	Answer    string         `json:"answer"`
	History   schema.History `json:"history"`
	SessionID string         `json:"session_id"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		s.writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var (
		answer  string
		history schema.History
		err     error
	)
	if len(req.History) > 0 {
		// The client manages its own transcript; the session store is
		// bypassed for this turn.
		answer, history, err = s.qa.Ask(r.Context(), req.Question, req.History)
	} else {
		answer, history, err = s.qa.AskSession(r.Context(), sessionID, req.Question)
	}
	if err != nil {
		s.logger.Error("turn failed", "session_id", sessionID, "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, askResponse{
		Answer:    answer,
		History:   history,
		SessionID: sessionID,
	})
}

func (s *Server) handleAskGet(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("question")
	if question == "" {
		s.writeError(w, http.StatusBadRequest, "question query parameter is required")
		return
	}

	answer, _, err := s.qa.Ask(r.Context(), question, nil)
	if err != nil {
		s.logger.Error("turn failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"question": question,
		"answer":   answer,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
