// Package server is the web UI shell: it wires uploads, chat questions and
// transcript export to the session state machine over a small JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"docchat/internal/index"
	"docchat/internal/parser"
	"docchat/internal/responder"
	"docchat/internal/session"
)

const sessionCookieName = "sid"

// IndexBuilder is the ingestion pipeline capability the server needs.
type IndexBuilder interface {
	Build(ctx context.Context, docs []parser.Document) (index.Index, error)
}

// ServerConfig contains the collaborators for creating the server.
type ServerConfig struct {
	Logger       zerolog.Logger
	Builder      IndexBuilder
	NewResponder func(index.Index) *responder.Responder
	Sessions     *session.Store
}

// Server handles all HTTP traffic for the chat UI.
type Server struct {
	logger       zerolog.Logger
	builder      IndexBuilder
	newResponder func(index.Index) *responder.Responder
	sessions     *session.Store
	mux          *http.ServeMux
}

// NewServer creates the server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.Builder == nil {
		return nil, errors.New("index builder is required")
	}
	if cfg.NewResponder == nil {
		return nil, errors.New("responder factory is required")
	}

	s := &Server{
		logger:       cfg.Logger,
		builder:      cfg.Builder,
		newResponder: cfg.NewResponder,
		sessions:     cfg.Sessions,
		mux:          http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /{$}", s.page)
	s.mux.HandleFunc("POST /api/v1/documents", s.processDocuments)
	s.mux.HandleFunc("POST /api/v1/chat", s.chat)
	s.mux.HandleFunc("POST /api/v1/chat/fallback", s.chatFallback)
	s.mux.HandleFunc("GET /api/v1/history", s.history)
	s.mux.HandleFunc("GET /api/v1/export", s.exportTranscript)
	s.mux.HandleFunc("GET /healthz", s.healthz)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mux.ServeHTTP(w, r)
	s.logger.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Dur("duration", time.Since(start)).
		Msg("Handled request")
}

// sessionFor resolves the request's session from the sid cookie, creating a
// new session (and setting the cookie) on first interaction.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	var id string
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		id = cookie.Value
	}

	sess, err := s.sessions.GetOrCreate(id)
	if err != nil {
		return nil, err
	}
	if sess.ID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess, nil
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
