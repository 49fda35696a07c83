// Package api assembles the HTTP server for the Labasi backend.
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labasi/labasi/api/handlers"
	"github.com/labasi/labasi/api/middleware"
	"github.com/labasi/labasi/internal/analyzer"
	"github.com/labasi/labasi/internal/storage"
)

type Server struct {
	router *http.ServeMux
	port   string
}

// NewServer wires routes, handlers and middleware. an may be nil when
// analysis is disabled.
func NewServer(store *storage.Store, an *analyzer.Analyzer, log *slog.Logger, port string) *Server {
	s := &Server{
		router: http.NewServeMux(),
		port:   port,
	}
	s.setupRoutes(handlers.New(store, an, log))
	return s
}

func (s *Server) setupRoutes(h *handlers.Handlers) {
	withCORS := middleware.CORS
	withLogging := middleware.Logging
	withJSON := middleware.JSON

	wrap := func(fn http.HandlerFunc) http.HandlerFunc {
		return withLogging(withCORS(withJSON(fn)))
	}

	// Preflight requests never reach a method-specific pattern, so CORS
	// answers them from a catch-all.
	s.router.HandleFunc("OPTIONS /", withCORS(func(w http.ResponseWriter, r *http.Request) {}))

	s.router.HandleFunc("GET /api/health", withLogging(withJSON(h.Health)))

	s.router.HandleFunc("GET /api/projects", wrap(h.ListProjects))
	s.router.HandleFunc("POST /api/projects", wrap(h.CreateProject))
	s.router.HandleFunc("GET /api/projects/{id}", wrap(h.GetProject))
	s.router.HandleFunc("PUT /api/projects/{id}", wrap(h.UpdateProject))
	s.router.HandleFunc("DELETE /api/projects/{id}", wrap(h.DeleteProject))

	s.router.HandleFunc("GET /api/conversations", wrap(h.ListSessions))
	s.router.HandleFunc("POST /api/conversations", wrap(h.CreateSession))
	s.router.HandleFunc("GET /api/conversations/{id}", wrap(h.GetSession))
	s.router.HandleFunc("DELETE /api/conversations/{id}", wrap(h.DeleteSession))
	s.router.HandleFunc("POST /api/conversations/{id}/end", wrap(h.EndSession))
	s.router.HandleFunc("POST /api/conversations/{id}/messages", wrap(h.AppendMessage))

	s.router.HandleFunc("GET /api/notes", wrap(h.ListNotes))
	s.router.HandleFunc("POST /api/notes", wrap(h.CreateNote))
	s.router.HandleFunc("GET /api/notes/{id}", wrap(h.GetNote))
	s.router.HandleFunc("PUT /api/notes/{id}", wrap(h.UpdateNote))
	s.router.HandleFunc("DELETE /api/notes/{id}", wrap(h.DeleteNote))

	s.router.HandleFunc("GET /api/todos", wrap(h.ListTodos))
	s.router.HandleFunc("POST /api/todos", wrap(h.CreateTodo))
	s.router.HandleFunc("GET /api/todos/{id}", wrap(h.GetTodo))
	s.router.HandleFunc("PUT /api/todos/{id}", wrap(h.UpdateTodo))
	s.router.HandleFunc("DELETE /api/todos/{id}", wrap(h.DeleteTodo))

	s.router.HandleFunc("GET /api/search", wrap(h.Search))
	s.router.HandleFunc("GET /api/stats", wrap(h.Stats))

	s.router.HandleFunc("POST /api/analyze", wrap(h.Analyze))
}

// Handler exposes the routed mux, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until the listener fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.port)
	slog.Info("API server listening", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}
