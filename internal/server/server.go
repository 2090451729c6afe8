package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/config"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/session"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/storage"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/tts"
)

// Server is the HTTP server for the Rawi story API.
type Server struct {
	cfg      *config.Config
	engine   *session.Engine
	narrator *tts.Narrator
	library  storage.Library
	router   chi.Router
	http     *http.Server
}

// New creates a new Server.
func New(cfg *config.Config, engine *session.Engine, narrator *tts.Narrator, library storage.Library) *Server {
	s := &Server{
		cfg:      cfg,
		engine:   engine,
		narrator: narrator,
		library:  library,
		router:   chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(jsonContentType)

		// Stories
		r.Post("/stories/initialize", s.handleInitialize)
		r.Post("/stories/continue", s.handleContinue)
		r.Get("/stories/story/{id}", s.handleGetStory)
		r.Post("/stories/tts", s.handleTTS)
		r.Post("/stories/edit", s.handleEdit)

		// WebSocket
		r.Get("/stories/story/{id}/ws", s.handleWebSocket)

		// Library
		r.Get("/library", s.handleListLibrary)
		r.Get("/library/{id}", s.handleGetLibraryStory)
		r.Delete("/library/{id}", s.handleDeleteLibraryStory)
	})

	// Generated audio files
	r.Handle("/audio/*", http.StripPrefix("/audio/", http.FileServer(http.Dir(s.narrator.Dir()))))
}

// jsonContentType sets Content-Type to application/json for API routes.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Start begins listening on the given port.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	log.Info("Rawi server starting", "addr", fmt.Sprintf("http://localhost%s", addr))
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.http.Shutdown(shutdownCtx)
}
