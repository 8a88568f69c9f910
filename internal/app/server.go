package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"docchat/internal/api/handlers"
	appMiddleware "docchat/internal/api/middlewares"
	"docchat/internal/config"
	"docchat/internal/core"
	"docchat/internal/core/session"
	"docchat/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, llm core.LLMProvider, extractor core.DocumentExtractor, sessions *session.Store) *Server {
	authService := services.NewAuthService(db)
	chatService := services.NewChatService(db, llm)

	authHandler := handlers.NewAuthHandler(authService, sessions, cfg.JWTSecret)
	docHandler := handlers.NewDocumentHandler(extractor, sessions)
	chatHandler := handlers.NewChatHandler(chatService, sessions)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Generous ceiling: the model call is the only slow operation and has no
	// timeout of its own.
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Serve the chat UI from the web directory
	fileServer := http.FileServer(http.Dir(cfg.WebDir))
	r.Handle("/*", fileServer)

	// API routes
	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTAuth(cfg.JWTSecret, sessions))
			protected.Post("/logout", authHandler.Logout)
			protected.Post("/documents/upload", docHandler.Upload)
			protected.Get("/chat/history", chatHandler.History)
			protected.Post("/chat/ask", chatHandler.Ask)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
