// Package httpserver provides the HTTP REST API server for the book
// recommendation service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/readcircle/book-recommendation-service/internal/auth"
	"github.com/readcircle/book-recommendation-service/internal/database"
	"github.com/readcircle/book-recommendation-service/internal/domain"
	"github.com/readcircle/book-recommendation-service/internal/repository"
)

// BookService defines the business operations the HTTP layer exposes.
type BookService interface {
	SearchBooks(ctx context.Context, query string) ([]*domain.Book, error)
	CreateBook(ctx context.Context, userID uuid.UUID, book *domain.Book) (*domain.Book, error)
	Recommend(ctx context.Context, userID uuid.UUID, externalID, comment string) (*domain.Recommendation, error)
	ListRecommendations(ctx context.Context, filter repository.RecommendationFilter) ([]*domain.Recommendation, error)
	ToggleLike(ctx context.Context, userID, recommendationID uuid.UUID) (bool, int64, error)
}

// Server is the HTTP REST API server.
type Server struct {
	router      chi.Router
	httpServer  *http.Server
	svc         BookService
	userRepo    repository.UserRepository
	authManager *auth.Manager
	db          *database.DB
	logger      zerolog.Logger
	validate    *validator.Validate
	corsOrigins []string
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// NewServer creates a new HTTP server with all dependencies.
func NewServer(
	cfg Config,
	svc BookService,
	userRepo repository.UserRepository,
	authManager *auth.Manager,
	db *database.DB,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		svc:         svc,
		userRepo:    userRepo,
		authManager: authManager,
		db:          db,
		logger:      logger.With().Str("component", "http-server").Logger(),
		validate:    validator.New(),
		corsOrigins: cfg.CORSOrigins,
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)
	r.Use(jsonContentTypeMiddleware)

	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health endpoints (no auth)
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)

		r.Get("/books/search", s.searchBooks)
		r.Get("/recommendations", s.listRecommendations)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.authManager))

			r.Post("/books", s.createBook)
			r.Post("/recommendations", s.postRecommendation)
			r.Post("/recommendations/{recommendationID}/like", s.toggleLike)
		})
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status == "healthy" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": health.Status})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status":   "unhealthy",
		"database": health.Status,
		"error":    health.Error,
	})
}

// readinessHandler returns readiness status.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "healthy",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
