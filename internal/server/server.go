// Package server wires handlers, middleware and the HTTP server together.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/securenotes/internal/models"
	"github.com/iudanet/securenotes/internal/server/handlers"
	"github.com/iudanet/securenotes/internal/server/middleware"
	"github.com/iudanet/securenotes/internal/server/ratelimit"
	"github.com/iudanet/securenotes/internal/server/storage"
	"github.com/iudanet/securenotes/internal/server/token"
)

// Deps carries everything the router needs
type Deps struct {
	Logger       *slog.Logger
	Sessions     handlers.SessionService
	Notes        storage.NoteStorage
	Codec        *token.Codec
	Health       handlers.Pinger
	LoginLimiter *ratelimit.Limiter
	APILimiter   *ratelimit.Limiter
	Version      string
}

// NewRouter собирает все маршруты и middleware.
// Лимит логина стоит до обработчика: отклоненный запрос
// не доходит до проверки пароля.
func NewRouter(d Deps) http.Handler {
	authHandler := handlers.NewAuthHandler(d.Logger, d.Sessions)
	notesHandler := handlers.NewNotesHandler(d.Logger, d.Notes)
	adminHandler := handlers.NewAdminHandler(d.Logger)
	healthHandler := handlers.NewHealthHandler(d.Logger, d.Health, d.Version)

	authRequired := middleware.AuthMiddleware(d.Logger, d.Codec)
	adminOnly := middleware.RequireRole(d.Logger, models.RoleAdmin)
	loginLimit := middleware.LoginRateLimitMiddleware(d.Logger, d.LoginLimiter)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Health)

	// Публичные маршруты авторизации
	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.Handle("POST /auth/login", loginLimit(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)
	mux.Handle("POST /auth/logout-all", authRequired(http.HandlerFunc(authHandler.LogoutAll)))

	// Заметки: только с валидным access token
	mux.Handle("POST /api/notes", authRequired(http.HandlerFunc(notesHandler.Create)))
	mux.Handle("GET /api/notes", authRequired(http.HandlerFunc(notesHandler.List)))
	mux.Handle("GET /api/notes/{id}", authRequired(http.HandlerFunc(notesHandler.Get)))
	mux.Handle("PUT /api/notes/{id}", authRequired(http.HandlerFunc(notesHandler.Update)))
	mux.Handle("DELETE /api/notes/{id}", authRequired(http.HandlerFunc(notesHandler.Delete)))

	// Административная зона
	mux.Handle("GET /api/admin/dashboard", authRequired(adminOnly(http.HandlerFunc(adminHandler.Dashboard))))

	// Внешняя цепочка: recovery -> logging -> общий rate limit
	var handler http.Handler = mux
	handler = middleware.RateLimitMiddleware(d.Logger, d.APILimiter)(handler)
	handler = middleware.LoggingWithSkip(d.Logger, []string{"/health"})(handler)
	handler = middleware.RecoveryMiddleware(d.Logger)(handler)

	return handler
}

// Server wraps http.Server with sane timeouts
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
}

// New creates the HTTP server listening on addr
func New(addr string, d Deps) *Server {
	return &Server{
		logger: d.Logger,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(d),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Run starts serving and blocks until the server stops
func (s *Server) Run() error {
	s.logger.Info("HTTP server listening", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
