// Package server wires the application together: store, repositories,
// services, handlers, middleware, and routes. It is the composition root;
// main.go only loads config and calls Start.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/kellyw/taskdeck/internal/auth"
	"github.com/kellyw/taskdeck/internal/config"
	"github.com/kellyw/taskdeck/internal/handler"
	"github.com/kellyw/taskdeck/internal/middleware"
	"github.com/kellyw/taskdeck/internal/repository/dynamo"
	"github.com/kellyw/taskdeck/internal/service"
	"github.com/kellyw/taskdeck/internal/store"
)

// Server holds the router and its dependencies.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
}

// New builds the full dependency chain from configuration: DynamoDB client,
// tables, repositories, services, handlers, routes.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	client, err := store.NewClient(ctx, cfg.AWSRegion, cfg.DynamoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("creating DynamoDB client: %w", err)
	}

	usersTable := store.NewTable(client, cfg.UsersTable, dynamo.UserIndexes())
	todosTable := store.NewTable(client, cfg.TodosTable, dynamo.TodoIndexes())

	userRepo := dynamo.NewUserRepo(usersTable)
	todoRepo := dynamo.NewTodoRepo(todosTable)

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	google := auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	userService := service.NewUserService(userRepo, passwords, logger)
	todoService := service.NewTodoService(todoRepo, logger)
	authService := service.NewAuthService(userRepo, tokens, passwords, logger)

	userHandler := handler.NewUserHandler(userService, logger)
	todoHandler := handler.NewTodoHandler(todoService, logger)
	authHandler := handler.NewAuthHandler(authService, google, cfg.IsProduction(), logger)

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
	}
	s.setupRoutes(userHandler, todoHandler, authHandler, tokens)
	return s, nil
}

func (s *Server) setupRoutes(users *handler.UserHandler, todos *handler.TodoHandler, auths *handler.AuthHandler, tokens *auth.TokenService) {
	r := s.router

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	r.Use(c.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.HandleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/google/url", auths.HandleGoogleAuthURL)
			r.Post("/google", auths.HandleGoogleSignIn)
			r.Post("/login", auths.HandleLogin)
			r.Post("/logout", auths.HandleLogout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", users.HandleList)
			r.Post("/", users.HandleCreate)
			r.Get("/{id}", users.HandleGet)
			r.Put("/{id}", users.HandleUpdate)
			r.Delete("/{id}", users.HandleDelete)
		})

		r.Route("/todos", func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/", todos.HandleList)
			r.Post("/", todos.HandleCreate)
			r.Get("/{id}", todos.HandleGet)
			r.Put("/{id}", todos.HandleUpdate)
			r.Delete("/{id}", todos.HandleDelete)
			r.Post("/{id}/complete", todos.HandleComplete)
		})
	})
}

// Start runs the HTTP server and blocks until a shutdown signal or a fatal
// server error. In-flight requests get 30 seconds to finish on shutdown.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("env", s.cfg.Env),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
