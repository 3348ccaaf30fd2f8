// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/recipewise/server/internal/infrastructure/config"
	"github.com/recipewise/server/internal/infrastructure/http/handlers"
	"github.com/recipewise/server/internal/infrastructure/http/middleware"
	"github.com/recipewise/server/internal/ports/inbound"
)

// Services groups the use cases exposed over HTTP
type Services struct {
	Retrieval inbound.RetrievalService
	Catalog   inbound.CatalogService
	MealPlans inbound.MealPlanService
	Assistant inbound.AssistantService
}

// Server represents the JSON API HTTP server
type Server struct {
	config     *config.Config
	logger     *zap.Logger
	server     *http.Server
	router     *chi.Mux
	services   Services
	verifier   *middleware.TokenVerifier
	limiter    *middleware.IPRateLimiter
	validate   *validator.Validate
	openAPI    *OpenAPIHandler
	instrument func(http.Handler) http.Handler
}

// Option customizes a Server
type Option func(*Server)

// WithInstrumentation wraps every request with the given middleware,
// typically the metrics collector's.
func WithInstrumentation(mw func(http.Handler) http.Handler) Option {
	return func(s *Server) {
		s.instrument = mw
	}
}

// NewServer creates a new API server instance
func NewServer(cfg *config.Config, log *zap.Logger, services Services, opts ...Option) *Server {
	s := &Server{
		config:   cfg,
		logger:   log.Named("api-server"),
		services: services,
		verifier: middleware.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer),
		validate: handlers.NewValidator(),
		openAPI:  NewOpenAPIHandler(log),
	}
	if cfg.RateLimit.Enable {
		s.limiter = middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize, log)
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        otelhttp.NewHandler(s.router, "recipewise-api"),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return s
}

func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if s.instrument != nil {
		r.Use(s.instrument)
	}
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(middleware.CORS(s.config.Server.AllowedOrigins))
	}
	if s.config.Server.EnableCompression {
		r.Use(chimiddleware.Compress(5))
	}
	if s.config.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(s.config.Server.RequestTimeout))
	}

	r.Get("/health", s.handleHealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(middleware.RateLimit(s.limiter))
		}
		r.Use(middleware.JSONOnly())
		r.Use(middleware.Authenticate(s.verifier))
		s.setupAPIV1Routes(r)
	})

	return r
}

func (s *Server) setupAPIV1Routes(r chi.Router) {
	recipeH := handlers.NewRecipeHandlers(s.services.Retrieval, s.services.Catalog, s.validate, s.logger)
	planH := handlers.NewMealPlanHandlers(s.services.MealPlans, s.validate, s.logger)
	aiH := handlers.NewAssistantHandlers(s.services.Assistant, s.validate, s.logger)

	r.Get("/openapi.yaml", s.openAPI.ServeOpenAPISpec)

	r.Route("/recipes", func(r chi.Router) {
		r.Get("/", recipeH.ListRecipes)
		r.Post("/search", recipeH.Search)
		r.Get("/{id}", recipeH.GetRecipe)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser())
			r.Post("/", recipeH.CreateRecipe)
			r.Put("/{id}", recipeH.UpdateRecipe)
			r.Delete("/{id}", recipeH.DeleteRecipe)
			r.Get("/collection/saved", recipeH.ListSaved)
			r.Post("/toggle-save/{id}", recipeH.ToggleSaved)
		})
	})

	r.Route("/meal-plans", func(r chi.Router) {
		r.Use(middleware.RequireUser())
		r.Get("/", planH.ListPlans)
		r.Post("/generate", planH.GeneratePlan)
		r.Get("/personal/current", planH.GetPersonalPlan)
		r.Post("/personal/add", planH.AddToPersonalPlan)
		r.Post("/", planH.CreatePlan)
		r.Get("/{id}", planH.GetPlan)
		r.Put("/{id}", planH.UpdatePlan)
		r.Delete("/{id}", planH.DeletePlan)
	})

	r.Route("/ai", func(r chi.Router) {
		r.Post("/substitute", aiH.Substitute)
		r.Post("/explain", aiH.Explain)
		r.Post("/validate", aiH.Validate)
	})
}

// Handler returns the root handler, including tracing
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves requests until the server is shut down
func (s *Server) Start() error {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))

	if s.limiter != nil {
		ctx, cancel := context.WithCancel(context.Background())
		s.server.RegisterOnShutdown(cancel)
		go s.limiter.Cleanup(ctx, s.config.RateLimit.CleanupInterval)
	}

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","service":%q,"version":%q,"timestamp":%d}`,
		s.config.App.Name, s.config.App.Version, time.Now().Unix())
}
