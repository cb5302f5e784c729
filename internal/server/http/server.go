// Package httpserver provides the HTTP REST API of the procurement service.
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
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/helixir/procurement-service/internal/database"
	"github.com/helixir/procurement-service/internal/domain"
	"github.com/helixir/procurement-service/internal/observability"
	"github.com/helixir/procurement-service/internal/repository"
	"github.com/helixir/procurement-service/internal/service"
)

// SupplierService is the supplier business layer used by the handlers.
type SupplierService interface {
	GetByID(ctx context.Context, id int64) (*domain.Supplier, error)
	GetAll(ctx context.Context, opts repository.ListOptions) ([]*domain.Supplier, error)
	Create(ctx context.Context, payload domain.SupplierCreate) (*domain.Supplier, error)
	Update(ctx context.Context, id int64, payload domain.SupplierUpdate) (*domain.Supplier, error)
	Delete(ctx context.Context, id int64) error
	SearchByName(ctx context.Context, name string, page repository.Page) ([]*domain.Supplier, error)
	FindByTaxID(ctx context.Context, nit string) (*domain.Supplier, error)
}

// PurchaseService is the purchase business layer used by the handlers.
type PurchaseService interface {
	GetByID(ctx context.Context, id int64) (*domain.Purchase, error)
	GetAll(ctx context.Context, opts repository.ListOptions) ([]*domain.Purchase, error)
	GetBySupplier(ctx context.Context, supplierID int64, page repository.Page) ([]*domain.Purchase, error)
	Create(ctx context.Context, payload domain.PurchaseCreate) (*domain.Purchase, error)
	Update(ctx context.Context, id int64, payload domain.PurchaseUpdate) (*domain.Purchase, error)
	Delete(ctx context.Context, id int64) error
}

// Compile-time interface verification.
var (
	_ SupplierService = (*service.SupplierService)(nil)
	_ PurchaseService = (*service.PurchaseService)(nil)
	_ HealthChecker   = (*database.DB)(nil)
)

// HealthChecker reports the state of the connection pool.
type HealthChecker interface {
	Health(ctx context.Context) database.HealthStatus
}

// Server is the HTTP REST API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	suppliers  SupplierService
	purchases  PurchaseService
	health     HealthChecker
	validate   *validator.Validate
	limiter    *rate.Limiter
	corsOrigin []string
	metrics    *observability.Metrics
	logger     zerolog.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// CORSAllowedOrigins lists allowed origins; "*" allows any. Empty disables CORS headers.
	CORSAllowedOrigins []string
	// RateLimitRPS is the global request rate. Zero disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewServer creates a new HTTP server with all dependencies. metrics may be nil.
func NewServer(
	cfg Config,
	suppliers SupplierService,
	purchases PurchaseService,
	health HealthChecker,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		suppliers:  suppliers,
		purchases:  purchases,
		health:     health,
		validate:   newValidator(),
		corsOrigin: cfg.CORSAllowedOrigins,
		metrics:    metrics,
		logger:     observability.WithComponent(logger, "http-server"),
	}
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = int(cfg.RateLimitRPS)
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), max(burst, 1))
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
	r.Use(requestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(s.accessLogMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(jsonContentTypeMiddleware)

	// Health endpoints (not rate limited)
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimitMiddleware)

		r.Route("/proveedores", func(r chi.Router) {
			r.Post("/", s.createSupplier)
			r.Get("/", s.listSuppliers)
			r.Get("/buscar/nombre", s.searchSuppliers)
			r.Get("/nit/{nit}", s.getSupplierByTaxID)
			r.Get("/{id}", s.getSupplier)
			r.Put("/{id}", s.updateSupplier)
			r.Delete("/{id}", s.deleteSupplier)
		})

		r.Route("/compras-proveedor", func(r chi.Router) {
			r.Post("/", s.createPurchase)
			r.Get("/", s.listPurchases)
			r.Get("/proveedor/{id}", s.listSupplierPurchases)
			r.Get("/{id}", s.getPurchase)
			r.Put("/{id}", s.updatePurchase)
			r.Delete("/{id}", s.deletePurchase)
		})
	})

	return r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server. It returns http.ErrServerClosed after Shutdown.
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
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessHandler reports ready only while the database answers.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	health := s.health.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ready",
		"database": health,
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
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
