package server

import (
	"fmt"
	"net/http"
	"time"

	"crm/internal/clock"
	"crm/internal/config"
	"crm/internal/database"
	"crm/internal/metrics"
	custommiddleware "crm/internal/middleware"
	"crm/internal/repository"
	"crm/internal/service"
	"crm/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	db      database.Service
	redis   *redis.Client
	metrics *metrics.Registry
}

// NewServer wires repositories, services and handlers into an HTTP server.
// redisClient may be nil, in which case mutations are not rate limited.
func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client, reg *metrics.Registry) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.MetricsMiddleware(reg))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.IsDevelopment()))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := db.Health()
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, map[string]interface{}{
			"status":   health["status"],
			"database": health,
		})
	})
	router.Handle("/metrics", reg.Handler())

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository()
	productRepo := repository.NewProductRepository()
	orderRepo := repository.NewOrderRepository()

	// Initialize services
	pool := db.DB()
	tx := database.NewTxManager(pool)
	clk := clock.System()
	customerService := service.NewCustomerService(tx, pool, customerRepo, clk)
	productService := service.NewProductService(tx, pool, productRepo, clk)
	orderService := service.NewOrderService(tx, pool, orderRepo, customerRepo, productRepo, clk)

	// Mutations share one rate limit bucket per client
	var limiter func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled && redisClient != nil {
		limiter = custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "crm_rate_limit",
		}, logger)
	}

	// Register routes
	transport.RegisterHelloRoute(router)
	transport.NewCustomerHandler(customerService, reg, logger).RegisterRoutes(router, limiter)
	transport.NewProductHandler(productService, reg, logger).RegisterRoutes(router, limiter)
	transport.NewOrderHandler(orderService, reg, logger).RegisterRoutes(router, limiter)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:  cfg,
		logger:  logger,
		db:      db,
		redis:   redisClient,
		metrics: reg,
	}
}

// NewRedisClient returns a client for the configured Redis, or nil when no
// host is configured
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
