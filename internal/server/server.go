package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"stockroom/internal/config"
	custommiddleware "stockroom/internal/middleware"
	"stockroom/internal/service"
	"stockroom/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB // nil when running on the JSON-file store
}

// NewServer wires the router. products must be backed by the store selected
// in cfg; db is the MySQL pool or nil in file-backed mode.
func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, products service.ProductService, images service.ImageStore) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))

	rateLimiter := custommiddleware.NewRateLimiter(custommiddleware.RateLimitConfig{
		RequestsPerWindow: 300,
		Window:            time.Minute,
	}, logger)
	router.Use(rateLimiter.Handler)

	// Initialize handlers
	productHandler := transport.NewProductHandler(products, logger)
	uploadHandler := transport.NewUploadHandler(images, cfg.Upload.MaxBytes, logger)

	backend := "json-file"
	var pinger transport.Pinger
	if db != nil {
		backend = "mysql"
		pinger = db
	}
	healthHandler := transport.NewHealthHandler(pinger, backend, map[string]string{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Database,
		"backend":  backend,
	}, logger)

	// Register routes
	productHandler.RegisterRoutes(router)
	uploadHandler.RegisterRoutes(router)
	healthHandler.RegisterRoutes(router)

	// Serve stored images under the public uploads root.
	router.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(cfg.Upload.Dir))))

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
