package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rpupo63/blog-backend/config"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Dependencies are the collaborators the HTTP layer is built on.
type Dependencies struct {
	Database  database.Database
	Tokens    *services.TokenIssuer
	Blacklist services.TokenBlacklist
	Images    services.ImageStore
}

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(c map[string]string, deps Dependencies) (Server, error) {
	if deps.Tokens == nil {
		return Server{}, fmt.Errorf("token issuer is required")
	}

	// Ensure correct port is set
	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()

	router := newRouter(deps, withConfig(c), withStartupTime(startupTime), withLogger(log.Logger))

	// Get timeout values from config with sensible defaults
	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,  // Timeout for reading the entire request
		WriteTimeout: writeTimeout, // Timeout for writing the response
		IdleTimeout:  idleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
	logger      zerolog.Logger
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func withLogger(logger zerolog.Logger) func(*router) {
	return func(r *router) {
		r.logger = logger
	}
}

func newRouter(deps Dependencies, opts ...func(*router)) *chi.Mux {
	router := router{
		config:      map[string]string{},
		startupTime: time.Now(),
		logger:      log.Logger,
	}
	for _, opt := range opts {
		opt(&router)
	}
	if deps.Blacklist == nil {
		deps.Blacklist = services.NewMemoryBlacklist()
	}
	if deps.Images == nil {
		deps.Images = services.DisabledImageStore{}
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(httpLoggingMiddleware(router.logger))
	chiRouter.Use(middleware.StripSlashes)

	// Apply CORS middleware
	acceptedOrigins := config.GetStrings(router.config, "ACCEPTED_ORIGINS")
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   acceptedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	decoder := requestDecoder{
		maxUploadBytes: int64(config.GetInt(router.config, "MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),
	}

	// Initialize all handlers
	handlers := initializeHandlers(deps, decoder)

	// Initialize auth middleware
	authMiddleware := newAuthMiddleware(deps.Tokens, deps.Database.UserRepo())

	authLimit := func(next http.Handler) http.Handler { return next }
	if perMinute := config.GetInt(router.config, "AUTH_RATE_LIMIT_PER_MINUTE", 30); perMinute > 0 {
		authLimit = newIPRateLimiter(perMinute).middleware(router.logger)
	}

	chiRouter.Get("/health", healthHandler(deps.Database, router.startupTime))

	setupRoutes(chiRouter, handlers, authMiddleware, authLimit)

	return chiRouter
}

// healthHandler reports liveness and whether the database answers.
func healthHandler(db database.Database, startupTime time.Time) http.HandlerFunc {
	responder := NewResponder(log.Logger)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status, code := "ok", http.StatusOK
		if err := db.Ping(ctx); err != nil {
			log.Error().Err(err).Msg("health check: database ping failed")
			status, code = "unavailable", http.StatusServiceUnavailable
		}
		responder.WriteJSONWithStatus(w, code, map[string]any{
			"status": status,
			"uptime": time.Since(startupTime).Round(time.Second).String(),
		})
	}
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
