package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/petspot/petspot-backend/internal/announcement/events"
	"github.com/petspot/petspot-backend/internal/announcement/handler"
	"github.com/petspot/petspot-backend/internal/announcement/repository"
	"github.com/petspot/petspot-backend/internal/announcement/service"
	"github.com/petspot/petspot-backend/internal/announcement/storage"
	"github.com/petspot/petspot-backend/pkg/auth"
	"github.com/petspot/petspot-backend/pkg/config"
	"github.com/petspot/petspot-backend/pkg/database"
	"github.com/petspot/petspot-backend/pkg/httputil"
	"github.com/petspot/petspot-backend/pkg/logger"
	"github.com/petspot/petspot-backend/pkg/messaging"
)

const serviceName = "announcement-service"

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().Msg("starting Announcement Service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	health := map[string]func(ctx context.Context) map[string]string{}

	// Persistence
	var repo service.Repository
	switch cfg.Database.Driver {
	case "memory":
		log.Warn().Msg("using in-memory announcement repository")
		repo = repository.NewMemoryRepository()
	default:
		db, err := database.New(&cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		if err := db.Migrate(ctx, repository.Schema...); err != nil {
			log.Fatal().Err(err).Msg("failed to apply schema")
		}
		repo = repository.NewAnnouncementRepository(db)
		health["database"] = db.Health
	}

	// Photo storage
	var photos storage.PhotoStore
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn().Msg("using in-memory photo storage")
		photos = storage.NewMemoryStore(cfg.Storage.PublicURL)
	default:
		store, err := storage.NewMinIOStore(&cfg.Storage)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create photo storage client")
		}
		if err := store.EnsureBucket(ctx); err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.Storage.Bucket).Msg("failed to ensure photo bucket")
		}
		photos = store
	}

	// Events
	var publisher service.EventPublisher
	if cfg.RabbitMQ.Enabled {
		rmq, err := messaging.New(&cfg.RabbitMQ, "announcement-service", log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		p, err := events.NewAnnouncementEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
		publisher = p
		health["rabbitmq"] = func(context.Context) map[string]string { return rmq.Health() }
	}

	// Service and handlers
	announcementService := service.NewAnnouncementService(repo, photos, publisher, log)
	announcementHandler := handler.NewAnnouncementHandler(announcementService, cfg.Server.MaxPhotoBytes, log)
	jwt := auth.NewManager(&cfg.JWT)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":  "healthy",
			"service": serviceName,
		}
		code := http.StatusOK
		for name, check := range health {
			result := check(r.Context())
			if result["status"] != "up" {
				body["status"] = "degraded"
				code = http.StatusServiceUnavailable
			}
			body[name] = result
		}
		httputil.JSON(w, code, body)
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		announcementHandler.Routes(r, jwt)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
