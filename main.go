package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/edunexus-service/internal/ai"
	"github.com/SAP-F-2025/edunexus-service/internal/cache"
	"github.com/SAP-F-2025/edunexus-service/internal/config"
	"github.com/SAP-F-2025/edunexus-service/internal/events"
	"github.com/SAP-F-2025/edunexus-service/internal/handlers"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories/casdoor"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories/memory"
	"github.com/SAP-F-2025/edunexus-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/edunexus-service/internal/services"
	"github.com/SAP-F-2025/edunexus-service/internal/storage"
	"github.com/SAP-F-2025/edunexus-service/internal/utils"
	"github.com/SAP-F-2025/edunexus-service/internal/validator"
	"github.com/SAP-F-2025/edunexus-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, caching disabled", "error", err)
			redisClient = nil
		}
	}
	cacheManager := cache.NewCacheManager(redisClient)

	// Initialize repositories
	var db *gorm.DB
	var repoManager repositories.RepositoryManager
	switch cfg.DatabaseDriver {
	case "memory":
		logger.Warn("Using in-memory repository, data is lost on restart")
		repoManager = memory.NewRepositoryManager()
	default:
		db, err = pkg.InitDatabase(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		repoManager = postgres.NewRepositoryManager(postgres.RepositoryConfig{
			DB:          db,
			RedisClient: redisClient,
		})
	}
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	// File storage for uploaded notes
	files, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	// AI clients; without a key the notebook falls back to local embeddings
	// and note excerpts.
	gemini := ai.NewGeminiClient(cfg.AI, slogLogger)
	var embedder ai.Embedder = gemini
	if cfg.AI.APIKey == "" {
		logger.Warn("AI_API_KEY not set, using local embeddings")
		embedder = ai.NewHashEmbedder()
	}

	// Event bus
	var (
		eventPublisher *events.WatermillPublisher
		subscriber     message.Subscriber
	)
	if len(cfg.Kafka.Brokers) > 0 {
		eventPublisher, err = events.NewKafkaPublisher(cfg.Kafka.Brokers, slogLogger)
		if err != nil {
			log.Fatalf("Failed to create Kafka publisher: %v", err)
		}
		subscriber, err = events.NewKafkaSubscriber(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, slogLogger)
		if err != nil {
			log.Fatalf("Failed to create Kafka subscriber: %v", err)
		}
	} else {
		goChannel := events.NewGoChannel(slogLogger)
		eventPublisher = events.NewWatermillPublisher(goChannel, slogLogger)
		subscriber = goChannel
	}

	// Initialize services
	serviceManager := services.NewServiceManager(services.ServiceDependencies{
		Repo:      repoManager.GetRepository(),
		Cache:     cacheManager,
		Files:     files,
		Publisher: eventPublisher,
		Embedder:  embedder,
		Generator: gemini,
		Logger:    slogLogger,
		Validator: validator.New(),
	})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Notebook indexer follows note approval events
	consumer, err := events.NewConsumer(subscriber, slogLogger)
	if err != nil {
		log.Fatalf("Failed to create event consumer: %v", err)
	}
	serviceManager.Indexer().Register(consumer)

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	go func() {
		if err := consumer.Run(consumerCtx); err != nil {
			logger.Error("Event consumer stopped", "error", err)
		}
	}()

	// Initialize handlers
	verifier := casdoor.NewIdentityVerifier(casdoor.NewCasdoorClient(cfg.Casdoor), cacheManager)
	handlerManager := handlers.NewHandlerManager(serviceManager, verifier, logger)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = handlers.MaxUploadSize

	handlers.SetupMiddleware(router, logger, cfg.CORSOrigins)
	handlerManager.SetupRoutes(router, cfg.APIPrefix)

	if cfg.Storage.Driver == "local" || cfg.Storage.Driver == "" {
		router.Static("/files", cfg.Storage.LocalDir)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	stopConsumer()
	if err := consumer.Close(); err != nil {
		logger.Error("Failed to close event consumer", "error", err)
	}

	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	if err := repoManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to close repositories", "error", err)
	}

	if db == nil && redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited")
}
