package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/reelrec/movies-backend/config"
	"github.com/reelrec/movies-backend/internal/adapter"
	"github.com/reelrec/movies-backend/internal/link"
	"github.com/reelrec/movies-backend/internal/movie"
	"github.com/reelrec/movies-backend/internal/profile"
	"github.com/reelrec/movies-backend/internal/rating"
	"github.com/reelrec/movies-backend/internal/recommender"
	"github.com/reelrec/movies-backend/internal/repository"
	"github.com/reelrec/movies-backend/internal/utils"
	"github.com/reelrec/movies-backend/internal/worker"
	"github.com/reelrec/movies-backend/pkg/database"
	"github.com/reelrec/movies-backend/pkg/logger"
)

func main() {
	// Load configuration from environment variables
	cfg := config.Load()

	// Initialize logger with validation and defaults
	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	appLogger.Info("Starting movies backend service")

	// Connect to database with validation and defaults
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to database: " + err.Error())
	}

	appLogger.Info("Database connection established")

	// Run database migrations for all feature models
	if err := db.AutoMigrate(&movie.Movie{}, &rating.Rating{}, &profile.UserProfile{}, &link.Link{}); err != nil {
		appLogger.Fatal("Failed to migrate database: " + err.Error())
	}

	appLogger.Info("Database migration completed")

	// Initialize GORM-based repositories
	movieRepo := repository.NewGORMMovieRepository(db, appLogger)
	ratingRepo := repository.NewGORMRatingRepository(db, appLogger)
	profileRepo := repository.NewGORMProfileRepository(db, appLogger)
	linkRepo := repository.NewGORMLinkRepository(db, appLogger)

	// Initialize business services with dependency injection
	movieService := movie.NewService(movieRepo, appLogger)
	profileService := profile.NewService(profileRepo, appLogger)
	ratingService := rating.NewService(ratingRepo, profileService, appLogger)
	linkService := link.NewService(linkRepo, appLogger)

	// Build the genre vector space from the movie catalog
	genreSpace, err := movieService.GenreSpace()
	if err != nil {
		appLogger.Fatal("Failed to build genre space: " + err.Error())
	}
	appLogger.Info("Genre space built with " + utils.IntToString(genreSpace.Dim()) + " genres over " + utils.IntToString(genreSpace.Size()) + " movies")

	// Initialize artifact storage and the serving provider
	artifactDir := cfg.Recommender.ArtifactDir
	if artifactDir == "" {
		artifactDir = "./artifacts" // default
	}
	artifactStore, err := recommender.NewFileArtifactStore(artifactDir)
	if err != nil {
		appLogger.Fatal("Failed to initialize artifact store: " + err.Error())
	}

	artifactProvider := recommender.NewProvider()

	// Warm-load previously trained artifacts if present
	if set, err := recommender.LoadArtifactSet(artifactStore); err != nil {
		appLogger.Warn("No served artifacts yet, waiting for first training run: " + err.Error())
	} else if err := artifactProvider.Swap(set); err != nil {
		appLogger.Warn("Persisted artifacts rejected: " + err.Error())
	} else {
		appLogger.Info("Serving persisted artifacts, version " + set.Version)
	}

	// Create adapters to bridge interface compatibility
	ratingStore := adapter.NewRatingServiceToRatingStore(ratingService)
	profileStore := adapter.NewProfileServiceToProfileStore(profileService)

	recommenderService := recommender.NewService(
		artifactProvider,
		ratingStore,
		profileStore,
		genreSpace,
		artifactStore,
		recommender.OrchestratorOptions{
			ColdStartTopN:       parseIntConfig(cfg.Recommender.ColdStartTopN, 0),
			ColdStartThreshold:  parseFloatConfig(cfg.Recommender.ColdStartThreshold, 0),
			ColdStartSampleSize: parseIntConfig(cfg.Recommender.ColdStartSampleSize, 0),
			ScanThreshold:       parseFloatConfig(cfg.Recommender.SimilarityThreshold, 0),
		},
		parseIntConfig(cfg.Recommender.NeighborK, 0),
		appLogger,
	)

	// Initialize HTTP handlers
	movieHandler := movie.NewHandler(movieService)
	ratingHandler := rating.NewHandler(ratingService)
	linkHandler := link.NewHandler(linkService)
	recommenderHandler := recommender.NewHandler(recommenderService)

	// Initialize background worker for periodic retraining
	trainWorker, err := worker.NewTrainWorker(
		&cfg.Worker,
		"model-train",
		recommenderService.Train,
		appLogger,
	)
	if err != nil {
		appLogger.Fatal("Failed to initialize train worker: " + err.Error())
	}

	// Start background processing
	if err := trainWorker.Start(); err != nil {
		appLogger.Error("Failed to start train worker: " + err.Error())
	}

	// Setup HTTP router with middleware
	router := gin.New()

	// Configure standard middleware stack
	router.Use(requestid.New())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
	}))

	// Health check endpoints
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "movies-backend",
		})
	})

	router.GET("/health/detailed", func(c *gin.Context) {
		modelVersion := "none"
		if version, err := recommenderService.ArtifactVersion(); err == nil {
			modelVersion = version
		}

		c.JSON(http.StatusOK, gin.H{
			"status":        "healthy",
			"timestamp":     time.Now(),
			"service":       "movies-backend",
			"train_worker":  trainWorker.IsRunning(),
			"database":      "connected",
			"model_version": modelVersion,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Register feature routes - each feature manages its own routes
		movieHandler.RegisterRoutes(v1)
		ratingHandler.RegisterRoutes(v1)
		linkHandler.RegisterRoutes(v1)
		recommenderHandler.RegisterRoutes(v1)
	}

	// Parse server configuration with defaults
	serverPort := cfg.Server.Port
	if serverPort == "" {
		serverPort = "8080" // default
	}

	serverReadTimeout := 30 * time.Second // default
	if cfg.Server.ReadTimeout != "" {
		if duration, err := time.ParseDuration(cfg.Server.ReadTimeout); err == nil {
			serverReadTimeout = duration
		}
	}

	serverWriteTimeout := 30 * time.Second // default
	if cfg.Server.WriteTimeout != "" {
		if duration, err := time.ParseDuration(cfg.Server.WriteTimeout); err == nil {
			serverWriteTimeout = duration
		}
	}

	serverEnvironment := cfg.Server.Environment
	if serverEnvironment == "" {
		serverEnvironment = "development" // default
	}

	// Start HTTP server
	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
	}

	// Start server in goroutine for graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server: " + err.Error())
		}
	}()

	appLogger.Info("Server started successfully on port " + serverPort + " (" + serverEnvironment + " environment)")

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Stop train worker first
	if err := trainWorker.Stop(); err != nil {
		appLogger.Error("Error stopping train worker: " + err.Error())
	}

	// Shutdown server with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown: " + err.Error())
	}

	appLogger.Info("Server shutdown complete")
}

// parseIntConfig parses an integer config value, falling back on empty
// or malformed input so each component can apply its own default
func parseIntConfig(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func parseFloatConfig(raw string, fallback float64) float64 {
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}
