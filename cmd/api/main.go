package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classroom-api/config"
	"classroom-api/internal/auth"
	"classroom-api/internal/generation"
	"classroom-api/internal/handlers"
	"classroom-api/internal/jobs"
	"classroom-api/internal/logger"
	"classroom-api/internal/media"
	"classroom-api/internal/middleware"
	"classroom-api/internal/repositories"
	"classroom-api/internal/services"
	"classroom-api/internal/transcription"
	"classroom-api/pkg/blobstore"
	"classroom-api/pkg/docstore"
	"classroom-api/pkg/memorydb"
	"classroom-api/pkg/postgres"

	"github.com/joho/godotenv"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load .env file
	envPaths := []string{
		"../../.env", // From cmd/api/ to the repo root .env
		".env",       // Current directory
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Printf("Loaded .env from: %s", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	appLog := logger.New(cfg.App.Environment, cfg.App.LogLevel)

	ctx := context.Background()

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize Redis (leaderboard cache). The API stays up without it.
	var redisClient *memorydb.RedisClient
	if cfg.Redis.Addr != "" {
		redisClient, err = memorydb.NewRedisClient(ctx, cfg)
		if err != nil {
			appLog.Warnf("Failed to initialize Redis client: %v. Leaderboard caching disabled.", err)
			redisClient = nil
		} else {
			appLog.Info("Redis client initialized successfully")
		}
	} else {
		appLog.Info("REDIS_ADDR not set, leaderboard caching disabled")
	}

	// Initialize Mongo (transcript archive). Optional the same way.
	var archive *docstore.Client
	if cfg.Mongo.URI != "" {
		archive, err = docstore.NewClient(ctx, cfg)
		if err != nil {
			appLog.Warnf("Failed to initialize Mongo client: %v. Transcript archiving disabled.", err)
			archive = nil
		} else {
			appLog.Info("Mongo client initialized successfully")
			defer archive.Close(context.Background())
		}
	} else {
		appLog.Info("MONGO_URI not set, transcript archiving disabled")
	}

	// Object storage for lecture media and solution uploads
	blobs, err := blobstore.NewS3Store(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	// Initialize repositories
	repos := repositories.NewRepositories(db)

	// Background job layer: worker pool plus the ledger-backed dispatcher
	pool := jobs.NewWorkerPool(&jobs.WorkerPoolConfig{
		WorkerCount: cfg.Jobs.Workers,
		QueueSize:   cfg.Jobs.QueueSize,
	}, appLog.WithComponent("worker_pool"))
	pool.Start()
	defer pool.Stop()

	dispatcher := jobs.NewDispatcher(repos.Job, pool, appLog.WithComponent("dispatcher"))

	// External clients and the transcription pipeline
	sttClient := transcription.NewClient(cfg.Transcribe)
	genClient := generation.NewClient(cfg.Generation)
	mediaTool := media.NewFFmpegTool()

	var pipelineArchive transcription.Archive
	if archive != nil {
		pipelineArchive = archive
	}

	pipeline := transcription.NewPipeline(
		transcription.Config{
			ChunkSeconds:       cfg.Jobs.ChunkSeconds,
			MinTailSeconds:     cfg.Jobs.MinTailSeconds,
			MaxDurationSeconds: cfg.Jobs.MaxDurationSeconds,
			MaxConcurrent:      cfg.Jobs.MaxConcurrent,
		},
		blobs,
		mediaTool,
		sttClient,
		genClient,
		repos.Lecture,
		repos.Task,
		pipelineArchive,
		appLog.WithComponent("transcription"),
	)

	// Initialize services
	tokenService := auth.NewTokenService(cfg)
	healthService := services.NewHealthService(db, redisClient)
	authService := services.NewAuthService(repos.User, tokenService)
	lectureService := services.NewLectureService(repos.Lecture, repos.Task, pipeline, dispatcher)
	gradingService := services.NewGradingService(repos.Quiz, blobs, genClient, dispatcher, appLog.WithComponent("grading"))
	leaderboardService := services.NewLeaderboardService(repos.Leaderboard, redisClient, appLog.WithComponent("leaderboard"))

	svcs := services.NewServices(repos, healthService, authService, lectureService, gradingService, leaderboardService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(tokenService)

	// Initialize handlers
	h := &handlers.Handlers{
		Auth:        handlers.NewAuthHandler(svcs.Auth),
		Lecture:     handlers.NewLectureHandler(svcs.Lecture),
		Quiz:        handlers.NewQuizHandler(svcs.Grading),
		Leaderboard: handlers.NewLeaderboardHandler(svcs.Leaderboard),
		Health:      handlers.NewHealthHandler(svcs.Health),
	}
	if archive != nil {
		h.Transcript = handlers.NewTranscriptHandler(archive)
	}

	// Setup router
	router := setupRouter(cfg, h, authMW)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		appLog.Infof("Server starting on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Graceful shutdown with timeout. The deferred pool.Stop drains any
	// queued jobs after in-flight requests finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	appLog.Info("Server exited")
}

func setupRouter(cfg *config.Config, h *handlers.Handlers, authMW *middleware.AuthMiddleware) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.ErrorMiddleware())

	// Health check
	router.GET("/health", h.Health.Check)

	v1 := router.Group("/api/v1")
	{
		// Public routes
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", h.Auth.Register)
			authGroup.POST("/login", h.Auth.Login)
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(authMW.RequireAuth())
		{
			lectures := protected.Group("/lectures")
			{
				lectures.GET("/:id", h.Lecture.GetByID)
				lectures.GET("/:id/tasks", h.Lecture.ListTaskSets)
				lectures.POST("", authMW.RequireTeacher(), h.Lecture.Create)
				lectures.POST("/:id/transcribe", authMW.RequireTeacher(), h.Lecture.Transcribe)
			}

			quizzes := protected.Group("/quizzes")
			{
				quizzes.POST("/:id/solutions/:solution_id/grade", authMW.RequireTeacher(), h.Quiz.Grade)
			}

			rooms := protected.Group("/rooms")
			{
				rooms.GET("/:id/leaderboard", h.Leaderboard.List)
				rooms.GET("/:id/leaderboard/export", authMW.RequireTeacher(), h.Leaderboard.Export)
			}

			if h.Transcript != nil {
				protected.GET("/transcripts", h.Transcript.List)
			}
		}
	}

	return router
}
