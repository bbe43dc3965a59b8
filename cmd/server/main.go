package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mkhwan/coach-app/internal/api"
	"mkhwan/coach-app/internal/cache"
	"mkhwan/coach-app/internal/config"
	"mkhwan/coach-app/internal/jobs"
	"mkhwan/coach-app/internal/repository/mongo"
	"mkhwan/coach-app/internal/service"
	"mkhwan/coach-app/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// @title Coach App API
// @version 1.0
// @description API for coaching programs, planning grids, routine blocks and member homework.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	// --- Logger ---
	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("FATAL: Could not initialize logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("starting coach app server")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("database connection established", zap.String("database", cfg.Database.Name))

	// Index creation runs in the background so startup is not blocked.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, appDB)
		logger.Info("index creation completed")
	}()

	// --- Plan Cache ---
	// The cache is optional; the planner runs uncached when Redis is down.
	var planCache service.PlanCache
	cacheCtx, cacheCancel := context.WithTimeout(context.Background(), 5*time.Second)
	planCache, err = cache.NewPlanCache(cacheCtx, cfg.Redis, logger)
	cacheCancel()
	if err != nil {
		logger.Warn("redis unavailable, plan caching disabled", zap.Error(err))
		planCache = nil
	}

	// --- File Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3, logger)
	if err != nil {
		logger.Fatal("failed to initialize S3 storage", zap.Error(err))
	}

	// --- Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	programRepo := mongo.NewMongoProgramRepository(appDB)
	blueprintRepo := mongo.NewMongoBlueprintRepository(appDB)
	blockRepo := mongo.NewMongoRoutineBlockRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	enrollmentRepo := mongo.NewMongoEnrollmentRepository(appDB)
	workoutLogRepo := mongo.NewMongoWorkoutLogRepository(appDB)

	// --- Services ---
	svcs := api.Services{
		Auth:       service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, logger),
		Program:    service.NewProgramService(programRepo, logger),
		Planner:    service.NewPlannerService(programRepo, blueprintRepo, blockRepo, planCache, logger),
		Routine:    service.NewRoutineService(blockRepo, exerciseRepo, logger),
		Exercise:   service.NewExerciseService(exerciseRepo, fileStorage, logger),
		Enrollment: service.NewEnrollmentService(enrollmentRepo, programRepo, logger),
		Homework:   service.NewHomeworkService(workoutLogRepo, blueprintRepo, programRepo, userRepo, logger),
		Progress:   service.NewProgressService(workoutLogRepo, exerciseRepo, enrollmentRepo, programRepo, logger),
	}

	// --- Background Jobs ---
	scheduler := jobs.NewScheduler(enrollmentRepo, logger)
	if err := scheduler.Start(cfg.Jobs.EnrollmentExpirySchedule); err != nil {
		logger.Fatal("failed to start job scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	// --- HTTP Server ---
	router := gin.Default()
	api.SetupRoutes(router, cfg.JWT.Secret, svcs)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen and serve failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exiting")
}

// newLogger builds the zap logger from the log config.
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Dev {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
