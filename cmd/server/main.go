package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"spartan/trainer/internal/api"
	"spartan/trainer/internal/config"
	"spartan/trainer/internal/repository/mongo"
	"spartan/trainer/internal/service"
	"spartan/trainer/internal/storage"
)

// @title Spartan Trainer API
// @version 1.0
// @description Generates periodized running plans and exports upcoming sessions.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	log.Println("Starting Spartan Trainer Server...")

	// A .env file is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARN: Could not read .env file: %v", err)
	}

	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		// Secrets stay out of the log.
		if strings.HasPrefix(pair[0], "SERVER_") || strings.HasPrefix(pair[0], "DATABASE_NAME") || strings.HasPrefix(pair[0], "PLANNER_") || pair[0] == "S3_ENABLED" || pair[0] == "S3_ENDPOINT" {
			log.Printf("ENV: %s = %s", pair[0], pair[1])
		}
	}

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() { // Run index creation in the background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
			log.Printf("ERROR: Index creation failed: %v", err)
			return
		}
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled {
		log.Println("Initializing file storage service...")
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.S3)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
		}
	} else {
		log.Println("S3 disabled; exports are returned inline only.")
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	athleteRepo := mongo.NewMongoAthleteRepository(appDB)
	trainingPlanRepo := mongo.NewMongoTrainingPlanRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	exportJobRepo := mongo.NewMongoExportJobRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	defaults := service.Thresholds{
		PaceSecPerKm: cfg.Planner.DefaultThresholdPaceSecPerKm,
		HrBpm:        cfg.Planner.DefaultThresholdHrBpm,
	}
	athleteService := service.NewAthleteService(athleteRepo, defaults)
	planService := service.NewPlanService(athleteRepo, trainingPlanRepo, sessionRepo, defaults)
	exportService := service.NewExportService(trainingPlanRepo, sessionRepo, exportJobRepo, fileStorage, cfg.Export.URLExpiry)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, athleteService, planService, exportService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// In-flight regenerations get 5 seconds to finish.
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
