package main

import (
	"context"
	"fmt"
	"os"

	"github.com/airpen/airpen-backend/internal/clients/assemblyai"
	"github.com/airpen/airpen-backend/internal/clients/gemini"
	redisclient "github.com/airpen/airpen-backend/internal/clients/redis"
	"github.com/airpen/airpen-backend/internal/db"
	"github.com/airpen/airpen-backend/internal/handlers"
	"github.com/airpen/airpen-backend/internal/logger"
	"github.com/airpen/airpen-backend/internal/middleware"
	"github.com/airpen/airpen-backend/internal/repos"
	"github.com/airpen/airpen-backend/internal/server"
	"github.com/airpen/airpen-backend/internal/services"
	"github.com/airpen/airpen-backend/internal/sse"
	"github.com/airpen/airpen-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := os.Getenv("IDENTITY_JWT_SECRET")
	if jwtSecretKey == "" {
		log.Fatal("IDENTITY_JWT_SECRET is required")
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	recordingRepo := repos.NewRecordingRepo(thePG, log)
	moduleRepo := repos.NewModuleRepo(thePG, log)
	noteRepo := repos.NewNoteRepo(thePG, log)
	studyRunRepo := repos.NewStudyRunRepo(thePG, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewSSEHub(log)
	var sseBus redisclient.SSEBus
	if os.Getenv("REDIS_ADDR") != "" {
		sseBus, err = redisclient.NewSSEBus(log)
		if err != nil {
			log.Fatal("Could not init redis SSE bus", "error", err)
		}
		if err := sseBus.StartForwarder(context.Background(), sseHub.Broadcast); err != nil {
			log.Fatal("Could not start redis SSE forwarder", "error", err)
		}
	}
	eventFanout := services.NewEventFanout(log, sseHub, sseBus)

	// Clients
	log.Info("Setting up AI clients from main...")
	transcriber, err := assemblyai.NewClient(log)
	if err != nil {
		log.Fatal("Could not init AssemblyAI client", "error", err)
	}
	generator, err := gemini.NewClient(log)
	if err != nil {
		log.Fatal("Could not init Gemini client", "error", err)
	}

	// Services
	log.Info("Setting up services from main...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Fatal("Could not init BucketService", "error", err)
	}
	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey)
	userService := services.NewUserService(thePG, log, userRepo)
	recordingService := services.NewRecordingService(thePG, log, recordingRepo)
	moduleService := services.NewModuleService(thePG, log, moduleRepo)
	noteService := services.NewNoteService(thePG, log, noteRepo)
	quizService := services.NewQuizService(log, moduleService)
	studyService := services.NewStudyGenerationService(
		thePG,
		log,
		studyRunRepo,
		recordingService,
		moduleService,
		noteService,
		bucketService,
		transcriber,
		generator,
		eventFanout,
	)

	// Handlers
	log.Info("Setting up handlers from main...")
	userHandler := handlers.NewUserHandler(userService)
	recordingHandler := handlers.NewRecordingHandler(recordingService, studyService)
	moduleHandler := handlers.NewModuleHandler(moduleService, quizService, studyService)
	noteHandler := handlers.NewNoteHandler(noteService)
	runHandler := handlers.NewRunHandler(studyService)
	sseHandler := handlers.NewSSEHandler(log, sseHub)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:   authMiddleware,
		UserHandler:      userHandler,
		RecordingHandler: recordingHandler,
		ModuleHandler:    moduleHandler,
		NoteHandler:      noteHandler,
		RunHandler:       runHandler,
		SSEHandler:       sseHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
