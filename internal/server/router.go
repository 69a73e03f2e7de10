package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/airpen/airpen-backend/internal/handlers"
	"github.com/airpen/airpen-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware   *middleware.AuthMiddleware
	UserHandler      *handlers.UserHandler
	RecordingHandler *handlers.RecordingHandler
	ModuleHandler    *handlers.ModuleHandler
	NoteHandler      *handlers.NoteHandler
	RunHandler       *handlers.RunHandler
	SSEHandler       *handlers.SSEHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")

	// List reads degrade to empty for anonymous callers, so they sit behind
	// the optional guard rather than the strict one.
	optional := api.Group("/")
	optional.Use(cfg.AuthMiddleware.OptionalAuth())
	optional.GET("/recordings", cfg.RecordingHandler.List)
	optional.GET("/modules", cfg.ModuleHandler.List)
	optional.GET("/notes", cfg.NoteHandler.List)

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// User
	protected.POST("/users/store", cfg.UserHandler.Store)
	protected.GET("/users/me", cfg.UserHandler.GetMe)
	// Recordings
	protected.GET("/recordings/:id", cfg.RecordingHandler.GetByID)
	protected.POST("/recordings/process", cfg.RecordingHandler.Process)
	// Modules. Generation lives under /generate because the router cannot
	// mix a static "generate" segment with the ":id" wildcard.
	protected.GET("/modules/:id", cfg.ModuleHandler.GetByID)
	protected.POST("/generate/module", cfg.ModuleHandler.Generate)
	protected.PATCH("/modules/:id/progress", cfg.ModuleHandler.UpdateProgress)
	protected.POST("/modules/:id/quizzes/:quizID/score", cfg.ModuleHandler.ScoreQuiz)
	// Notes
	protected.POST("/notes", cfg.NoteHandler.Create)
	protected.PATCH("/notes/:id", cfg.NoteHandler.Update)
	protected.DELETE("/notes/:id", cfg.NoteHandler.Delete)
	// Runs
	protected.GET("/runs/:id", cfg.RunHandler.GetByID)

	// SSE
	stream := router.Group("/sse")
	stream.Use(cfg.AuthMiddleware.RequireAuth())
	stream.GET("/stream", cfg.SSEHandler.Stream)
	stream.POST("/subscribe", cfg.SSEHandler.Subscribe)
	stream.POST("/unsubscribe", cfg.SSEHandler.Unsubscribe)

	return router
}
