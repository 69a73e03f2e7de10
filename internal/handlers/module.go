package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/airpen/airpen-backend/internal/services"
)

type ModuleHandler struct {
	moduleService services.ModuleService
	quizService   services.QuizService
	studyService  services.StudyGenerationService
}

func NewModuleHandler(moduleService services.ModuleService, quizService services.QuizService, studyService services.StudyGenerationService) *ModuleHandler {
	return &ModuleHandler{
		moduleService: moduleService,
		quizService:   quizService,
		studyService:  studyService,
	}
}

func (mh *ModuleHandler) List(c *gin.Context) {
	modules, err := mh.moduleService.List(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"modules": modules})
}

func (mh *ModuleHandler) GetByID(c *gin.Context) {
	moduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_module_id", err)
		return
	}
	module, err := mh.moduleService.GetByID(c.Request.Context(), moduleID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"module": module})
}

// Generate runs the topic pipeline: AI overview and quiz, then module and
// note rows.
func (mh *ModuleHandler) Generate(c *gin.Context) {
	var req struct {
		Topic       string `json:"topic" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	run, err := mh.studyService.GenerateFromTopic(c.Request.Context(), req.Topic, req.Description)
	if err != nil {
		if run != nil {
			RespondError(c, http.StatusBadGateway, "pipeline_failed", err)
			return
		}
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"run": run})
}

func (mh *ModuleHandler) UpdateProgress(c *gin.Context) {
	moduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_module_id", err)
		return
	}
	var req struct {
		Progress *int `json:"progress" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	module, err := mh.moduleService.UpdateProgress(c.Request.Context(), moduleID, *req.Progress)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"module": module})
}

func (mh *ModuleHandler) ScoreQuiz(c *gin.Context) {
	moduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_module_id", err)
		return
	}
	quizID, err := strconv.Atoi(c.Param("quizID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_quiz_id", err)
		return
	}
	var req struct {
		Answers []int `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	score, err := mh.quizService.Score(c.Request.Context(), moduleID, quizID, req.Answers)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"score": score})
}
