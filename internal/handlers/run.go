package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/airpen/airpen-backend/internal/services"
)

type RunHandler struct {
	studyService services.StudyGenerationService
}

func NewRunHandler(studyService services.StudyGenerationService) *RunHandler {
	return &RunHandler{studyService: studyService}
}

func (rh *RunHandler) GetByID(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_run_id", err)
		return
	}
	run, err := rh.studyService.GetRun(c.Request.Context(), runID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"run": run})
}
