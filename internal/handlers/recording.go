package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/airpen/airpen-backend/internal/services"
)

// maxAudioBytes caps a single uploaded recording at 100 MiB.
const maxAudioBytes = 100 << 20

type RecordingHandler struct {
	recordingService services.RecordingService
	studyService     services.StudyGenerationService
}

func NewRecordingHandler(recordingService services.RecordingService, studyService services.StudyGenerationService) *RecordingHandler {
	return &RecordingHandler{
		recordingService: recordingService,
		studyService:     studyService,
	}
}

func (rh *RecordingHandler) List(c *gin.Context) {
	recordings, err := rh.recordingService.List(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"recordings": recordings})
}

func (rh *RecordingHandler) GetByID(c *gin.Context) {
	recordingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_recording_id", err)
		return
	}
	recording, err := rh.recordingService.GetByID(c.Request.Context(), recordingID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"recording": recording})
}

// Process accepts multipart form data with an "audio" file and a "title"
// field and runs the full audio pipeline inside the request.
func (rh *RecordingHandler) Process(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		RespondError(c, http.StatusBadRequest, "missing_title", nil)
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_audio", err)
		return
	}
	if fileHeader.Size > maxAudioBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "audio_too_large", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_audio", err)
		return
	}
	defer file.Close()
	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_audio", err)
		return
	}

	run, err := rh.studyService.ProcessRecording(c.Request.Context(), title, audio)
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
