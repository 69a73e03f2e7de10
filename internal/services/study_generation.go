package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/airpen/airpen-backend/internal/clients/gemini"
	"github.com/airpen/airpen-backend/internal/logger"
	"github.com/airpen/airpen-backend/internal/repos"
	"github.com/airpen/airpen-backend/internal/sse"
	"github.com/airpen/airpen-backend/internal/types"
)

// FallbackTranscription replaces the transcript when the transcription
// service fails; the pipeline continues instead of aborting.
const FallbackTranscription = "This is a fallback transcription. The actual transcription service encountered an error. Please try recording again or check your internet connection."

// Transcriber is the slice of the transcription client the pipeline needs.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Generator is the slice of the generation client the pipeline needs.
type Generator interface {
	GenerateNotes(ctx context.Context, transcription string) *gemini.NotesResult
	GenerateModule(ctx context.Context, topic, description string) *gemini.ModuleResult
}

// EventPublisher fans run events out to connected clients.
type EventPublisher interface {
	Broadcast(msg sse.SSEMessage)
}

// StudyGenerationService runs the two content pipelines synchronously inside
// the request: audio to recording+module+note, and topic to module+note.
// Each stage is announced on the run row and over SSE before it executes.
// Persistence failures mark the run failed without rolling back rows already
// written.
type StudyGenerationService interface {
	ProcessRecording(ctx context.Context, title string, audio []byte) (*types.StudyRun, error)
	GenerateFromTopic(ctx context.Context, topic, description string) (*types.StudyRun, error)
	GetRun(ctx context.Context, runID uuid.UUID) (*types.StudyRun, error)
}

type studyGenerationService struct {
	db               *gorm.DB
	log              *logger.Logger
	studyRunRepo     repos.StudyRunRepo
	recordingService RecordingService
	moduleService    ModuleService
	noteService      NoteService
	bucketService    BucketService
	transcriber      Transcriber
	generator        Generator
	events           EventPublisher
}

func NewStudyGenerationService(
	db *gorm.DB,
	log *logger.Logger,
	studyRunRepo repos.StudyRunRepo,
	recordingService RecordingService,
	moduleService ModuleService,
	noteService NoteService,
	bucketService BucketService,
	transcriber Transcriber,
	generator Generator,
	events EventPublisher,
) StudyGenerationService {
	return &studyGenerationService{
		db:               db,
		log:              log.With("service", "StudyGenerationService"),
		studyRunRepo:     studyRunRepo,
		recordingService: recordingService,
		moduleService:    moduleService,
		noteService:      noteService,
		bucketService:    bucketService,
		transcriber:      transcriber,
		generator:        generator,
		events:           events,
	}
}

func (sg *studyGenerationService) ProcessRecording(ctx context.Context, title string, audio []byte) (*types.StudyRun, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("audio is required")
	}

	run, err := sg.createRun(ctx, userID, types.StudyRunKindRecording)
	if err != nil {
		return nil, err
	}

	sg.announceStage(ctx, run, types.StudyRunStageUploading, 10)
	audioURL, err := sg.bucketService.UploadRecording(ctx, title, audio)
	if err != nil {
		return sg.failRun(ctx, run, fmt.Errorf("error storing audio: %w", err))
	}

	sg.announceStage(ctx, run, types.StudyRunStageTranscribing, 30)
	transcription, err := sg.transcriber.Transcribe(ctx, audio)
	if err != nil {
		sg.log.Warn("Transcription failed; continuing with fallback text", "runID", run.ID, "error", err)
		transcription = FallbackTranscription
	}

	sg.announceStage(ctx, run, types.StudyRunStageGenerating, 60)
	generated := sg.generator.GenerateNotes(ctx, transcription)

	sg.announceStage(ctx, run, types.StudyRunStageSaving, 85)
	quizJSON, err := json.Marshal(generated.Quizzes)
	if err != nil {
		return sg.failRun(ctx, run, fmt.Errorf("error encoding quiz data: %w", err))
	}
	recording, err := sg.recordingService.Store(ctx, StoreRecordingInput{
		Title:         title,
		AudioURL:      audioURL,
		Transcription: transcription,
		Notes:         generated.Notes,
		QuizData:      quizJSON,
	})
	if err != nil {
		return sg.failRun(ctx, run, fmt.Errorf("error storing recording: %w", err))
	}

	module, err := sg.moduleService.Create(ctx, CreateModuleInput{
		Title:       title,
		Description: fmt.Sprintf("Generated from your recording: %s", title),
		Content:     recordingModuleContent(title, transcription, generated, audioURL),
		RecordingID: &recording.ID,
	})
	if err != nil {
		return sg.failRun(ctx, run, fmt.Errorf("error creating module: %w", err))
	}
	if err := sg.recordingService.LinkModule(ctx, recording.ID, module.ID.String()); err != nil {
		return sg.failRun(ctx, run, fmt.Errorf("error linking recording to module: %w", err))
	}

	note, err := sg.noteService.Create(ctx, CreateNoteInput{
		Title:       fmt.Sprintf("Notes: %s", title),
		Content:     generated.Notes,
		Tags:        []string{"Recording", "Lecture"},
		ModuleID:    &module.ID,
		RecordingID: &recording.ID,
	})
	if err != nil {
		return sg.failRun(ctx, run, fmt.Errorf("error creating note: %w", err))
	}

	return sg.succeedRun(ctx, run, string(generated.Outcome), &recording.ID, &module.ID, &note.ID)
}

func (sg *studyGenerationService) GenerateFromTopic(ctx context.Context, topic, description string) (*types.StudyRun, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	run, err := sg.createRun(ctx, userID, types.StudyRunKindTopic)
	if err != nil {
		return nil, err
	}

	sg.announceStage(ctx, run, types.StudyRunStageGenerating, 40)
	generated := sg.generator.GenerateModule(ctx, topic, description)

	sg.announceStage(ctx, run, types.StudyRunStageSaving, 80)
	moduleDescription := description
	if moduleDescription == "" {
		moduleDescription = fmt.Sprintf("An AI-generated learning module on %s", topic)
	}
	module, err := sg.moduleService.Create(ctx, CreateModuleInput{
		Title:       topic,
		Description: moduleDescription,
		Content:     topicModuleContent(topic, generated),
	})
	if err != nil {
		return sg.failRun(ctx, run, fmt.Errorf("error creating module: %w", err))
	}

	note, err := sg.noteService.Create(ctx, CreateNoteInput{
		Title:    fmt.Sprintf("Overview: %s", topic),
		Content:  generated.Overview,
		Tags:     []string{"AI Generated", topic},
		ModuleID: &module.ID,
	})
	if err != nil {
		return sg.failRun(ctx, run, fmt.Errorf("error creating note: %w", err))
	}

	return sg.succeedRun(ctx, run, string(generated.Outcome), nil, &module.ID, &note.ID)
}

func (sg *studyGenerationService) GetRun(ctx context.Context, runID uuid.UUID) (*types.StudyRun, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	found, err := sg.studyRunRepo.GetByIDs(ctx, nil, []uuid.UUID{runID})
	if err != nil {
		return nil, fmt.Errorf("error fetching run: %w", err)
	}
	if len(found) == 0 || found[0] == nil || found[0].UserID != userID {
		return nil, fmt.Errorf("run %w", ErrNotFound)
	}
	return found[0], nil
}

func (sg *studyGenerationService) createRun(ctx context.Context, userID uuid.UUID, kind string) (*types.StudyRun, error) {
	now := time.Now().UTC()
	run := &types.StudyRun{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Status:    types.StudyRunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := sg.studyRunRepo.Create(ctx, nil, []*types.StudyRun{run})
	if err != nil {
		return nil, fmt.Errorf("error creating run: %w", err)
	}
	return created[0], nil
}

func (sg *studyGenerationService) announceStage(ctx context.Context, run *types.StudyRun, stage string, progress int) {
	run.Status = types.StudyRunStatusRunning
	run.Stage = stage
	run.Progress = progress
	if err := sg.studyRunRepo.UpdateFields(ctx, nil, run.ID, map[string]any{
		"status":     types.StudyRunStatusRunning,
		"stage":      stage,
		"progress":   progress,
		"updated_at": time.Now().UTC(),
	}); err != nil {
		sg.log.Warn("Failed to record run stage", "runID", run.ID, "stage", stage, "error", err)
	}
	sg.publish(run, sse.SSEEventStudyRunProgress)
}

func (sg *studyGenerationService) failRun(ctx context.Context, run *types.StudyRun, cause error) (*types.StudyRun, error) {
	run.Status = types.StudyRunStatusFailed
	run.Error = cause.Error()
	if err := sg.studyRunRepo.UpdateFields(ctx, nil, run.ID, map[string]any{
		"status":     types.StudyRunStatusFailed,
		"error":      cause.Error(),
		"updated_at": time.Now().UTC(),
	}); err != nil {
		sg.log.Warn("Failed to record run failure", "runID", run.ID, "error", err)
	}
	sg.publish(run, sse.SSEEventStudyRunFailed)
	return run, cause
}

func (sg *studyGenerationService) succeedRun(ctx context.Context, run *types.StudyRun, outcome string, recordingID, moduleID, noteID *uuid.UUID) (*types.StudyRun, error) {
	metadata, _ := json.Marshal(map[string]string{"generation_outcome": outcome})

	fields := map[string]any{
		"status":     types.StudyRunStatusSucceeded,
		"stage":      types.StudyRunStageDone,
		"progress":   100,
		"metadata":   metadata,
		"updated_at": time.Now().UTC(),
	}
	if recordingID != nil {
		fields["recording_id"] = *recordingID
	}
	if moduleID != nil {
		fields["module_id"] = *moduleID
	}
	if noteID != nil {
		fields["note_id"] = *noteID
	}
	if err := sg.studyRunRepo.UpdateFields(ctx, nil, run.ID, fields); err != nil {
		sg.log.Warn("Failed to record run success", "runID", run.ID, "error", err)
	}

	run.Status = types.StudyRunStatusSucceeded
	run.Stage = types.StudyRunStageDone
	run.Progress = 100
	run.Metadata = metadata
	run.RecordingID = recordingID
	run.ModuleID = moduleID
	run.NoteID = noteID
	sg.publish(run, sse.SSEEventStudyRunSucceeded)
	return run, nil
}

func (sg *studyGenerationService) publish(run *types.StudyRun, event sse.SSEEvent) {
	if sg.events == nil {
		return
	}
	sg.events.Broadcast(sse.SSEMessage{
		Channel: sse.UserChannel(run.UserID),
		Event:   event,
		Data: map[string]any{
			"run_id":   run.ID,
			"kind":     run.Kind,
			"status":   run.Status,
			"stage":    run.Stage,
			"progress": run.Progress,
		},
	})
}

func recordingModuleContent(title, transcription string, generated *gemini.NotesResult, audioURL string) *types.ModuleContent {
	return &types.ModuleContent{
		Overview: generated.Summary,
		Lessons: []types.Lesson{
			{ID: 1, Title: "Lecture Transcription", Content: fmt.Sprintf("<h3>Transcription</h3><p>%s</p>", transcription)},
			{ID: 2, Title: "Study Notes", Content: generated.Notes},
		},
		Quizzes: []types.Quiz{
			{ID: 1, Title: fmt.Sprintf("%s Quiz", title), Questions: toQuizQuestions(generated.Quizzes)},
		},
		Resources: []types.Resource{
			{ID: 1, Title: "Lecture Recording", URL: audioURL, Type: "Audio"},
		},
	}
}

func topicModuleContent(topic string, generated *gemini.ModuleResult) *types.ModuleContent {
	return &types.ModuleContent{
		Overview: generated.Overview,
		Lessons: []types.Lesson{
			{ID: 1, Title: fmt.Sprintf("Introduction to %s", topic), Content: generated.Overview},
			{ID: 2, Title: "Key Concepts", Content: fmt.Sprintf("<h3>Key Concepts</h3><p>This lesson breaks down the core ideas behind %s. Revisit the introduction if a concept feels unfamiliar.</p>", topic)},
			{ID: 3, Title: "Practical Applications", Content: fmt.Sprintf("<h3>Practical Applications</h3><p>Apply what you have learned about %s to realistic scenarios and exercises.</p>", topic)},
		},
		Quizzes: []types.Quiz{
			{ID: 1, Title: fmt.Sprintf("%s Quiz", topic), Questions: toQuizQuestions(generated.Quizzes)},
		},
		Resources: []types.Resource{
			{ID: 1, Title: "Study Guide", URL: "https://example.com/resources/study-guide", Type: "PDF"},
			{ID: 2, Title: "Video Tutorial", URL: "https://example.com/resources/video-tutorial", Type: "Video"},
		},
	}
}

func toQuizQuestions(quizzes []types.RecordingQuiz) []types.QuizQuestion {
	questions := make([]types.QuizQuestion, 0, len(quizzes))
	for i, q := range quizzes {
		questions = append(questions, types.QuizQuestion{
			ID:       i + 1,
			Question: q.Question,
			Options:  q.Options,
			Answer:   q.Answer,
		})
	}
	return questions
}
