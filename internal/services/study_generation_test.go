package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/airpen/airpen-backend/internal/clients/gemini"
	"github.com/airpen/airpen-backend/internal/repos"
	"github.com/airpen/airpen-backend/internal/repos/testutil"
	"github.com/airpen/airpen-backend/internal/services"
	"github.com/airpen/airpen-backend/internal/sse"
	"github.com/airpen/airpen-backend/internal/types"
)

type stubBucket struct{}

func (stubBucket) UploadRecording(ctx context.Context, fileName string, audio []byte) (string, error) {
	return "https://storage.example.com/recordings/" + fileName + "-1.wav", nil
}

type stubTranscriber struct {
	text string
	err  error
}

func (s stubTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return s.text, s.err
}

type stubGenerator struct {
	notes  *gemini.NotesResult
	module *gemini.ModuleResult
}

func (s stubGenerator) GenerateNotes(ctx context.Context, transcription string) *gemini.NotesResult {
	return s.notes
}

func (s stubGenerator) GenerateModule(ctx context.Context, topic, description string) *gemini.ModuleResult {
	return s.module
}

type captureEvents struct {
	mu     sync.Mutex
	events []sse.SSEMessage
}

func (c *captureEvents) Broadcast(msg sse.SSEMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, msg)
}

func (c *captureEvents) names() []sse.SSEEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sse.SSEEvent, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Event)
	}
	return out
}

type pipelineHarness struct {
	svc     services.StudyGenerationService
	modules services.ModuleService
	notes   services.NoteService
	recs    services.RecordingService
	events  *captureEvents
	runRepo repos.StudyRunRepo
	gdb     *gorm.DB
}

func newPipeline(t *testing.T, transcriber services.Transcriber, generator services.Generator) (*pipelineHarness, context.Context) {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)

	runRepo := repos.NewStudyRunRepo(gdb, log)
	recSvc := services.NewRecordingService(gdb, log, repos.NewRecordingRepo(gdb, log))
	modSvc := services.NewModuleService(gdb, log, repos.NewModuleRepo(gdb, log))
	noteSvc := services.NewNoteService(gdb, log, repos.NewNoteRepo(gdb, log))
	events := &captureEvents{}

	svc := services.NewStudyGenerationService(
		gdb, log, runRepo, recSvc, modSvc, noteSvc,
		stubBucket{}, transcriber, generator, events,
	)

	user := testutil.SeedUser(t, gdb, "issuer|alice")
	return &pipelineHarness{
		svc:     svc,
		modules: modSvc,
		notes:   noteSvc,
		recs:    recSvc,
		events:  events,
		runRepo: runRepo,
		gdb:     gdb,
	}, authedCtx(user)
}

func modelNotes() *gemini.NotesResult {
	return &gemini.NotesResult{
		Notes:   "# Generated notes",
		Summary: "A tidy summary",
		Quizzes: []types.RecordingQuiz{
			{Question: "Q1", Options: []string{"a", "b", "c", "d"}, Answer: 1},
		},
		Outcome: gemini.OutcomeModel,
	}
}

func TestGenerateFromTopic_EndToEnd(t *testing.T) {
	h, ctx := newPipeline(t, stubTranscriber{}, stubGenerator{
		module: &gemini.ModuleResult{
			Overview: "# Thermodynamics overview",
			Quizzes: []types.RecordingQuiz{
				{Question: "Q1", Options: []string{"a", "b", "c", "d"}, Answer: 2},
			},
			Outcome: gemini.OutcomeModel,
		},
	})

	run, err := h.svc.GenerateFromTopic(ctx, "Thermodynamics", "")
	require.NoError(t, err)
	require.Equal(t, types.StudyRunStatusSucceeded, run.Status)
	require.Equal(t, 100, run.Progress)
	require.NotNil(t, run.ModuleID)
	require.NotNil(t, run.NoteID)
	require.Nil(t, run.RecordingID)

	module, err := h.modules.GetByID(ctx, *run.ModuleID)
	require.NoError(t, err)
	require.Equal(t, "Thermodynamics", module.Title)
	require.Equal(t, 0, module.Progress)

	var content types.ModuleContent
	require.NoError(t, json.Unmarshal(module.Content, &content))
	require.Len(t, content.Lessons, 3)
	require.Equal(t, "Introduction to Thermodynamics", content.Lessons[0].Title)
	require.Equal(t, "Key Concepts", content.Lessons[1].Title)
	require.Equal(t, "Practical Applications", content.Lessons[2].Title)
	require.Len(t, content.Quizzes, 1)
	require.Equal(t, "Thermodynamics Quiz", content.Quizzes[0].Title)
	require.Len(t, content.Resources, 2)

	notes, err := h.notes.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, "Overview: Thermodynamics", notes[0].Title)
	var tags []string
	require.NoError(t, json.Unmarshal(notes[0].Tags, &tags))
	require.Equal(t, []string{"AI Generated", "Thermodynamics"}, tags)

	var meta map[string]string
	require.NoError(t, json.Unmarshal(run.Metadata, &meta))
	require.Equal(t, "model", meta["generation_outcome"])

	names := h.events.names()
	require.Equal(t, sse.SSEEventStudyRunSucceeded, names[len(names)-1])
}

func TestProcessRecording_EndToEnd(t *testing.T) {
	h, ctx := newPipeline(t, stubTranscriber{text: "the lecture transcript"}, stubGenerator{notes: modelNotes()})

	run, err := h.svc.ProcessRecording(ctx, "Biology 101", []byte("audio"))
	require.NoError(t, err)
	require.Equal(t, types.StudyRunStatusSucceeded, run.Status)
	require.NotNil(t, run.RecordingID)
	require.NotNil(t, run.ModuleID)
	require.NotNil(t, run.NoteID)

	rec, err := h.recs.GetByID(ctx, *run.RecordingID)
	require.NoError(t, err)
	require.Equal(t, "the lecture transcript", rec.Transcription)
	require.Equal(t, "# Generated notes", rec.Notes)
	require.NotNil(t, rec.ModuleID)
	require.Equal(t, run.ModuleID.String(), *rec.ModuleID)

	module, err := h.modules.GetByID(ctx, *run.ModuleID)
	require.NoError(t, err)
	require.Equal(t, rec.ID, *module.RecordingID)

	var content types.ModuleContent
	require.NoError(t, json.Unmarshal(module.Content, &content))
	require.Len(t, content.Lessons, 2)
	require.Equal(t, "Lecture Transcription", content.Lessons[0].Title)
	require.Equal(t, "Study Notes", content.Lessons[1].Title)
	require.Len(t, content.Resources, 1)
	require.Equal(t, "Audio", content.Resources[0].Type)
	require.Equal(t, rec.AudioURL, content.Resources[0].URL)

	notes, err := h.notes.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, "Notes: Biology 101", notes[0].Title)
	var tags []string
	require.NoError(t, json.Unmarshal(notes[0].Tags, &tags))
	require.Equal(t, []string{"Recording", "Lecture"}, tags)
}

func TestProcessRecording_TranscriptionFailureFallsBack(t *testing.T) {
	h, ctx := newPipeline(t,
		stubTranscriber{err: errors.New("upstream down")},
		stubGenerator{notes: modelNotes()},
	)

	run, err := h.svc.ProcessRecording(ctx, "Biology 101", []byte("audio"))
	require.NoError(t, err)
	require.Equal(t, types.StudyRunStatusSucceeded, run.Status)

	rec, err := h.recs.GetByID(ctx, *run.RecordingID)
	require.NoError(t, err)
	require.Equal(t, services.FallbackTranscription, rec.Transcription)
}

func TestProcessRecording_RequiresStoredUser(t *testing.T) {
	h, _ := newPipeline(t, stubTranscriber{text: "x"}, stubGenerator{notes: modelNotes()})

	_, err := h.svc.ProcessRecording(tokenOnlyCtx("issuer|ghost"), "Biology 101", []byte("audio"))
	require.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestGetRun_ScopedToOwner(t *testing.T) {
	h, ctx := newPipeline(t, stubTranscriber{text: "x"}, stubGenerator{
		module: &gemini.ModuleResult{Overview: "o", Outcome: gemini.OutcomeModel},
	})

	run, err := h.svc.GenerateFromTopic(ctx, "Stoicism", "ethics")
	require.NoError(t, err)

	got, err := h.svc.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.Equal(t, run.ID, got.ID)
	require.Equal(t, types.StudyRunStageDone, got.Stage)

	bob := testutil.SeedUser(t, h.gdb, "issuer|bob")
	_, err = h.svc.GetRun(authedCtx(bob), run.ID)
	require.ErrorIs(t, err, services.ErrNotFound)
}
