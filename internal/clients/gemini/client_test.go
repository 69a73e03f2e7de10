package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/airpen/airpen-backend/internal/clients/gemini"
	"github.com/airpen/airpen-backend/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	require.NoError(t, err)
	t.Cleanup(log.Sync)
	return log
}

func candidateResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
}

func newClient(t *testing.T, handler http.HandlerFunc) gemini.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("GEMINI_API_KEY", "test-key")
	c, err := gemini.NewClient(testLogger(t), gemini.WithBaseURL(srv.URL))
	require.NoError(t, err)
	return c
}

func TestGenerateNotes_ModelOutcome(t *testing.T) {
	payload := `{"notes":"# Thermo notes","summary":"Heat moves around","quizzes":[{"question":"Q1","options":["a","b","c","d"],"answer":2}]}`
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, ":generateContent")
		require.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req["safetySettings"], 4)

		json.NewEncoder(w).Encode(candidateResponse(payload))
	})

	res := c.GenerateNotes(context.Background(), "the lecture text")
	require.Equal(t, gemini.OutcomeModel, res.Outcome)
	require.Equal(t, "# Thermo notes", res.Notes)
	require.Equal(t, "Heat moves around", res.Summary)
	require.Len(t, res.Quizzes, 1)
	require.Equal(t, 2, res.Quizzes[0].Answer)
}

func TestGenerateNotes_FencedJSONStillParses(t *testing.T) {
	payload := "```json\n{\"notes\":\"n\",\"summary\":\"s\",\"quizzes\":[]}\n```"
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateResponse(payload))
	})

	res := c.GenerateNotes(context.Background(), "text")
	require.Equal(t, gemini.OutcomeModel, res.Outcome)
	require.Equal(t, "n", res.Notes)
}

func TestGenerateNotes_DegradedParse(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateResponse("Here are your notes, not as JSON."))
	})

	res := c.GenerateNotes(context.Background(), "text")
	require.Equal(t, gemini.OutcomeDegradedParse, res.Outcome)
	require.Equal(t, "Here are your notes, not as JSON.", res.Notes)
	require.Equal(t, "Generated from your recording", res.Summary)
	require.Len(t, res.Quizzes, 1)
}

func TestGenerateNotes_DegradedCall(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	transcription := strings.Repeat("thermodynamics ", 10)
	res := c.GenerateNotes(context.Background(), transcription)
	require.Equal(t, gemini.OutcomeDegradedCall, res.Outcome)
	require.Contains(t, res.Notes, transcription[:50]+"...")
	require.Contains(t, res.Notes, "# Notes from Recording")
	require.Len(t, res.Quizzes, 2)
}

func TestGenerateModule_ModelOutcome(t *testing.T) {
	payload := `{"overview":"# Stoics","quizzes":[{"question":"Q","options":["a","b","c","d"],"answer":0}]}`
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateResponse(payload))
	})

	res := c.GenerateModule(context.Background(), "Stoicism", "Intro course")
	require.Equal(t, gemini.OutcomeModel, res.Outcome)
	require.Equal(t, "# Stoics", res.Overview)
	require.Len(t, res.Quizzes, 1)
}

func TestGenerateModule_DegradedCall(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	})

	res := c.GenerateModule(context.Background(), "Stoicism", "Intro course")
	require.Equal(t, gemini.OutcomeDegradedCall, res.Outcome)
	require.Contains(t, res.Overview, "# Stoicism")
	require.Contains(t, res.Overview, "Intro course")
	require.Len(t, res.Quizzes, 2)
	require.Equal(t, "What is the primary focus of Stoicism?", res.Quizzes[0].Question)
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, err := gemini.NewClient(testLogger(t))
	require.Error(t, err)
}
