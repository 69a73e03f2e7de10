package assemblyai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/airpen/airpen-backend/internal/clients/assemblyai"
	"github.com/airpen/airpen-backend/internal/logger"
	"github.com/airpen/airpen-backend/internal/utils"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	require.NoError(t, err)
	t.Cleanup(log.Sync)
	return log
}

func newServer(t *testing.T, pollsUntilDone int64) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var polls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/upload", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NotEmpty(t, body)
		json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.assemblyai.com/upload/abc"})
	})
	mux.HandleFunc("POST /v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "https://cdn.assemblyai.com/upload/abc", req["audio_url"])
		require.Equal(t, true, req["speaker_labels"])
		json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": "queued"})
	})
	mux.HandleFunc("GET /v2/transcript/job-1", func(w http.ResponseWriter, r *http.Request) {
		n := polls.Add(1)
		if n < pollsUntilDone {
			json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": "processing"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": "completed", "text": "hello class"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &polls
}

func TestTranscribe_CompletesAfterPolling(t *testing.T) {
	srv, polls := newServer(t, 3)

	t.Setenv("ASSEMBLYAI_API_KEY", "test-key")
	c, err := assemblyai.NewClient(testLogger(t),
		assemblyai.WithBaseURL(srv.URL),
		assemblyai.WithPolling(time.Millisecond, 10),
	)
	require.NoError(t, err)

	text, err := c.Transcribe(context.Background(), []byte("audio-bytes"))
	require.NoError(t, err)
	require.Equal(t, "hello class", text)
	require.EqualValues(t, 3, polls.Load())
}

func TestTranscribe_ExhaustsPollBudget(t *testing.T) {
	srv, _ := newServer(t, 1000)

	t.Setenv("ASSEMBLYAI_API_KEY", "test-key")
	c, err := assemblyai.NewClient(testLogger(t),
		assemblyai.WithBaseURL(srv.URL),
		assemblyai.WithPolling(time.Millisecond, 4),
	)
	require.NoError(t, err)

	_, err = c.Transcribe(context.Background(), []byte("audio-bytes"))
	require.ErrorIs(t, err, utils.ErrPollExhausted)
}

func TestTranscribe_JobError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/upload", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.assemblyai.com/upload/abc"})
	})
	mux.HandleFunc("POST /v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": "queued"})
	})
	mux.HandleFunc("GET /v2/transcript/job-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": "error", "error": "unsupported codec"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	t.Setenv("ASSEMBLYAI_API_KEY", "test-key")
	c, err := assemblyai.NewClient(testLogger(t),
		assemblyai.WithBaseURL(srv.URL),
		assemblyai.WithPolling(time.Millisecond, 4),
	)
	require.NoError(t, err)

	_, err = c.Transcribe(context.Background(), []byte("audio-bytes"))
	require.ErrorContains(t, err, "unsupported codec")
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("ASSEMBLYAI_API_KEY", "")
	_, err := assemblyai.NewClient(testLogger(t))
	require.Error(t, err)
}
