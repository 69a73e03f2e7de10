package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/airpen/airpen-backend/internal/logger"
	"github.com/airpen/airpen-backend/internal/utils"
)

// Client transcribes raw audio through the AssemblyAI REST API: upload the
// bytes, open a transcript job, then poll until the job settles.
type Client interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

type client struct {
	log          *logger.Logger
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	pollInterval time.Duration
	maxPolls     int
}

// Option overrides client defaults. Used by tests to point at a local server
// and shrink the poll interval.
type Option func(*client)

func WithBaseURL(baseURL string) Option {
	return func(c *client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithPolling(interval time.Duration, maxPolls int) Option {
	return func(c *client) {
		c.pollInterval = interval
		c.maxPolls = maxPolls
	}
}

func NewClient(log *logger.Logger, opts ...Option) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(os.Getenv("ASSEMBLYAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing ASSEMBLYAI_API_KEY")
	}

	c := &client{
		log:          log.With("service", "AssemblyAIClient"),
		baseURL:      "https://api.assemblyai.com",
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		pollInterval: time.Duration(utils.GetEnvAsInt("ASSEMBLYAI_POLL_SECONDS", 5, log)) * time.Second,
		maxPolls:     utils.GetEnvAsInt("ASSEMBLYAI_MAX_POLLS", 60, log),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("assemblyai http %d: %s", e.StatusCode, e.Body)
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL        string `json:"audio_url"`
	SpeakerLabels   bool   `json:"speaker_labels"`
	EntityDetection bool   `json:"entity_detection"`
	Summarization   bool   `json:"summarization"`
}

type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

func (c *client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	uploadURL, err := c.upload(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}

	jobID, err := c.createTranscript(ctx, uploadURL)
	if err != nil {
		return "", fmt.Errorf("create transcript: %w", err)
	}
	c.log.Debug("Transcript job created", "jobID", jobID)

	var final transcriptResponse
	err = utils.Poll(ctx, c.pollInterval, c.maxPolls, func(ctx context.Context) (bool, error) {
		tr, err := c.getTranscript(ctx, jobID)
		if err != nil {
			return false, err
		}
		switch tr.Status {
		case "completed":
			final = *tr
			return true, nil
		case "error":
			return false, fmt.Errorf("transcription failed: %s", tr.Error)
		default:
			return false, nil
		}
	})
	if err != nil {
		return "", err
	}
	return final.Text, nil
}

func (c *client) upload(ctx context.Context, audio []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/upload", bytes.NewReader(audio))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var out uploadResponse
	if err := c.doJSON(req, &out); err != nil {
		return "", err
	}
	if out.UploadURL == "" {
		return "", fmt.Errorf("upload response missing upload_url")
	}
	return out.UploadURL, nil
}

func (c *client) createTranscript(ctx context.Context, audioURL string) (string, error) {
	body, err := json.Marshal(transcriptRequest{
		AudioURL:        audioURL,
		SpeakerLabels:   true,
		EntityDetection: true,
		Summarization:   true,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/transcript", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var out transcriptResponse
	if err := c.doJSON(req, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("transcript response missing id")
	}
	return out.ID, nil
}

func (c *client) getTranscript(ctx context.Context, jobID string) (*transcriptResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/transcript/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)

	var out transcriptResponse
	if err := c.doJSON(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &httpError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
