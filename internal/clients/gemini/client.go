package gemini

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
	"github.com/airpen/airpen-backend/internal/types"
)

// Outcome reports how a generation result was produced. Callers can tell a
// real model answer from a canned fallback without inspecting the text.
type Outcome string

const (
	// OutcomeModel means the model responded and its JSON parsed cleanly.
	OutcomeModel Outcome = "model"
	// OutcomeDegradedParse means the model responded but the JSON did not
	// parse; the raw text is carried through with placeholder quizzes.
	OutcomeDegradedParse Outcome = "degraded_parse"
	// OutcomeDegradedCall means the API call itself failed and the result is
	// a fully templated fallback.
	OutcomeDegradedCall Outcome = "degraded_call"
)

type NotesResult struct {
	Notes   string
	Summary string
	Quizzes []types.RecordingQuiz
	Outcome Outcome
}

type ModuleResult struct {
	Overview string
	Quizzes  []types.RecordingQuiz
	Outcome  Outcome
}

// Client generates study notes and learning modules. Both calls degrade to
// usable placeholder content instead of returning an error; generation never
// blocks persistence.
type Client interface {
	GenerateNotes(ctx context.Context, transcription string) *NotesResult
	GenerateModule(ctx context.Context, topic, description string) *ModuleResult
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

type Option func(*client)

func WithBaseURL(baseURL string) Option {
	return func(c *client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func NewClient(log *logger.Logger, opts ...Option) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	model := strings.TrimSpace(os.Getenv("GEMINI_MODEL"))
	if model == "" {
		model = "gemini-1.5-pro"
	}

	c := &client{
		log:        log.With("service", "GeminiClient"),
		baseURL:    "https://generativelanguage.googleapis.com",
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	SafetySettings   []safetySetting  `json:"safetySettings"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func defaultSafetySettings() []safetySetting {
	const threshold = "BLOCK_MEDIUM_AND_ABOVE"
	return []safetySetting{
		{Category: "HARM_CATEGORY_HARASSMENT", Threshold: threshold},
		{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: threshold},
		{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: threshold},
		{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: threshold},
	}
}

func defaultGenerationConfig() generationConfig {
	return generationConfig{
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 8192,
	}
}

const notesPromptTemplate = `You are an expert educational assistant. Based on the following lecture transcription, please:

1. Create comprehensive, well-structured notes in markdown format
2. Include key concepts, definitions, and examples
3. Create a concise summary of the main points
4. Generate 3-5 quiz questions with 4 multiple-choice options each (label the correct answer)

Transcription:
%s

Format your response as a JSON object with the following structure:
{
  "notes": "[Markdown formatted notes]",
  "summary": "[Concise summary]",
  "quizzes": [
    {
      "question": "[Question text]",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "answer": [index of correct option, 0-3]
    },
    ...
  ]
}`

const modulePromptTemplate = `You are an expert educational content creator. Create a comprehensive learning module on the topic: "%s".

Additional context: %s

Please include:
1. A detailed overview of the topic in markdown format
2. 3-5 quiz questions with 4 multiple-choice options each (label the correct answer)

Format your response as a JSON object with the following structure:
{
  "overview": "[Markdown formatted overview]",
  "quizzes": [
    {
      "question": "[Question text]",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "answer": [index of correct option, 0-3]
    },
    ...
  ]
}`

func (c *client) GenerateNotes(ctx context.Context, transcription string) *NotesResult {
	text, err := c.generateContent(ctx, fmt.Sprintf(notesPromptTemplate, transcription))
	if err != nil {
		c.log.Warn("Notes generation call failed; using fallback content", "error", err)
		return fallbackNotesForCallFailure(transcription)
	}

	var parsed struct {
		Notes   string                `json:"notes"`
		Summary string                `json:"summary"`
		Quizzes []types.RecordingQuiz `json:"quizzes"`
	}
	if err := json.Unmarshal([]byte(extractJSON(text)), &parsed); err != nil {
		c.log.Warn("Notes generation response did not parse; carrying raw text", "error", err)
		return &NotesResult{
			Notes:   text,
			Summary: "Generated from your recording",
			Quizzes: []types.RecordingQuiz{
				{
					Question: "What is the main topic of this recording?",
					Options:  []string{"Option A", "Option B", "Option C", "Option D"},
					Answer:   0,
				},
			},
			Outcome: OutcomeDegradedParse,
		}
	}
	return &NotesResult{
		Notes:   parsed.Notes,
		Summary: parsed.Summary,
		Quizzes: parsed.Quizzes,
		Outcome: OutcomeModel,
	}
}

func (c *client) GenerateModule(ctx context.Context, topic, description string) *ModuleResult {
	text, err := c.generateContent(ctx, fmt.Sprintf(modulePromptTemplate, topic, description))
	if err != nil {
		c.log.Warn("Module generation call failed; using fallback content", "error", err)
		return fallbackModuleForCallFailure(topic, description)
	}

	var parsed struct {
		Overview string                `json:"overview"`
		Quizzes  []types.RecordingQuiz `json:"quizzes"`
	}
	if err := json.Unmarshal([]byte(extractJSON(text)), &parsed); err != nil {
		c.log.Warn("Module generation response did not parse; carrying raw text", "error", err)
		return &ModuleResult{
			Overview: text,
			Quizzes: []types.RecordingQuiz{
				{
					Question: fmt.Sprintf("What is the primary focus of %s?", topic),
					Options: []string{
						"Option A related to the topic",
						"Option B related to the topic",
						"Option C related to the topic",
						"Option D related to the topic",
					},
					Answer: 0,
				},
			},
			Outcome: OutcomeDegradedParse,
		}
	}
	return &ModuleResult{
		Overview: parsed.Overview,
		Quizzes:  parsed.Quizzes,
		Outcome:  OutcomeModel,
	}
}

func (c *client) generateContent(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		SafetySettings:   defaultSafetySettings(),
		GenerationConfig: defaultGenerationConfig(),
	}
	raw, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return "", readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini http %d: %s", resp.StatusCode, string(body))
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response has no candidates")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// extractJSON strips markdown code fences the model sometimes wraps around
// its JSON payload.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	}
	return strings.TrimSpace(trimmed)
}

func fallbackNotesForCallFailure(transcription string) *NotesResult {
	excerpt := transcription
	if len(excerpt) > 50 {
		excerpt = excerpt[:50]
	}
	notes := fmt.Sprintf(`# Notes from Recording

## Key Points
- %s...
- Important concept explained
- Another key insight

## Summary
This lecture covered the fundamental concepts of the topic, including definitions, examples, and practical applications.

## Action Items
- Review related materials
- Complete practice exercises
- Prepare questions for next session`, excerpt)

	return &NotesResult{
		Notes:   notes,
		Summary: "This recording covers key concepts and provides a comprehensive overview of the topic.",
		Quizzes: []types.RecordingQuiz{
			{
				Question: "What is the main topic of this recording?",
				Options: []string{
					"Option based on transcription",
					"Another possible topic",
					"Unrelated topic",
					"None of the above",
				},
				Answer: 0,
			},
			{
				Question: "Which concept was explained in detail?",
				Options:  []string{"Concept A", "Concept B", "Concept C", "Concept D"},
				Answer:   1,
			},
		},
		Outcome: OutcomeDegradedCall,
	}
}

func fallbackModuleForCallFailure(topic, description string) *ModuleResult {
	overview := fmt.Sprintf(`# %s

## Overview
%s

This module will guide you through the fundamental concepts and practical applications of %s. Work through the lessons at your own pace, and test your knowledge with the quizzes.`, topic, description, topic)

	return &ModuleResult{
		Overview: overview,
		Quizzes: []types.RecordingQuiz{
			{
				Question: fmt.Sprintf("What is the primary focus of %s?", topic),
				Options: []string{
					"Option A related to the topic",
					"Option B related to the topic",
					"Option C related to the topic",
					"Option D related to the topic",
				},
				Answer: 0,
			},
			{
				Question: "Which of the following best describes a key principle?",
				Options:  []string{"Description 1", "Description 2", "Description 3", "Description 4"},
				Answer:   1,
			},
		},
		Outcome: OutcomeDegradedCall,
	}
}
