// Package llm provides the Gemini client abstraction used by the
// extraction engine, including the upload/poll flow for binary documents.
package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// maxPollAttempts caps how long an uploaded document may stay in the
// processing state before the call is declared timed out.
const maxPollAttempts = 60

// pollInterval is the wait between upload state checks.
const pollInterval = time.Second

// Client is an abstraction over the content-analysis service.
type Client interface {
	// GenerateJSON submits an inline-text prompt and returns the response
	// with any markdown code fencing stripped.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	// AnalyzeDocument uploads a binary document, waits for the service to
	// finish processing it, runs the prompt against it, and releases the
	// uploaded artifact regardless of outcome.
	AnalyzeDocument(ctx context.Context, path, mimeType, prompt string) (string, error)
	// Close releases any resources held by the client.
	Close() error
}

// APICallError represents a failed call to the analysis service.
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm api error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("llm api error: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ProcessingTimeoutError is returned when an uploaded document never left
// the processing state within the polling budget. Distinct from
// APICallError so callers can tell "still processing" from "rejected".
type ProcessingTimeoutError struct {
	FileName string
	Attempts int
}

func (e *ProcessingTimeoutError) Error() string {
	return fmt.Sprintf("llm processing timeout: file %s not ready after %d attempts", e.FileName, e.Attempts)
}

// Config holds the model configuration.
type Config struct {
	Model string
}

// DefaultConfig returns the default Gemini configuration.
func DefaultConfig() *Config {
	return &Config{Model: "gemini-2.5-flash"}
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, &APICallError{Message: "API key is required"}
	}
	if config == nil {
		config = DefaultConfig()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &APICallError{Message: "failed to create Gemini client", Cause: err}
	}

	return &GeminiClient{client: client, config: config}, nil
}

// GenerateJSON submits an inline-text prompt expecting a JSON response.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	model := c.jsonModel()

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &APICallError{Message: "failed to generate content", Cause: err}
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// AnalyzeDocument uploads the file at path, polls until the service marks
// it ready, then runs the prompt against it. The uploaded artifact is
// deleted on every exit path.
func (c *GeminiClient) AnalyzeDocument(ctx context.Context, path, mimeType, prompt string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &APICallError{Message: "failed to open document", Cause: err}
	}
	defer func() { _ = f.Close() }()

	uploaded, err := c.client.UploadFile(ctx, "", f, &genai.UploadFileOptions{MIMEType: mimeType})
	if err != nil {
		return "", &APICallError{Message: "failed to upload document", Cause: err}
	}
	defer func() { _ = c.client.DeleteFile(ctx, uploaded.Name) }()

	ready, err := c.waitForFile(ctx, uploaded)
	if err != nil {
		return "", err
	}

	model := c.jsonModel()
	resp, err := model.GenerateContent(ctx,
		genai.FileData{MIMEType: mimeType, URI: ready.URI},
		genai.Text(prompt),
	)
	if err != nil {
		return "", &APICallError{Message: "failed to generate content for document", Cause: err}
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// waitForFile polls the uploaded file state with a bounded attempt count.
func (c *GeminiClient) waitForFile(ctx context.Context, file *genai.File) (*genai.File, error) {
	current := file
	for attempt := 0; attempt < maxPollAttempts; attempt++ {
		switch current.State {
		case genai.FileStateActive:
			return current, nil
		case genai.FileStateFailed:
			return nil, &APICallError{Message: fmt.Sprintf("service rejected uploaded file %s", current.Name)}
		}

		select {
		case <-ctx.Done():
			return nil, &APICallError{Message: "document processing canceled", Cause: ctx.Err()}
		case <-time.After(pollInterval):
		}

		refreshed, err := c.client.GetFile(ctx, current.Name)
		if err != nil {
			return nil, &APICallError{Message: "failed to check uploaded file state", Cause: err}
		}
		current = refreshed
	}

	return nil, &ProcessingTimeoutError{FileName: current.Name, Attempts: maxPollAttempts}
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// jsonModel configures the generative model for deterministic JSON output.
func (c *GeminiClient) jsonModel() *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.config.Model)
	model.SetTemperature(0.1) // Low temperature for consistent output
	model.ResponseMIMEType = "application/json"
	return model
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", &APICallError{Message: "no candidates in response"}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &APICallError{Message: "no content in response"}
	}

	var out string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}

	if out == "" {
		return "", &APICallError{Message: "no text parts in response"}
	}
	return out, nil
}
