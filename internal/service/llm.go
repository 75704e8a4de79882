package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pageza/recipesnap/backend/config"
	"github.com/pageza/recipesnap/backend/internal/types"
)

// SuggestionSource turns a photo of ingredients into candidate recipes
type SuggestionSource interface {
	SuggestRecipes(ctx context.Context, photo *types.Photo) ([]types.Recipe, error)
}

// NewSuggestionSource builds the source for the configured LLM provider
func NewSuggestionSource(cfg *config.Config) (SuggestionSource, error) {
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		return NewClaudeService(cfg)
	case config.ProviderOpenAI, "":
		return NewLLMService(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}
}

// APIError is a non-2xx answer from the completion endpoint
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed if sent again
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// LLMService talks to an OpenAI-compatible chat completions endpoint with
// vision support
type LLMService struct {
	apiKey        string
	apiURL        string
	model         string
	client        *http.Client
	maxRetries    int
	retryInterval time.Duration
}

// NewLLMService creates a new LLMService instance
func NewLLMService(cfg *config.Config) (*LLMService, error) {
	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY must be set")
	}

	return &LLMService{
		apiKey:        cfg.LLMAPIKey,
		apiURL:        cfg.LLMAPIURL,
		model:         cfg.LLMModel,
		client:        &http.Client{Timeout: cfg.LLMTimeout},
		maxRetries:    cfg.LLMMaxRetries,
		retryInterval: time.Second,
	}, nil
}

// ContentPart is one element of a multi-part chat message
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL points the model at an image, here always a data URI
type ImageURL struct {
	URL string `json:"url"`
}

// Message represents a message in the chat. Content is either a string or
// a list of ContentPart.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// Request represents a chat completions request
type Request struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
}

// SuggestRecipes sends the photo to the model and parses its suggestions
func (s *LLMService) SuggestRecipes(ctx context.Context, photo *types.Photo) ([]types.Recipe, error) {
	return instrumentSuggest(ctx, config.ProviderOpenAI, s.model, func(ctx context.Context) ([]types.Recipe, error) {
		content, err := s.completeWithRetry(ctx, s.buildRequest(photo))
		if err != nil {
			return nil, err
		}
		return parseRecipes(content)
	})
}

func (s *LLMService) buildRequest(photo *types.Photo) Request {
	return Request{
		Model: s.model,
		Messages: []Message{
			{Role: "system", Content: suggestionSystemPrompt},
			{
				Role: "user",
				Content: []ContentPart{
					{Type: "text", Text: suggestionUserPrompt},
					{Type: "image_url", ImageURL: &ImageURL{URL: DataURI(photo)}},
				},
			},
		},
		ResponseFormat: map[string]string{
			"type": "json_object",
		},
		Temperature: 0.7,
		MaxTokens:   2048,
	}
}

func (s *LLMService) completeWithRetry(ctx context.Context, reqBody Request) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var content string
	operation := func() error {
		c, err := s.complete(ctx, jsonData)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && !apiErr.Retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		content = c
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retryInterval
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.maxRetries)), ctx)

	notify := func(err error, wait time.Duration) {
		slog.WarnContext(ctx, "suggestion request failed, retrying", "error", err, "wait", wait)
	}
	if err := backoff.RetryNotify(operation, retry, notify); err != nil {
		return "", err
	}
	return content, nil
}

func (s *LLMService) complete(ctx context.Context, jsonData []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	if len(result.Choices) == 0 {
		return "", backoff.Permanent(fmt.Errorf("no choices in API response"))
	}

	return result.Choices[0].Message.Content, nil
}
