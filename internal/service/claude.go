package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pageza/recipesnap/backend/config"
	"github.com/pageza/recipesnap/backend/internal/types"
)

// ClaudeService asks an Anthropic model for suggestions. Retries are left
// to the SDK.
type ClaudeService struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewClaudeService creates a new ClaudeService instance
func NewClaudeService(cfg *config.Config) (*ClaudeService, error) {
	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY must be set")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.LLMAPIKey),
		option.WithMaxRetries(cfg.LLMMaxRetries),
	}
	if cfg.LLMAPIURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.LLMAPIURL))
	}
	if cfg.LLMTimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.LLMTimeout))
	}

	return &ClaudeService{
		client: anthropic.NewClient(opts...),
		model:  anthropic.Model(cfg.LLMModel),
	}, nil
}

// SuggestRecipes sends the photo as an image block followed by the request text
func (s *ClaudeService) SuggestRecipes(ctx context.Context, photo *types.Photo) ([]types.Recipe, error) {
	return instrumentSuggest(ctx, config.ProviderAnthropic, string(s.model), func(ctx context.Context) ([]types.Recipe, error) {
		message, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     s.model,
			MaxTokens: 2048,
			System: []anthropic.TextBlockParam{
				{Text: suggestionSystemPrompt},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewImageBlockBase64(photo.MediaType, base64.StdEncoding.EncodeToString(photo.Data)),
					anthropic.NewTextBlock(suggestionUserPrompt),
				),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to request suggestions: %w", err)
		}

		var text strings.Builder
		for _, block := range message.Content {
			if block.Type == "text" {
				text.WriteString(block.Text)
			}
		}
		if text.Len() == 0 {
			return nil, fmt.Errorf("unexpected response format: no text blocks")
		}

		return parseRecipes(text.String())
	})
}
