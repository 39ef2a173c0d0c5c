package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var (
	// ErrMissingAPIKey is returned when a client is created without credentials
	ErrMissingAPIKey = errors.New("API key is required")
	// ErrBlocked is returned when the model refuses the prompt or stops for safety
	ErrBlocked = errors.New("response blocked by model safety filters")
	// ErrEmptyResponse is returned when the model answers without any text
	ErrEmptyResponse = errors.New("model returned no text")
)

// Client generates text from a prompt
type Client interface {
	// GenerateText returns the model's plain-text answer for the prompt
	GenerateText(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if config == nil {
		config = DefaultConfig()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// GenerateText generates text content using the model configured for tier
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(c.config.Temperature)
	if c.config.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(c.config.MaxOutputTokens)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}
	return CleanText(text), nil
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse joins the text parts of the first candidate
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("%w: prompt %s", ErrBlocked, fb.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", ErrBlocked
	}
	if candidate.Content == nil {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
