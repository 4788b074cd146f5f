package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// VertexClient implements Client for Gemini models served by Vertex AI.
// Credentials come from Application Default Credentials.
type VertexClient struct {
	client *genai.Client
	config *Config
}

// NewVertexClient creates a Vertex AI backed client
func NewVertexClient(ctx context.Context, config *Config) (*VertexClient, error) {
	if strings.TrimSpace(config.Project) == "" {
		return nil, errors.New("vertex project is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Project,
		Location: config.Location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &VertexClient{client: client, config: config}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *VertexClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, prompt, tier, "")
}

// GenerateJSON generates JSON content using the specified model tier
func (c *VertexClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	text, err := c.generate(ctx, prompt, tier, "application/json")
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *VertexClient) generate(ctx context.Context, prompt string, tier ModelTier, mimeType string) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	temperature := c.config.Temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: mimeType,
	}

	resp, err := c.client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Text == "" {
				continue
			}
			builder.WriteString(part.Text)
		}
		break
	}

	if builder.Len() == 0 {
		return "", errors.New("no text parts in response")
	}
	return builder.String(), nil
}

// GetModel returns the model name for a tier
func (c *VertexClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the genai client holds no closable resources.
func (c *VertexClient) Close() error {
	return nil
}
