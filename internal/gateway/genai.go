// internal/gateway/genai.go
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"studybuddy/internal/models"
)

// GenAIOptions configures the Gemini generator. BaseURL and HTTPClient are
// only set when pointing at a proxy or test server.
type GenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GenAIGenerator calls Gemini through the google.golang.org/genai SDK.
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

func NewGenAIGenerator(ctx context.Context, opts GenAIOptions) (*GenAIGenerator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini api key", ErrMissingCredential)
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAIGenerator{client: client, model: opts.Model}, nil
}

func (g *GenAIGenerator) Name() string { return "gemini" }

func (g *GenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	msgs := req.Messages()
	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.Role(genai.RoleUser)
		if m.Role == models.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
