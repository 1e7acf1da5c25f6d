// internal/gateway/openai.go
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	commonhttp "studybuddy/internal/common/http"
)

// OpenAIOptions configures any OpenAI-compatible chat completions endpoint.
type OpenAIOptions struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

type OpenAIGenerator struct {
	client *commonhttp.Client
	opts   OpenAIOptions
}

func NewOpenAIGenerator(client *commonhttp.Client, opts OpenAIOptions) (*OpenAIGenerator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: openai-compatible api key", ErrMissingCredential)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.deepseek.com/v1"
	}
	if opts.Model == "" {
		opts.Model = "deepseek-chat"
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &OpenAIGenerator{client: client, opts: opts}, nil
}

func (g *OpenAIGenerator) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content string `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	body := chatRequest{
		Model:       g.opts.Model,
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	}
	if req.MaxTokens > 0 {
		body.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		body.Temperature = req.Temperature
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages() {
		body.Messages = append(body.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	data, err := g.client.PostJSON(ctx, g.opts.BaseURL+"/chat/completions", map[string]string{
		"Authorization": "Bearer " + g.opts.APIKey,
	}, body)
	if err != nil {
		return "", fmt.Errorf("chat completions: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrMalformedResponse, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}

	choice := parsed.Choices[0]
	text := choice.Text
	if choice.Message != nil {
		text = choice.Message.Content
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
