// Package ai provides the text-generation backend used for problem
// generation and judging.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 2048
	defaultTimeout   = 45 * time.Second
)

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("ai: api key not configured")

// Generator produces raw text for a prompt. Parsing the text is the caller's job.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Disabled always fails, which drives callers onto their fallbacks.
type Disabled struct{}

func (Disabled) Generate(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

// GeminiClient implements Generator on the Gemini generateContent API.
type GeminiClient struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

type clientOptions struct {
	model     string
	baseURL   string
	timeout   time.Duration
	maxTokens int
}

// ClientOption configures a GeminiClient.
type ClientOption func(*clientOptions)

// WithModel sets the model; both "gemini-x" and "models/gemini-x" are accepted.
func WithModel(model string) ClientOption {
	return func(o *clientOptions) {
		if model != "" {
			o.model = strings.TrimPrefix(model, "models/")
		}
	}
}

// WithBaseURL points the client at another endpoint root.
func WithBaseURL(u string) ClientOption {
	return func(o *clientOptions) {
		if u != "" {
			o.baseURL = strings.TrimRight(u, "/") + "/"
		}
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

func WithMaxTokens(n int) ClientOption {
	return func(o *clientOptions) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

// NewGeminiClient returns a client for apiKey.
func NewGeminiClient(apiKey string, opts ...ClientOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	o := clientOptions{model: defaultModel, timeout: defaultTimeout, maxTokens: defaultMaxTokens}
	for _, opt := range opts {
		opt(&o)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: o.timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: o.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  o.model,
		config: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](0.7),
			MaxOutputTokens: int32(o.maxTokens),
		},
	}, nil
}

// Generate sends prompt as a single user turn and returns the first candidate's text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), c.config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	if len(resp.Candidates) == 0 {
		reason := "unknown"
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			reason = string(resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("gemini returned no candidates (block reason: %s)", reason)
	}

	cand := resp.Candidates[0]
	switch cand.FinishReason {
	case "", genai.FinishReasonStop, genai.FinishReasonMaxTokens:
	default:
		return "", fmt.Errorf("gemini finished with reason %s", cand.FinishReason)
	}

	var b strings.Builder
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if part != nil && !part.Thought {
				b.WriteString(part.Text)
			}
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("gemini candidate had no text")
	}
	return text, nil
}
