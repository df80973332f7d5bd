// Package gemini drafts text with a Gemini model through the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.5-flash"
)

var (
	// ErrInvalidAPIKey is returned when the API rejects the credentials or none are configured.
	ErrInvalidAPIKey = errors.New("invalid Gemini API key")
	// ErrQuotaExceeded is returned when the API refuses the call for quota reasons.
	ErrQuotaExceeded = errors.New("gemini API quota exceeded")
	// ErrEmptyResponse is returned when the API answers without any text.
	ErrEmptyResponse = errors.New("gemini returned no content")
)

// ContentGenerator is the part of *genai.Models the client uses.
type ContentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Client generates text with a Gemini model.
type Client struct {
	model  string
	models ContentGenerator
	log    *slog.Logger

	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithModel overrides DefaultModel.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL points the client at another API root.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

// WithHTTPClient replaces the SDK's HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

// NewClient creates a Client for apiKey. Without a key every Generate call fails with
// ErrInvalidAPIKey, so the rest of the API stays usable.
func NewClient(ctx context.Context, apiKey string, log *slog.Logger, opts ...Option) (*Client, error) {
	c := &Client{model: DefaultModel, log: log}
	for _, opt := range opts {
		opt(c)
	}

	if apiKey == "" {
		return c, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	c.models = client.Models

	return c, nil
}

// Generate sends prompt to the model and returns the text of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.models == nil {
		return "", fmt.Errorf("%w: no API key configured", ErrInvalidAPIKey)
	}

	c.log.DebugContext(ctx, "Requesting Gemini completion", "model", c.model, "prompt_len", len(prompt))

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", classify(err)
	}

	var sb strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, p := range resp.Candidates[0].Content.Parts {
			if p != nil {
				sb.WriteString(p.Text)
			}
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}

	return sb.String(), nil
}

func classify(err error) error {
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		apiErr = *apiErrPtr
	default:
		return fmt.Errorf("failed to generate content: %w", err)
	}

	lower := strings.ToLower(apiErr.Message)

	switch {
	case apiErr.Code == http.StatusUnauthorized, apiErr.Code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrInvalidAPIKey, apiErr.Message)
	case apiErr.Code == http.StatusBadRequest && strings.Contains(lower, "api key"):
		return fmt.Errorf("%w: %s", ErrInvalidAPIKey, apiErr.Message)
	case apiErr.Code == http.StatusTooManyRequests, strings.Contains(lower, "quota"):
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, apiErr.Message)
	default:
		return fmt.Errorf("gemini API error (status %d): %s", apiErr.Code, apiErr.Message)
	}
}
