package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-2.0-flash"
)

// GeminiClient calls the Gemini generateContent endpoint through the genai SDK.
type GeminiClient struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
}

// NewGeminiClient returns a client for model. Empty baseURL and model fall back to the
// public endpoint and gemini-2.0-flash. Deadlines come from the caller's context.
func NewGeminiClient(baseURL, apiKey, model string) *GeminiClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		HTTP:    &http.Client{},
	}
}

func (c *GeminiClient) sdk(ctx context.Context) (*genai.Client, error) {
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     c.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: c.BaseURL + "/",
		},
	})
}

// Generate sends prompt as a single user turn and returns the concatenated text parts of
// the first candidate.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return "", errors.New("gemini: missing API key")
	}

	client, err := c.sdk(ctx)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, c.Model, genai.Text(prompt), nil)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("gemini: %s (%d %s)", apiErr.Message, apiErr.Code, apiErr.Status)
		}
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini: empty candidates")
	}
	return resp.Text(), nil
}
