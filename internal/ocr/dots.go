// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/docmark/internal/httputil"
	"github.com/pdiddy/docmark/pkg/types"
)

const (
	defaultModel     = "dots.ocr"
	imagePromptToken = "<|img|><|imgpad|><|endofimg|>"
)

// DotsClient recognizes pages through an OpenAI-compatible chat completion
// endpoint serving a vision layout model.
type DotsClient struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
	policy   httputil.Policy
	limiter  *rate.Limiter

	Temperature         float64
	TopP                float64
	MaxCompletionTokens int
}

// NewDotsClient builds a client from cfg. BaseURL and APIKey are required.
// Retry lines are written to log.
func NewDotsClient(cfg types.OCRConfig, log io.Writer) (*DotsClient, error) {
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("OCR API key or base URL not set (ocr-api-key / ocr-base-url secrets or OCR_API_KEY / OCR_BASE_URL)")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	policy := httputil.DefaultPolicy
	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	policy.Log = log

	c := &DotsClient{
		endpoint:            strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		apiKey:              cfg.APIKey,
		model:               model,
		client:              &http.Client{Timeout: timeout},
		policy:              policy,
		Temperature:         0.1,
		TopP:                0.9,
		MaxCompletionTokens: 32768,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c, nil
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens"`
	Temperature         float64       `json:"temperature"`
	TopP                float64       `json:"top_p"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Recognize sends the page and prompt to the model and returns the reply.
func (c *DotsClient) Recognize(ctx context.Context, page Page, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	mime := page.MIME
	if mime == "" {
		mime = "image/png"
	}
	dataURI := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(page.Image))

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "image_url", ImageURL: &imageURL{URL: dataURI}},
				{Type: "text", Text: imagePromptToken + prompt},
			},
		}},
		MaxCompletionTokens: c.MaxCompletionTokens,
		Temperature:         c.Temperature,
		TopP:                c.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := httputil.DoWithRetry(ctx, c.client, req, c.policy)
	if err != nil {
		return "", fmt.Errorf("calling inference service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference service error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty response from inference service: no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
