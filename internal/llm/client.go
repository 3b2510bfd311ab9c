// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps an OpenAI-compatible chat completions API. The same
// client serves the vision OCR calls (page images in, text out) and the
// plain-text notes calls. The endpoint is configurable so any compatible
// provider works; the default points at Groq.
package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pdiddy/lecture-engine/pkg/types"
)

// DefaultBaseURL is the endpoint used when none is configured.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

const defaultMaxTokens = 8192

// Client calls the chat completions API.
type Client struct {
	api       *openai.Client
	model     string
	maxTokens int64
}

// NewClient builds a Client from the AI configuration. The API key and
// model are required.
func NewClient(cfg types.AIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured: set LECTURE_ENGINE_API_KEY or .secrets/llm-api-key")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("no model configured")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	// The SDK's built-in retries are disabled; the extraction client owns
	// the retry policy so attempts stay observable and bounded in one place.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	api := openai.NewClient(opts...)

	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Client{
		api:       &api,
		model:     cfg.Model,
		maxTokens: maxTokens,
	}, nil
}

// ExtractPages sends the user prompt together with one image part per page
// image and returns the model's text response.
func (c *Client) ExtractPages(ctx context.Context, system, user string, imagePaths []string) (string, error) {
	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(imagePaths)+1)
	parts = append(parts, openai.TextContentPart(user))

	for _, path := range imagePaths {
		url, err := imageDataURL(path)
		if err != nil {
			return "", err
		}
		parts = append(parts, openai.ImageContentPart(
			openai.ChatCompletionContentPartImageImageURLParam{URL: url},
		))
	}

	return c.chat(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(parts),
	})
}

// Complete sends a plain system/user exchange and returns the text response.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	return c.chat(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(user),
	})
}

func (c *Client) chat(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: openai.Int(c.maxTokens),
	})
	if err != nil {
		return "", Classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", &types.APIError{Retryable: true, Err: errors.New("empty response from model")}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Classify wraps an API transport error in the pipeline taxonomy. Rate
// limits, request timeouts, and server errors are retryable; auth failures
// and malformed requests are not. Transport-level failures without an HTTP
// status (connection reset, DNS) count as retryable.
func Classify(err error) *types.APIError {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		retryable := status == http.StatusTooManyRequests ||
			status == http.StatusRequestTimeout ||
			status >= http.StatusInternalServerError
		return &types.APIError{Status: status, Retryable: retryable, Err: err}
	}

	if errors.Is(err, context.Canceled) {
		return &types.APIError{Retryable: false, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &types.APIError{Retryable: true, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &types.APIError{Retryable: true, Err: err}
	}

	return &types.APIError{Retryable: true, Err: err}
}

// imageDataURL reads a rendered page image and encodes it as a base64 data
// URL suitable for an image_url content part.
func imageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading page image %s: %w", path, err)
	}

	mime := "image/png"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		mime = "image/jpeg"
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
