// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lecture-engine/pkg/types"
)

func testConfig(baseURL string) types.AIConfig {
	return types.AIConfig{
		Model:   "test-model",
		BaseURL: baseURL,
		APIKey:  "test-key",
	}
}

// chatResponse builds a minimal chat completions body with one choice.
func chatResponse(text string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": text},
			},
		},
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(types.AIConfig{Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")

	_, err = NewClient(types.AIConfig{APIKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model")
}

func TestCompleteRoundTrip(t *testing.T) {
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse("  the answer \n"))
	}))
	defer ts.Close()

	c, err := NewClient(testConfig(ts.URL))
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "be brief", "what is it")
	require.NoError(t, err)
	assert.Equal(t, "the answer", out)

	assert.Equal(t, "test-model", gotBody["model"])
	msgs := gotBody["messages"].([]any)
	require.Len(t, msgs, 2)
}

func TestExtractPagesSendsImageParts(t *testing.T) {
	dir := t.TempDir()
	img1 := filepath.Join(dir, "page_0001.png")
	img2 := filepath.Join(dir, "page_0002.png")
	require.NoError(t, os.WriteFile(img1, []byte("first"), 0o644))
	require.NoError(t, os.WriteFile(img2, []byte("second"), 0o644))

	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse("extracted"))
	}))
	defer ts.Close()

	c, err := NewClient(testConfig(ts.URL))
	require.NoError(t, err)

	out, err := c.ExtractPages(context.Background(), "ocr system", "extract these", []string{img1, img2})
	require.NoError(t, err)
	assert.Equal(t, "extracted", out)

	msgs := gotBody["messages"].([]any)
	require.Len(t, msgs, 2)
	user := msgs[1].(map[string]any)
	parts := user["content"].([]any)
	require.Len(t, parts, 3) // one text part plus two images

	text := parts[0].(map[string]any)
	assert.Equal(t, "text", text["type"])

	for i, part := range parts[1:] {
		p := part.(map[string]any)
		assert.Equal(t, "image_url", p["type"], "part %d", i+1)
		url := p["image_url"].(map[string]any)["url"].(string)
		assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"), "part %d url %q", i+1, url)
	}
}

func TestExtractPagesMissingImage(t *testing.T) {
	c, err := NewClient(testConfig("http://127.0.0.1:0"))
	require.NoError(t, err)

	_, err = c.ExtractPages(context.Background(), "s", "u", []string{"/no/such/image.png"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page image")
}

func TestClassifyStatusCodes(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusRequestTimeout, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusUnauthorized, false},
		{http.StatusForbidden, false},
		{http.StatusBadRequest, false},
		{http.StatusNotFound, false},
	}

	for _, tt := range tests {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"error":{"message":"nope"}}`))
		}))

		cfg := testConfig(ts.URL)
		cfg.MaxRetries = 0
		c, err := NewClient(cfg)
		require.NoError(t, err)

		_, err = c.Complete(context.Background(), "s", "u")
		require.Error(t, err, "status %d", tt.status)

		var apiErr *types.APIError
		require.True(t, errors.As(err, &apiErr), "status %d: %v", tt.status, err)
		assert.Equal(t, tt.status, apiErr.Status)
		assert.Equal(t, tt.retryable, apiErr.Retryable, "status %d", tt.status)

		ts.Close()
	}
}

func TestClassifyContextErrors(t *testing.T) {
	cancelled := Classify(context.Canceled)
	assert.False(t, cancelled.Retryable)

	deadline := Classify(context.DeadlineExceeded)
	assert.True(t, deadline.Retryable)
}
