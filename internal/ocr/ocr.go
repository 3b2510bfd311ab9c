// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr sends batches of rendered page images to a vision backend and
// maps the responses back onto page indices.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/pdiddy/lecture-engine/pkg/types"
)

// VisionBackend abstracts the vision/LLM API so tests can supply a fake.
type VisionBackend interface {
	ExtractPages(ctx context.Context, system, user string, imagePaths []string) (string, error)
}

// RetryPolicy bounds recovery from retryable API errors. The first attempt
// is free; MaxRetries further attempts follow with exponential backoff
// (BaseDelay, 2*BaseDelay, 4*BaseDelay, ...).
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 2 * time.Second
)

func (p RetryPolicy) maxRetries() int {
	if p.MaxRetries <= 0 {
		return defaultMaxRetries
	}
	return p.MaxRetries
}

func (p RetryPolicy) baseDelay() time.Duration {
	if p.BaseDelay <= 0 {
		return defaultBaseDelay
	}
	return p.BaseDelay
}

// Extractor runs the batch extraction loop. Batches are processed strictly
// one at a time; each batch's images are released through Cleanup as soon as
// its API call returns, whether it succeeded or not.
type Extractor struct {
	Backend VisionBackend
	Policy  RetryPolicy

	// Cleanup, when set, is called with a batch's image paths after the
	// batch has been submitted.
	Cleanup func(paths []string)
}

// ExtractBatches extracts text for every batch in order and returns the
// fragments in ascending page order. images maps each page index to its
// rendered image path. The first unrecoverable error aborts the run.
func (e *Extractor) ExtractBatches(ctx context.Context, batches [][]int, images map[int]string, w io.Writer) ([]types.Fragment, error) {
	var fragments []types.Fragment

	for _, batch := range batches {
		paths := make([]string, len(batch))
		for i, p := range batch {
			path, ok := images[p]
			if !ok {
				return nil, fmt.Errorf("no rendered image for page %d", p)
			}
			paths[i] = path
		}

		fmt.Fprintf(w, "extracting %s\n", pageLabel(batch))

		text, err := e.callWithRetry(ctx, batch, paths)
		if e.Cleanup != nil {
			e.Cleanup(paths)
		}
		if err != nil {
			return nil, fmt.Errorf("extracting %s: %w", pageLabel(batch), err)
		}

		fragments = append(fragments, splitResponse(text, batch)...)
	}

	return fragments, nil
}

// callWithRetry submits one batch, retrying retryable API errors with
// exponential backoff. Retry exhaustion escalates to a non-retryable
// APIError carrying the last cause.
func (e *Extractor) callWithRetry(ctx context.Context, batch []int, paths []string) (string, error) {
	prompt, err := renderOCRPrompt(batch)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	maxRetries := e.Policy.maxRetries()
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * e.Policy.baseDelay()
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := e.Backend.ExtractPages(ctx, ocrSystemPrompt, prompt, paths)
		if err == nil {
			return text, nil
		}

		var apiErr *types.APIError
		if !errors.As(err, &apiErr) || !apiErr.Retryable {
			return "", err
		}
		lastErr = err
	}

	var status int
	var apiErr *types.APIError
	if errors.As(lastErr, &apiErr) {
		status = apiErr.Status
	}
	return "", &types.APIError{
		Status:    status,
		Retryable: false,
		Err:       fmt.Errorf("retries exhausted after %d attempts: %w", maxRetries+1, lastErr),
	}
}

// splitResponse maps a batch response back onto page indices using the
// page-marker contract. When the response carries exactly one marker per
// batch page, in batch order, each page becomes its own fragment. Any other
// shape keeps the whole response as a single fragment spanning the batch, so
// text is never attributed to the wrong page.
func splitResponse(text string, batch []int) []types.Fragment {
	type span struct {
		page  int
		lines []string
	}

	var spans []span
	var preamble []string

	for _, line := range strings.Split(text, "\n") {
		if page, ok := parsePageMarker(strings.TrimSpace(line)); ok {
			spans = append(spans, span{page: page})
			continue
		}
		if len(spans) == 0 {
			preamble = append(preamble, line)
			continue
		}
		last := &spans[len(spans)-1]
		last.lines = append(last.lines, line)
	}

	conforms := len(spans) == len(batch) && strings.TrimSpace(strings.Join(preamble, "\n")) == ""
	if conforms {
		for i := range spans {
			if spans[i].page != batch[i] {
				conforms = false
				break
			}
		}
	}

	if !conforms {
		return []types.Fragment{{
			Pages: append([]int(nil), batch...),
			Text:  strings.TrimSpace(text),
		}}
	}

	fragments := make([]types.Fragment, len(spans))
	for i, s := range spans {
		fragments[i] = types.Fragment{
			Pages: []int{s.page},
			Text:  strings.TrimSpace(strings.Join(s.lines, "\n")),
		}
	}
	return fragments
}

// pageLabel renders a batch for progress output: "page 7" or "pages 1 to 3".
func pageLabel(batch []int) string {
	if len(batch) == 1 {
		return fmt.Sprintf("page %d", batch[0])
	}
	return fmt.Sprintf("pages %d to %d", batch[0], batch[len(batch)-1])
}
