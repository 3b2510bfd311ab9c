// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// The pipeline distinguishes five failure classes. All of them abort the run
// immediately except a retryable APIError, which the extraction client
// retries with bounded backoff before escalating. Callers classify with
// errors.As.

// InputError reports a bad source path, malformed page selector, or an
// out-of-range page index.
type InputError struct {
	Msg string
	Err error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("input: %s: %v", e.Msg, e.Err)
	}
	return "input: " + e.Msg
}

func (e *InputError) Unwrap() error { return e.Err }

// ConversionError reports a failed office-document-to-PDF conversion.
type ConversionError struct {
	Path string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("converting %s to PDF: %v", e.Path, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// RenderError reports a failed page rasterization. A single failed page is
// fatal to the run; partial documents are never produced.
type RenderError struct {
	Page int
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering page %d: %v", e.Page, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// APIError reports a failed vision/LLM API call. Retryable errors (rate
// limit, timeout, server error) are retried locally; non-retryable errors
// (auth failure, malformed request) abort the run with the cause surfaced.
type APIError struct {
	Status    int
	Retryable bool
	Err       error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("api: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("api: %v", e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// IOError reports a failed artifact write. Artifacts already on disk are
// left intact.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
