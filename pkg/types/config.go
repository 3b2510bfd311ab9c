package types

import "time"

// AIConfig holds shared settings for stages that call the vision/LLM API.
type AIConfig struct {
	// Model is the model identifier sent with every request
	// (e.g. "meta-llama/llama-4-scout-17b-16e-instruct").
	Model string `json:"model" yaml:"model"`

	// BaseURL is the OpenAI-compatible endpoint root
	// (e.g. "https://api.groq.com/openai/v1").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens bounds the response length per request (default 8192).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// MaxRetries is the number of retry attempts for retryable API
	// failures (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RetryBaseDelay is the base duration for exponential backoff
	// between retries (default 2s).
	RetryBaseDelay time.Duration `json:"retry_base_delay" yaml:"retry_base_delay"`
}

// RenderConfig holds settings for the page materialization stage.
type RenderConfig struct {
	// DPI is the rasterization resolution passed to the renderer (default 300).
	DPI int `json:"dpi" yaml:"dpi"`
}

// ExtractionConfig holds settings for the OCR extraction stage.
type ExtractionConfig struct {
	AIConfig `yaml:",inline"`

	// BatchSize is the number of page images sent per API call (default 3).
	// A batch size of 1 guarantees per-page attribution of the response.
	BatchSize int `json:"batch_size" yaml:"batch_size"`
}

// NotesConfig holds settings for summary and Q&A generation.
type NotesConfig struct {
	AIConfig `yaml:",inline"`

	// Questions is the number of Q&A pairs to request (default 10).
	Questions int `json:"questions" yaml:"questions"`

	// Title is an optional title woven into the summary notes.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// OutputConfig holds settings for artifact persistence.
type OutputConfig struct {
	// OutputDir is the directory artifacts are written to (default "outputs").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// HistoryConfig holds settings for the run history store.
type HistoryConfig struct {
	// OutputDir is the base directory; the database lives in OutputDir/index/.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// MaxResults is the default maximum number of listed runs (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations for one processing run.
type PipelineConfig struct {
	Render     RenderConfig     `json:"render" yaml:"render"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Notes      NotesConfig      `json:"notes" yaml:"notes"`
	Output     OutputConfig     `json:"output" yaml:"output"`
	History    HistoryConfig    `json:"history" yaml:"history"`
}
