// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lecture-engine/internal/history"
	"github.com/pdiddy/lecture-engine/internal/llm"
	"github.com/pdiddy/lecture-engine/internal/pipeline"
	"github.com/pdiddy/lecture-engine/internal/render"
	"github.com/pdiddy/lecture-engine/pkg/types"
)

const (
	defaultModel      = "meta-llama/llama-4-scout-17b-16e-instruct"
	defaultBatchSize  = 3
	defaultDPI        = 300
	defaultOutputDir  = "outputs"
	defaultMaxRetries = 3
	defaultQuestions  = 10
	defaultRetryDelay = 2 * time.Second
)

var processCmd = &cobra.Command{
	Use:   "process <file> [pageSelector]",
	Short: "Extract, summarize, and generate Q&A for a PDF or PPTX document",
	Long: `Process runs the full pipeline over one document: the selected pages are
rasterized, OCR-extracted through the vision model in batches, and the
aggregated text is turned into summary notes and Q&A pairs.

The optional page selector is comma-separated tokens, each a page number
or an inclusive range: "1-10, 15, 20-25". Without a selector the whole
document is processed. Outputs land in the output directory as
<basename>_extracted.txt, _summary.txt, and _qa.txt; the extracted text
is written before the notes calls, so it survives their failures.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().Int("batch-size", defaultBatchSize, "page images per extraction call (1 guarantees per-page attribution)")
	processCmd.Flags().Int("dpi", defaultDPI, "rasterization resolution")
	processCmd.Flags().String("output-dir", defaultOutputDir, "directory for generated artifacts")
	processCmd.Flags().String("model", defaultModel, "model identifier for extraction and notes")
	processCmd.Flags().String("base-url", llm.DefaultBaseURL, "OpenAI-compatible API endpoint")
	processCmd.Flags().Int("max-retries", defaultMaxRetries, "retries for retryable API errors")
	processCmd.Flags().Int("questions", defaultQuestions, "number of Q&A pairs to generate")
	processCmd.Flags().String("title", "", "optional title for the summary notes")
	processCmd.Flags().Bool("skip-notes", false, "stop after extraction; no summary or Q&A")

	// Every tuning flag is also settable via lecture-engine.yaml or a
	// LECTURE_ENGINE_* environment variable; an explicit flag wins.
	for key, flag := range map[string]string{
		"batch_size":  "batch-size",
		"dpi":         "dpi",
		"output_dir":  "output-dir",
		"model":       "model",
		"base_url":    "base-url",
		"max_retries": "max-retries",
		"questions":   "questions",
		"title":       "title",
	} {
		viper.BindPFlag(key, processCmd.Flags().Lookup(flag))
	}

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	path := args[0]
	selector := ""
	if len(args) == 2 {
		selector = args[1]
	}

	cfg := pipelineConfig()
	skipNotes, _ := cmd.Flags().GetBool("skip-notes")

	client, err := llm.NewClient(cfg.Extraction.AIConfig)
	if err != nil {
		return err
	}

	renderer, err := render.DetectRenderer(cfg.Render.DPI)
	if err != nil {
		return err
	}

	processor := &pipeline.Processor{
		Renderer:  renderer,
		Vision:    client,
		Notes:     client,
		Config:    cfg,
		SkipNotes: skipNotes,
	}

	// The office converter is only needed for slide decks; a PDF-only
	// setup works without LibreOffice installed.
	if kind, err := pipeline.DetectKind(path); err == nil && kind == types.KindPPTX {
		office, err := render.DetectOffice()
		if err != nil {
			return err
		}
		processor.Office = office
	}

	store, err := history.NewStore(cfg.History)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: run history disabled: %v\n", err)
	} else {
		defer store.Close()
		processor.History = store
	}

	rec, err := processor.Process(context.Background(), path, selector, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("\nProcessed %d pages of %s\n", len(rec.Pages), rec.Source)
	fmt.Printf("Extracted text: %s\n", rec.ExtractedPath)
	if rec.SummaryPath != "" {
		fmt.Printf("Summary notes:  %s\n", rec.SummaryPath)
	}
	if rec.QAPath != "" {
		fmt.Printf("Q&A pairs:      %s\n", rec.QAPath)
	}
	return nil
}

// pipelineConfig assembles the run configuration through viper, layering
// config file, environment, and bound flags, plus the loaded secrets.
func pipelineConfig() types.PipelineConfig {
	outputDir := viper.GetString("output_dir")

	ai := types.AIConfig{
		Model:          viper.GetString("model"),
		BaseURL:        viper.GetString("base_url"),
		APIKey:         apiKey(),
		MaxRetries:     viper.GetInt("max_retries"),
		RetryBaseDelay: defaultRetryDelay,
	}

	return types.PipelineConfig{
		Render: types.RenderConfig{DPI: viper.GetInt("dpi")},
		Extraction: types.ExtractionConfig{
			AIConfig:  ai,
			BatchSize: viper.GetInt("batch_size"),
		},
		Notes: types.NotesConfig{
			AIConfig:  ai,
			Questions: viper.GetInt("questions"),
			Title:     viper.GetString("title"),
		},
		Output:  types.OutputConfig{OutputDir: outputDir},
		History: types.HistoryConfig{OutputDir: outputDir},
	}
}
