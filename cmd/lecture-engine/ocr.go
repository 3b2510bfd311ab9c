// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lecture-engine/internal/history"
	"github.com/pdiddy/lecture-engine/internal/llm"
	"github.com/pdiddy/lecture-engine/internal/pipeline"
	"github.com/pdiddy/lecture-engine/pkg/types"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr <imageDir>",
	Short: "Extract text from a folder of page images",
	Long: `OCR runs extraction over a directory of pre-rendered images (.png, .jpg,
.jpeg), skipping conversion and rasterization. Images are processed in
lexical filename order and the combined text is written to
<dirname>_extracted.txt in the output directory. The source images are
never modified or removed.`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

func init() {
	ocrCmd.Flags().Int("batch-size", defaultBatchSize, "images per extraction call")
	ocrCmd.Flags().String("output-dir", defaultOutputDir, "directory for the extracted text")
	ocrCmd.Flags().String("model", defaultModel, "model identifier for extraction")
	ocrCmd.Flags().String("base-url", llm.DefaultBaseURL, "OpenAI-compatible API endpoint")
	ocrCmd.Flags().Int("max-retries", defaultMaxRetries, "retries for retryable API errors")

	rootCmd.AddCommand(ocrCmd)
}

func runOCR(cmd *cobra.Command, args []string) error {
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	model, _ := cmd.Flags().GetString("model")
	baseURL, _ := cmd.Flags().GetString("base-url")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")

	ai := types.AIConfig{
		Model:          model,
		BaseURL:        baseURL,
		APIKey:         apiKey(),
		MaxRetries:     maxRetries,
		RetryBaseDelay: defaultRetryDelay,
	}

	client, err := llm.NewClient(ai)
	if err != nil {
		return err
	}

	processor := &pipeline.Processor{
		Vision: client,
		Config: types.PipelineConfig{
			Extraction: types.ExtractionConfig{AIConfig: ai, BatchSize: batchSize},
			Output:     types.OutputConfig{OutputDir: outputDir},
			History:    types.HistoryConfig{OutputDir: outputDir},
		},
	}

	store, err := history.NewStore(processor.Config.History)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: run history disabled: %v\n", err)
	} else {
		defer store.Close()
		processor.History = store
	}

	rec, err := processor.ProcessImages(context.Background(), args[0], os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("\nExtracted text from %d images of %s\n", len(rec.Pages), rec.Source)
	fmt.Printf("Extracted text: %s\n", rec.ExtractedPath)
	return nil
}
