// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates one processing run: select pages, render
// them, extract text through the vision backend, and persist the artifacts.
// Execution is strictly sequential; the only blocking points are the
// external subprocesses and the API calls.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/lecture-engine/internal/artifacts"
	"github.com/pdiddy/lecture-engine/internal/history"
	"github.com/pdiddy/lecture-engine/internal/notes"
	"github.com/pdiddy/lecture-engine/internal/ocr"
	"github.com/pdiddy/lecture-engine/internal/pages"
	"github.com/pdiddy/lecture-engine/internal/render"
	"github.com/pdiddy/lecture-engine/pkg/types"
)

// OfficeConverter converts an office document to a PDF in outDir.
type OfficeConverter interface {
	Convert(ctx context.Context, docPath, outDir string) (string, error)
}

// PageRenderer rasterizes the given pages of a PDF into outDir and returns
// a map from page index to image path.
type PageRenderer interface {
	RenderPages(ctx context.Context, pdfPath string, pageList []int, outDir string) (map[int]string, error)
}

// Processor holds the collaborators for one or more processing runs.
type Processor struct {
	// Office is required only for PPTX sources; nil is fine for PDFs.
	Office OfficeConverter

	Renderer PageRenderer

	// Vision serves the OCR extraction calls.
	Vision ocr.VisionBackend

	// Notes serves the summary and Q&A calls. Ignored when the
	// configuration skips notes.
	Notes notes.Backend

	// History records completed runs; nil disables history.
	History *history.Store

	Config types.PipelineConfig

	// SkipNotes stops after the extracted-text artifact.
	SkipNotes bool

	// PageCount is substituted in tests; nil uses the real PDF reader.
	PageCount func(pdfPath string) (int, error)
}

// DetectKind classifies the source document by its extension.
func DetectKind(path string) (types.DocumentKind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return types.KindPDF, nil
	case ".pptx", ".ppt":
		return types.KindPPTX, nil
	default:
		return "", &types.InputError{
			Msg: fmt.Sprintf("unsupported file format %q (supported: .pdf, .pptx, .ppt)", filepath.Ext(path)),
		}
	}
}

// Process runs the full pipeline for one document. The extracted-text
// artifact is written as soon as OCR completes, so a later summary or Q&A
// failure never loses finished extraction work.
func (p *Processor) Process(ctx context.Context, path, selector string, w io.Writer) (*types.RunRecord, error) {
	kind, err := DetectKind(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, &types.InputError{Msg: fmt.Sprintf("source file %s", path), Err: err}
	}

	tmpDir, err := os.MkdirTemp("", "lecture-engine-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// PPTX sources are converted to a working PDF once, up front.
	workingPDF := path
	if kind == types.KindPPTX {
		if p.Office == nil {
			return nil, &types.ConversionError{Path: path, Err: fmt.Errorf("no office converter available")}
		}
		fmt.Fprintf(w, "converting %s to PDF\n", filepath.Base(path))
		workingPDF, err = p.Office.Convert(ctx, path, tmpDir)
		if err != nil {
			return nil, &types.ConversionError{Path: path, Err: err}
		}
	}

	pageCount := p.PageCount
	if pageCount == nil {
		pageCount = render.PageCount
	}
	total, err := pageCount(workingPDF)
	if err != nil {
		return nil, err
	}

	selected, err := pages.ParseSelector(selector, total)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "processing %d of %d pages\n", len(selected), total)

	images, err := p.Renderer.RenderPages(ctx, workingPDF, selected, tmpDir)
	if err != nil {
		return nil, err
	}

	batchSize := p.Config.Extraction.BatchSize
	if batchSize <= 0 {
		batchSize = 3
	}
	batches := pages.SplitBatches(selected, batchSize)

	extractor := &ocr.Extractor{
		Backend: p.Vision,
		Policy: ocr.RetryPolicy{
			MaxRetries: p.Config.Extraction.MaxRetries,
			BaseDelay:  p.Config.Extraction.RetryBaseDelay,
		},
		// Page images are released as soon as their batch has been
		// submitted, whether or not the call succeeded.
		Cleanup: func(paths []string) {
			for _, img := range paths {
				os.Remove(img)
			}
		},
	}

	fragments, err := extractor.ExtractBatches(ctx, batches, images, w)
	if err != nil {
		return nil, err
	}

	writer := &artifacts.Writer{
		OutputDir: p.Config.Output.OutputDir,
		Basename:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	extracted := artifacts.Aggregate(fragments)
	extractedPath, err := writer.Write(types.ArtifactExtracted, extracted)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "wrote %s\n", extractedPath)

	rec := &types.RunRecord{
		Source:        path,
		Selector:      strings.TrimSpace(selector),
		Pages:         selected,
		BatchSize:     batchSize,
		Model:         p.Config.Extraction.Model,
		ExtractedPath: extractedPath,
		CreatedAt:     time.Now().UTC(),
	}

	// The manifest and history record are written even when a notes call
	// fails, so a partial run (extracted text on disk, no notes) stays
	// discoverable through the history store.
	var notesErr error
	if !p.SkipNotes {
		notesErr = p.generateNotes(ctx, rec, writer, extracted, w)
	}

	manifestPath, err := writer.WriteManifest(*rec)
	if err != nil {
		if notesErr != nil {
			return nil, notesErr
		}
		return nil, err
	}
	fmt.Fprintf(w, "wrote %s\n", manifestPath)

	if p.History != nil {
		id, err := p.History.Insert(ctx, *rec)
		if err != nil {
			fmt.Fprintf(w, "warning: could not record run history: %v\n", err)
		} else {
			rec.ID = id
		}
	}

	if notesErr != nil {
		return nil, notesErr
	}
	return rec, nil
}

// generateNotes runs the summary and Q&A calls, filling rec's artifact paths
// as each file lands on disk.
func (p *Processor) generateNotes(ctx context.Context, rec *types.RunRecord, writer *artifacts.Writer, extracted string, w io.Writer) error {
	fmt.Fprintln(w, "generating summary notes")
	summary, err := notes.Summarize(ctx, p.Notes, p.Config.Notes, extracted)
	if err != nil {
		return err
	}
	if rec.SummaryPath, err = writer.Write(types.ArtifactSummary, summary); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %s\n", rec.SummaryPath)

	fmt.Fprintln(w, "generating Q&A pairs")
	qa, err := notes.GenerateQA(ctx, p.Notes, p.Config.Notes, extracted)
	if err != nil {
		return err
	}
	if rec.QAPath, err = writer.Write(types.ArtifactQA, qa); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %s\n", rec.QAPath)
	return nil
}

// ProcessImages extracts text from a directory of pre-rendered images,
// skipping conversion and rasterization. Images are taken in lexical order
// and numbered from 1; the extracted text is the only artifact.
func (p *Processor) ProcessImages(ctx context.Context, dir string, w io.Writer) (*types.RunRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &types.InputError{Msg: fmt.Sprintf("image directory %s", dir), Err: err}
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, &types.InputError{Msg: fmt.Sprintf("no images (.png, .jpg, .jpeg) in %s", dir)}
	}
	sort.Strings(paths)

	images := make(map[int]string, len(paths))
	indices := make([]int, len(paths))
	for i, path := range paths {
		images[i+1] = path
		indices[i] = i + 1
	}
	fmt.Fprintf(w, "extracting text from %d images\n", len(paths))

	batchSize := p.Config.Extraction.BatchSize
	if batchSize <= 0 {
		batchSize = 3
	}
	batches := pages.SplitBatches(indices, batchSize)

	// No Cleanup here: the images belong to the user, not to this run.
	extractor := &ocr.Extractor{
		Backend: p.Vision,
		Policy: ocr.RetryPolicy{
			MaxRetries: p.Config.Extraction.MaxRetries,
			BaseDelay:  p.Config.Extraction.RetryBaseDelay,
		},
	}

	fragments, err := extractor.ExtractBatches(ctx, batches, images, w)
	if err != nil {
		return nil, err
	}

	writer := &artifacts.Writer{
		OutputDir: p.Config.Output.OutputDir,
		Basename:  filepath.Base(filepath.Clean(dir)),
	}
	extractedPath, err := writer.Write(types.ArtifactExtracted, artifacts.AggregateImages(fragments))
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "wrote %s\n", extractedPath)

	rec := &types.RunRecord{
		Source:        dir,
		Pages:         indices,
		BatchSize:     batchSize,
		Model:         p.Config.Extraction.Model,
		ExtractedPath: extractedPath,
		CreatedAt:     time.Now().UTC(),
	}

	if p.History != nil {
		id, err := p.History.Insert(ctx, *rec)
		if err != nil {
			fmt.Fprintf(w, "warning: could not record run history: %v\n", err)
		} else {
			rec.ID = id
		}
	}

	return rec, nil
}
