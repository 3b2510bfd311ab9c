// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifacts aggregates extracted fragments in page order and
// persists the run's outputs: extracted text, summary notes, Q&A pairs, and
// a YAML manifest. Files already written stay on disk when a later stage
// fails.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/lecture-engine/pkg/types"
)

// Suffixes appended to the source basename for each artifact file.
const (
	suffixExtracted = "_extracted.txt"
	suffixSummary   = "_summary.txt"
	suffixQA        = "_qa.txt"
	suffixManifest  = "_manifest.yaml"
)

// Aggregate concatenates fragments strictly in ascending page order, each
// under a header naming the page or page span it came from. Fragment order
// in the input does not matter; the output order is always by first page.
func Aggregate(fragments []types.Fragment) string {
	return aggregate(fragments, "Page", "Pages")
}

// AggregateImages is Aggregate for image-folder runs, where fragment indices
// number images in lexical order rather than document pages.
func AggregateImages(fragments []types.Fragment) string {
	return aggregate(fragments, "Image", "Images")
}

func aggregate(fragments []types.Fragment, singular, plural string) string {
	sorted := append([]types.Fragment(nil), fragments...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].First() < sorted[j].First()
	})

	var b strings.Builder
	for _, f := range sorted {
		fmt.Fprintf(&b, "\n\n--- %s ---\n\n", headerLabel(f, singular, plural))
		b.WriteString(f.Text)
	}
	return strings.TrimLeft(b.String(), "\n")
}

func headerLabel(f types.Fragment, singular, plural string) string {
	if f.First() == f.Last() {
		return fmt.Sprintf("%s %d", singular, f.First())
	}
	return fmt.Sprintf("%s %d to %d", plural, f.First(), f.Last())
}

// Writer persists artifacts under a fixed output directory, named from the
// source document's basename.
type Writer struct {
	OutputDir string
	Basename  string
}

// Path returns the file path for one artifact kind.
func (w *Writer) Path(kind types.ArtifactKind) string {
	suffix := suffixExtracted
	switch kind {
	case types.ArtifactSummary:
		suffix = suffixSummary
	case types.ArtifactQA:
		suffix = suffixQA
	}
	return filepath.Join(w.OutputDir, w.Basename+suffix)
}

// Write persists one artifact and returns its path. Failures are IOErrors.
func (w *Writer) Write(kind types.ArtifactKind, content string) (string, error) {
	if err := os.MkdirAll(w.OutputDir, 0o755); err != nil {
		return "", &types.IOError{Path: w.OutputDir, Err: err}
	}

	path := w.Path(kind)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", &types.IOError{Path: path, Err: err}
	}
	return path, nil
}

// WriteManifest marshals the run record to <basename>_manifest.yaml next to
// the other artifacts and returns its path.
func (w *Writer) WriteManifest(rec types.RunRecord) (string, error) {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshaling manifest: %w", err)
	}

	path := filepath.Join(w.OutputDir, w.Basename+suffixManifest)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &types.IOError{Path: path, Err: err}
	}
	return path, nil
}
