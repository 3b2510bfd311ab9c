// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DocumentKind identifies the source document format.
type DocumentKind string

const (
	KindPDF  DocumentKind = "pdf"
	KindPPTX DocumentKind = "pptx"
)

// Document describes the source file for one processing run.
type Document struct {
	// Path is the filesystem path to the source PDF or PPTX.
	Path string `json:"path" yaml:"path"`

	// Kind is the detected source format.
	Kind DocumentKind `json:"kind" yaml:"kind"`

	// Basename is the file name without directory or extension; artifact
	// names derive from it.
	Basename string `json:"basename" yaml:"basename"`

	// Pages is the total page count of the working PDF.
	Pages int `json:"pages" yaml:"pages"`
}

// Fragment is the text extracted for one page or one multi-page batch,
// tagged with the page indices it covers. Pages is non-empty, strictly
// increasing, and contiguous within a batch.
type Fragment struct {
	Pages []int  `json:"pages" yaml:"pages"`
	Text  string `json:"text" yaml:"text"`
}

// First returns the lowest page index the fragment covers.
func (f Fragment) First() int { return f.Pages[0] }

// Last returns the highest page index the fragment covers.
func (f Fragment) Last() int { return f.Pages[len(f.Pages)-1] }

// ArtifactKind identifies one of the persisted outputs.
type ArtifactKind string

const (
	ArtifactExtracted ArtifactKind = "extracted"
	ArtifactSummary   ArtifactKind = "summary"
	ArtifactQA        ArtifactKind = "qa"
)

// Artifact records one persisted output file.
type Artifact struct {
	Kind ArtifactKind `json:"kind" yaml:"kind"`
	Path string       `json:"path" yaml:"path"`
}

// RunRecord is the durable summary of one processing run, persisted both in
// the YAML manifest next to the artifacts and in the run history store.
type RunRecord struct {
	// ID is assigned by the history store (0 until stored).
	ID int64 `json:"id,omitempty" yaml:"id,omitempty"`

	// Source is the path of the document that was processed.
	Source string `json:"source" yaml:"source"`

	// Selector is the page selector as supplied; empty means all pages.
	Selector string `json:"selector,omitempty" yaml:"selector,omitempty"`

	// Pages lists the page indices that were processed, ascending.
	Pages []int `json:"pages" yaml:"pages"`

	// BatchSize is the extraction batch size used.
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// Model is the model identifier used for extraction and notes.
	Model string `json:"model" yaml:"model"`

	// ExtractedPath, SummaryPath, and QAPath are the written artifacts.
	// SummaryPath and QAPath are empty when notes generation was skipped
	// or failed after extraction succeeded.
	ExtractedPath string `json:"extracted_path" yaml:"extracted_path"`
	SummaryPath   string `json:"summary_path,omitempty" yaml:"summary_path,omitempty"`
	QAPath        string `json:"qa_path,omitempty" yaml:"qa_path,omitempty"`

	// CreatedAt is the completion time of the run.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
