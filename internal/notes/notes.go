// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notes turns aggregated extracted text into summary notes and
// exam-style Q&A pairs through one LLM call each.
package notes

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/pdiddy/lecture-engine/pkg/types"
)

// Backend abstracts the text completion API so tests can supply a fake.
type Backend interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const summarySystemPrompt = "You are an expert academic note maker who creates clear, " +
	"structured, comprehensive university-level notes for any subject. You format notes " +
	"in clean Markdown with strong organization, readability, and technical accuracy. " +
	"Always retain all key details, definitions, formulas, and examples."

// summaryPromptTmpl asks for structured Markdown study notes over the full
// extracted text.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`You will be given academic text extracted from lecture slides, a book chapter, a handout, a case study, or an exercise set. Transform it into Markdown study notes that are concise, complete, and well-structured.

Formatting rules:
- Use # for the main title, ## for sections, ### for sub-sections.
- Bold key terms; use bullet and numbered lists for clarity.
- Keep explanations compact but do not omit key information.
- Include formulas, definitions, examples, and tables where appropriate.

For chapters and lectures use this structure: Title, Overview / Objectives, Key Concepts, Detailed Explanation, Examples, Summary / Takeaways. For case studies and exercises use Q&A form with all numeric steps shown. For topic comparisons use a Markdown table ending with a short practical summary.

Now format the following text into university notes:{{if .Title}}

Title: {{.Title}}{{end}}

{{.Text}}`))

const qaSystemPrompt = "You are a university professor creating exam-style questions. " +
	"Show all numeric steps, equations, and logic clearly; use tables for comparisons " +
	"or results, and include code snippets when a question requires code."

// qaPromptTmpl asks for exam-style question/answer pairs.
var qaPromptTmpl = template.Must(template.New("qa").Parse(`Generate {{.Questions}} conceptual questions and their detailed answers from the following lecture text:

{{.Text}}`))

// Summarize generates the summary notes artifact content from the
// aggregated extracted text.
func Summarize(ctx context.Context, backend Backend, cfg types.NotesConfig, text string) (string, error) {
	var buf bytes.Buffer
	err := summaryPromptTmpl.Execute(&buf, struct {
		Title string
		Text  string
	}{Title: cfg.Title, Text: text})
	if err != nil {
		return "", fmt.Errorf("rendering summary prompt: %w", err)
	}

	out, err := backend.Complete(ctx, summarySystemPrompt, buf.String())
	if err != nil {
		return "", fmt.Errorf("generating summary: %w", err)
	}
	return out, nil
}

// GenerateQA generates the Q&A artifact content from the aggregated
// extracted text. cfg.Questions bounds the number of pairs (default 10).
func GenerateQA(ctx context.Context, backend Backend, cfg types.NotesConfig, text string) (string, error) {
	questions := cfg.Questions
	if questions <= 0 {
		questions = 10
	}

	var buf bytes.Buffer
	err := qaPromptTmpl.Execute(&buf, struct {
		Questions int
		Text      string
	}{Questions: questions, Text: text})
	if err != nil {
		return "", fmt.Errorf("rendering Q&A prompt: %w", err)
	}

	out, err := backend.Complete(ctx, qaSystemPrompt, buf.String())
	if err != nil {
		return "", fmt.Errorf("generating Q&A: %w", err)
	}
	return out, nil
}
