// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// ocrSystemPrompt fixes the model's role for verbatim extraction.
const ocrSystemPrompt = "You are an OCR model. Extract all text exactly as seen, " +
	"preserving layout, equations, and formatting. " +
	"Do not add any '$' around equations."

// ocrPromptTmpl is the user prompt sent with each batch of page images.
//
// It instructs the model to precede every page's transcription with a marker
// line of the form "<!-- page N -->"; parsePageMarker reads the exact same
// form, so the template and the parser must change together. When a response
// does not honor the markers the whole response is kept as one multi-page
// fragment; a batch size of 1 never needs splitting.
var ocrPromptTmpl = template.Must(template.New("ocr").Parse(`Extract all text from these {{.Count}} lecture page image(s). The images are pages {{.Pages}} of the document, attached in that order.

Before the text of each page, output a marker line of exactly this form, alone on its line:

<!-- page N -->

where N is the page number of the image, taken from this list: {{.Pages}}. Output one marker per page, in order, and nothing else besides the markers and the transcribed text.`))

// renderOCRPrompt fills the OCR prompt for one batch of page indices.
func renderOCRPrompt(batch []int) (string, error) {
	labels := make([]string, len(batch))
	for i, p := range batch {
		labels[i] = fmt.Sprint(p)
	}

	var buf bytes.Buffer
	err := ocrPromptTmpl.Execute(&buf, struct {
		Count int
		Pages string
	}{
		Count: len(batch),
		Pages: strings.Join(labels, ", "),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// parsePageMarker extracts the page number from a marker line like
// "<!-- page 3 -->".
func parsePageMarker(line string) (int, bool) {
	if !strings.HasPrefix(line, "<!-- page ") || !strings.HasSuffix(line, " -->") {
		return 0, false
	}
	inner := strings.TrimPrefix(line, "<!-- page ")
	inner = strings.TrimSuffix(inner, " -->")
	var page int
	if _, err := fmt.Sscanf(inner, "%d", &page); err != nil {
		return 0, false
	}
	return page, true
}
