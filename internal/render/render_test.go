// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lecture-engine/pkg/types"
)

// fakeExecutor records invocations and simulates tool behavior. When
// touchOutput is set, a Run call creates the file the renderer or converter
// expects to find afterwards.
type fakeExecutor struct {
	available   map[string]bool
	runErr      error
	touchOutput bool
	calls       [][]string
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if f.available[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found")
}

func (f *fakeExecutor) Run(_ context.Context, name string, args ...string) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.runErr != nil {
		return f.runErr
	}
	if !f.touchOutput {
		return nil
	}
	switch name {
	case binPdftoppm:
		// Last arg is the output prefix; pdftoppm appends ".png".
		prefix := args[len(args)-1]
		return os.WriteFile(prefix+".png", []byte("png"), 0o644)
	case binLibreOffice, binSoffice:
		// args: --headless --convert-to pdf --outdir <dir> <doc>
		outDir := args[4]
		doc := args[5]
		base := strings.TrimSuffix(filepath.Base(doc), filepath.Ext(doc))
		return os.WriteFile(filepath.Join(outDir, base+".pdf"), []byte("pdf"), 0o644)
	}
	return nil
}

func TestDetectOffice(t *testing.T) {
	tests := []struct {
		name      string
		available map[string]bool
		wantBin   string
		wantErr   bool
	}{
		{"libreoffice preferred", map[string]bool{binLibreOffice: true, binSoffice: true}, binLibreOffice, false},
		{"soffice fallback", map[string]bool{binSoffice: true}, binSoffice, false},
		{"neither available", map[string]bool{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv, err := detectOffice(&fakeExecutor{available: tt.available})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBin, conv.Name())
		})
	}
}

func TestOfficeConvert(t *testing.T) {
	exec := &fakeExecutor{available: map[string]bool{binLibreOffice: true}, touchOutput: true}
	conv, err := detectOffice(exec)
	require.NoError(t, err)

	outDir := t.TempDir()
	pdfPath, err := conv.Convert(context.Background(), "/docs/lecture7.pptx", outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "lecture7.pdf"), pdfPath)

	require.Len(t, exec.calls, 1)
	assert.Equal(t, []string{binLibreOffice, "--headless", "--convert-to", "pdf",
		"--outdir", outDir, "/docs/lecture7.pptx"}, exec.calls[0])
}

func TestOfficeConvertMissingOutput(t *testing.T) {
	// The binary exits zero but never writes the PDF.
	exec := &fakeExecutor{available: map[string]bool{binSoffice: true}}
	conv, err := detectOffice(exec)
	require.NoError(t, err)

	_, err = conv.Convert(context.Background(), "slides.pptx", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestDetectRendererNotInstalled(t *testing.T) {
	_, err := detectRenderer(300, &fakeExecutor{available: map[string]bool{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poppler")
}

func TestRenderPage(t *testing.T) {
	exec := &fakeExecutor{available: map[string]bool{binPdftoppm: true}, touchOutput: true}
	r, err := detectRenderer(150, exec)
	require.NoError(t, err)

	outDir := t.TempDir()
	img, err := r.RenderPage(context.Background(), "doc.pdf", 7, outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "page_0007.png"), img)

	require.Len(t, exec.calls, 1)
	assert.Equal(t, []string{binPdftoppm, "-png", "-r", "150", "-f", "7", "-l", "7",
		"-singlefile", "doc.pdf", filepath.Join(outDir, "page_0007")}, exec.calls[0])
}

func TestRenderPageFailure(t *testing.T) {
	exec := &fakeExecutor{
		available: map[string]bool{binPdftoppm: true},
		runErr:    fmt.Errorf("exit status 1: corrupt page"),
	}
	r, err := detectRenderer(0, exec)
	require.NoError(t, err)
	assert.Equal(t, defaultDPI, r.DPI())

	_, err = r.RenderPage(context.Background(), "doc.pdf", 3, t.TempDir())
	require.Error(t, err)

	var renderErr *types.RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, 3, renderErr.Page)
}

func TestRenderPagesFailFast(t *testing.T) {
	// Fails on every invocation: RenderPages must stop after the first page.
	exec := &fakeExecutor{
		available: map[string]bool{binPdftoppm: true},
		runErr:    errors.New("boom"),
	}
	r, err := detectRenderer(300, exec)
	require.NoError(t, err)

	_, err = r.RenderPages(context.Background(), "doc.pdf", []int{2, 4, 6}, t.TempDir())
	require.Error(t, err)
	assert.Len(t, exec.calls, 1)
}

func TestRenderPagesOrderAndCoverage(t *testing.T) {
	exec := &fakeExecutor{available: map[string]bool{binPdftoppm: true}, touchOutput: true}
	r, err := detectRenderer(300, exec)
	require.NoError(t, err)

	pages := []int{1, 5, 9}
	images, err := r.RenderPages(context.Background(), "doc.pdf", pages, t.TempDir())
	require.NoError(t, err)
	require.Len(t, images, len(pages))
	for _, p := range pages {
		assert.FileExists(t, images[p])
	}
}

func TestPageCountRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-pdf.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := PageCount(path)
	require.Error(t, err)

	var inputErr *types.InputError
	assert.True(t, errors.As(err, &inputErr))
}
