// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/pdiddy/lecture-engine/pkg/types"
)

const binPdftoppm = "pdftoppm"

// defaultDPI is the rasterization resolution used when none is configured.
const defaultDPI = 300

// PageCount returns the number of pages in the PDF at pdfPath.
func PageCount(pdfPath string) (int, error) {
	n, err := api.PageCountFile(pdfPath)
	if err != nil {
		return 0, &types.InputError{Msg: fmt.Sprintf("reading page count of %s", pdfPath), Err: err}
	}
	return n, nil
}

// Renderer rasterizes single PDF pages to PNG files via pdftoppm.
type Renderer struct {
	dpi  int
	exec executor
}

// DetectRenderer verifies pdftoppm is on PATH and returns a Renderer with
// the given DPI (0 selects the default of 300).
func DetectRenderer(dpi int) (*Renderer, error) {
	return detectRenderer(dpi, defaultExec)
}

func detectRenderer(dpi int, exec executor) (*Renderer, error) {
	if _, err := exec.LookPath(binPdftoppm); err != nil {
		return nil, fmt.Errorf("%s not found on PATH (install poppler-utils): %w", binPdftoppm, err)
	}
	if dpi <= 0 {
		dpi = defaultDPI
	}
	return &Renderer{dpi: dpi, exec: exec}, nil
}

// DPI returns the configured rasterization resolution.
func (r *Renderer) DPI() int { return r.dpi }

// RenderPage rasterizes one page of the PDF into outDir and returns the PNG
// path. Failure is wrapped as a RenderError; a single failed page is fatal
// to the run.
func (r *Renderer) RenderPage(ctx context.Context, pdfPath string, page int, outDir string) (string, error) {
	prefix := filepath.Join(outDir, fmt.Sprintf("page_%04d", page))
	args := []string{
		"-png",
		"-r", fmt.Sprint(r.dpi),
		"-f", fmt.Sprint(page),
		"-l", fmt.Sprint(page),
		"-singlefile",
		pdfPath,
		prefix,
	}
	if err := r.exec.Run(ctx, binPdftoppm, args...); err != nil {
		return "", &types.RenderError{Page: page, Err: err}
	}

	imgPath := prefix + ".png"
	if _, err := os.Stat(imgPath); err != nil {
		return "", &types.RenderError{Page: page, Err: fmt.Errorf("expected output %s missing: %w", imgPath, err)}
	}
	return imgPath, nil
}

// RenderPages rasterizes every page in pages (ascending) into outDir and
// returns a map from page index to image path. It fails fast on the first
// rendering error; partial documents are not produced.
func (r *Renderer) RenderPages(ctx context.Context, pdfPath string, pages []int, outDir string) (map[int]string, error) {
	images := make(map[int]string, len(pages))
	for _, p := range pages {
		img, err := r.RenderPage(ctx, pdfPath, p, outDir)
		if err != nil {
			return nil, err
		}
		images[p] = img
	}
	return images, nil
}
