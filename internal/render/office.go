// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	binLibreOffice = "libreoffice"
	binSoffice     = "soffice"
)

// OfficeConverter converts office documents (PPTX, PPT) to PDF by running
// LibreOffice headless. The conversion is whole-document and happens once
// per run, before any page extraction.
type OfficeConverter struct {
	bin  string
	exec executor
}

// DetectOffice locates a LibreOffice binary on PATH, trying "libreoffice"
// first and falling back to "soffice". It returns an error when neither is
// available.
func DetectOffice() (*OfficeConverter, error) {
	return detectOffice(defaultExec)
}

func detectOffice(exec executor) (*OfficeConverter, error) {
	for _, bin := range []string{binLibreOffice, binSoffice} {
		if _, err := exec.LookPath(bin); err == nil {
			return &OfficeConverter{bin: bin, exec: exec}, nil
		}
	}
	return nil, fmt.Errorf("no office converter available: neither %s nor %s found on PATH",
		binLibreOffice, binSoffice)
}

// Name returns the detected binary name.
func (c *OfficeConverter) Name() string { return c.bin }

// Convert renders the office document at docPath to a PDF inside outDir and
// returns the PDF path. LibreOffice names the output after the input file,
// so the result is outDir/<base>.pdf.
func (c *OfficeConverter) Convert(ctx context.Context, docPath, outDir string) (string, error) {
	args := []string{"--headless", "--convert-to", "pdf", "--outdir", outDir, docPath}
	if err := c.exec.Run(ctx, c.bin, args...); err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	pdfPath := filepath.Join(outDir, base+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("%s reported success but %s is missing: %w", c.bin, pdfPath, err)
	}
	return pdfPath, nil
}
