// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render materializes document pages as raster images. PPTX sources
// are first converted to PDF with LibreOffice; pages are then rasterized
// with poppler's pdftoppm. Both tools run as subprocesses behind an executor
// seam so tests can fake them.
package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec. Stderr is
// captured and folded into the returned error.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

var defaultExec executor = &osExecutor{}
