package services

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"
)

// pdftoppmBin is the external renderer binary. A var so tests can point it
// at a stub.
var pdftoppmBin = "pdftoppm"

// Screenshotter renders the first page of a PDF to a PNG by shelling out
// to pdftoppm. Rendering is optional: any failure degrades to no preview.
type Screenshotter struct {
	Logger *zap.Logger
}

// NewScreenshotter creates a new first-page renderer.
func NewScreenshotter(logger *zap.Logger) *Screenshotter {
	return &Screenshotter{Logger: logger}
}

// Render writes the PDF to a temporary path, renders page one and reads
// the raster back. Temporary files are always discarded.
func (s *Screenshotter) Render(ctx context.Context, pdf []byte) ([]byte, error) {
	tmp, err := os.MkdirTemp("", "arxiv-shot-")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	defer os.RemoveAll(tmp)

	pdfPath := filepath.Join(tmp, "page.pdf")
	if err := os.WriteFile(pdfPath, pdf, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	outBase := filepath.Join(tmp, "shot")
	cmd := exec.CommandContext(ctx, pdftoppmBin, "-png", "-f", "1", "-l", "1", "-singlefile", pdfPath, outBase)
	if out, err := cmd.CombinedOutput(); err != nil {
		s.Logger.Debug("Renderer failed", zap.Error(err), zap.ByteString("output", out))
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	img, err := os.ReadFile(outBase + ".png")
	if err != nil {
		return nil, fmt.Errorf("%w: reading raster: %v", ErrRenderFailed, err)
	}
	return img, nil
}
