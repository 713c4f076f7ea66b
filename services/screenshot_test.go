package services

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRendererBin installs a shell script standing in for pdftoppm. It
// writes fixed bytes to the expected <outBase>.png path.
func fakeRendererBin(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "pdftoppm")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"+script), 0o755))

	orig := pdftoppmBin
	pdftoppmBin = bin
	t.Cleanup(func() { pdftoppmBin = orig })
}

func TestRender(t *testing.T) {
	// Last argument is the output base; the real binary appends ".png".
	fakeRendererBin(t, `
for last; do :; done
printf 'png-raster' > "$last.png"
`)

	s := NewScreenshotter(zap.NewNop())
	img, err := s.Render(context.Background(), []byte("%PDF-1.5 fake"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-raster"), img)
}

func TestRenderBinaryFailure(t *testing.T) {
	fakeRendererBin(t, "exit 1\n")

	s := NewScreenshotter(zap.NewNop())
	_, err := s.Render(context.Background(), []byte("%PDF-1.5 fake"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRenderFailed)
}

func TestRenderMissingBinary(t *testing.T) {
	orig := pdftoppmBin
	pdftoppmBin = "/nonexistent/pdftoppm"
	t.Cleanup(func() { pdftoppmBin = orig })

	s := NewScreenshotter(zap.NewNop())
	_, err := s.Render(context.Background(), []byte("%PDF-1.5 fake"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRenderFailed)
}

func TestRenderMissingOutput(t *testing.T) {
	fakeRendererBin(t, "exit 0\n")

	s := NewScreenshotter(zap.NewNop())
	_, err := s.Render(context.Background(), []byte("%PDF-1.5 fake"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRenderFailed)
}
