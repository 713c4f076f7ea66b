package services

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// buildTarGz assembles an in-memory tar.gz archive from name -> content.
func buildTarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// captureWorkspace redirects workspace creation so the test can observe the
// directory after ExtractSources returns.
func captureWorkspace(t *testing.T) *string {
	t.Helper()
	orig := mkWorkspace
	t.Cleanup(func() { mkWorkspace = orig })

	var captured string
	mkWorkspace = func() (string, error) {
		dir, err := os.MkdirTemp("", "arxiv-src-test-")
		captured = dir
		return dir, err
	}
	return &captured
}

func TestExtractSources(t *testing.T) {
	workspace := captureWorkspace(t)

	archive := buildTarGz(t, map[string]string{
		"main.tex":            `\documentclass{article}`,
		"sections/intro.tex":  `\section{Introduction}`,
		"figures/arch.png":    "png-bytes",
		"figures/results.jpg": "jpg-bytes",
		"logo.GIF":            "gif-bytes",
		"main.bbl":            "bibliography",
		"Makefile":            "all:",
	})

	result, err := ExtractSources(archive, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, result.Images, 3)
	require.Len(t, result.Sources, 2)

	images := map[string]string{}
	for _, img := range result.Images {
		images[img.Basename] = string(img.Data)
	}
	assert.Equal(t, "png-bytes", images["arch.png"])
	assert.Equal(t, "jpg-bytes", images["results.jpg"])
	assert.Equal(t, "gif-bytes", images["logo.GIF"])

	sources := map[string]string{}
	for _, src := range result.Sources {
		sources[src.Basename] = src.Content
	}
	assert.Equal(t, `\documentclass{article}`, sources["main.tex"])
	assert.Equal(t, `\section{Introduction}`, sources["intro.tex"])

	require.NotEmpty(t, *workspace)
	_, statErr := os.Stat(*workspace)
	assert.True(t, os.IsNotExist(statErr), "workspace should be removed after extraction")
}

func TestExtractSourcesCorruptArchive(t *testing.T) {
	workspace := captureWorkspace(t)

	_, err := ExtractSources([]byte("definitely not gzip"), zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtractionFailed)

	require.NotEmpty(t, *workspace)
	_, statErr := os.Stat(*workspace)
	assert.True(t, os.IsNotExist(statErr), "workspace should be removed on failure too")
}

func TestExtractSourcesEmptyArchive(t *testing.T) {
	archive := buildTarGz(t, map[string]string{"README": "no tex, no figures"})

	result, err := ExtractSources(archive, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, result.Images)
	assert.Empty(t, result.Sources)
}

func TestExtractSourcesSkipsEscapingEntries(t *testing.T) {
	archive := buildTarGz(t, map[string]string{
		"../escape.tex": "outside",
		"inside.tex":    "inside",
	})

	result, err := ExtractSources(archive, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "inside.tex", result.Sources[0].Basename)
}
