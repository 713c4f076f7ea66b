package services

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ExtractedImage is one image file found in a source archive.
type ExtractedImage struct {
	Basename string
	Data     []byte
}

// ExtractedSource is one TeX file found in a source archive.
type ExtractedSource struct {
	Basename string
	Content  string
}

// ExtractResult holds everything worth keeping from one archive.
type ExtractResult struct {
	Images  []ExtractedImage
	Sources []ExtractedSource
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// mkWorkspace creates the ephemeral extraction directory. Declared as a
// var so tests can capture the path and verify cleanup.
var mkWorkspace = func() (string, error) {
	return os.MkdirTemp("", "arxiv-src-")
}

// ExtractSources unpacks a tar.gz source archive into an ephemeral
// workspace, classifies its files into images and TeX sources, and removes
// the workspace again on every exit path. The workspace is exclusively
// owned by this call; concurrent extractions never share one.
func ExtractSources(archive []byte, logger *zap.Logger) (*ExtractResult, error) {
	workspace, err := mkWorkspace()
	if err != nil {
		return nil, fmt.Errorf("%w: creating workspace: %v", ErrExtractionFailed, err)
	}
	defer removeWorkspace(workspace, logger)

	if err := unpackTarGz(archive, workspace); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	result, err := collectFromWorkspace(workspace)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return result, nil
}

// unpackTarGz extracts an in-memory tar.gz archive into dir. Entries that
// would escape the workspace are skipped.
func unpackTarGz(archive []byte, dir string) error {
	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		target := filepath.Join(dir, filepath.Clean(header.Name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			continue
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.Create(target)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			out.Close()
		}
	}
	return nil
}

// collectFromWorkspace walks the workspace recursively and reads back every
// image and .tex file it finds.
func collectFromWorkspace(dir string) (*ExtractResult, error) {
	result := &ExtractResult{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := strings.ToLower(filepath.Ext(path))
		switch {
		case imageExtensions[ext]:
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			result.Images = append(result.Images, ExtractedImage{
				Basename: filepath.Base(path),
				Data:     data,
			})
		case ext == ".tex":
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			result.Sources = append(result.Sources, ExtractedSource{
				Basename: filepath.Base(path),
				Content:  string(data),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// removeWorkspace deletes the workspace unconditionally: files first, then
// directories deepest-first, then the root. Avoids cross-device surprises
// a blanket rename could run into.
func removeWorkspace(dir string, logger *zap.Logger) {
	var files, dirs []string
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir {
				dirs = append(dirs, path)
			}
		} else {
			files = append(files, path)
		}
		return nil
	})

	for _, f := range files {
		if err := os.Remove(f); err != nil {
			logger.Warn("Failed to remove workspace file", zap.String("path", f), zap.Error(err))
		}
	}

	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, d := range dirs {
		if err := os.Remove(d); err != nil {
			logger.Warn("Failed to remove workspace directory", zap.String("path", d), zap.Error(err))
		}
	}

	if err := os.Remove(dir); err != nil {
		logger.Warn("Failed to remove workspace root", zap.String("path", dir), zap.Error(err))
	}
}
