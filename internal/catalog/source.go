package catalog

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrAssetUnavailable is returned by sources whose asset cannot be read.
var ErrAssetUnavailable = errors.New("alias asset unavailable")

// Source supplies alias asset records.
type Source interface {
	Name() string
	Records(ctx context.Context) ([]Record, []Warning, error)
}

//go:embed assets/port_aliases.txt
var assets embed.FS

const defaultAssetPath = "assets/port_aliases.txt"

// embeddedSource reads the asset compiled into the binary.
type embeddedSource struct{}

// DefaultSource returns the asset shipped with the binary.
func DefaultSource() Source {
	return embeddedSource{}
}

func (embeddedSource) Name() string { return "embedded:" + defaultAssetPath }

func (embeddedSource) Records(ctx context.Context) ([]Record, []Warning, error) {
	data, err := assets.ReadFile(defaultAssetPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}
	return ParseAsset(bytes.NewReader(data))
}

// FileSource reads the asset from a file on disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Records(ctx context.Context) ([]Record, []Warning, error) {
	f, err := os.Open(filepath.Clean(s.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}
	defer f.Close()
	return ParseAsset(f)
}

// ReaderSource parses an asset from an in-memory reader. It can be read once.
type ReaderSource struct {
	Label  string
	Reader io.Reader
}

func (s ReaderSource) Name() string { return "reader:" + s.Label }

func (s ReaderSource) Records(ctx context.Context) ([]Record, []Warning, error) {
	if s.Reader == nil {
		return nil, nil, ErrAssetUnavailable
	}
	return ParseAsset(s.Reader)
}
