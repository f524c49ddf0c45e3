// Package objectstore persists uploaded attachments (candidacy documents,
// college logos) and hands back the public URL recorded in the datastore.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/campusvote/halalan/internal/domain"
)

// Local writes objects under a base directory served by a static file
// host. The base URL is what callers store as the object's public URL.
type Local struct {
	baseDir string
	baseURL string
}

func NewLocal(baseDir, baseURL string) (*Local, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("objectstore: base dir required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("objectstore: create base dir: %w", err)
	}
	return &Local{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *Local) Upload(ctx context.Context, path string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := filepath.Clean("/" + path)
	if clean == "/" {
		return "", fmt.Errorf("objectstore: empty object path")
	}
	target := filepath.Join(s.baseDir, clean)

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("objectstore: create dir: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("objectstore: create object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("objectstore: write object: %w", err)
	}

	return s.baseURL + filepath.ToSlash(clean), nil
}

var _ domain.ObjectStore = (*Local)(nil)
