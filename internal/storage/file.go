package storage

import (
	"context"
	"net/url"
	"os"
	"path/filepath"

	"github.com/snapdiff/snapdiff/internal/pkg/errors"
)

// FileFetcher reads file:// references from local disk.
type FileFetcher struct{}

func NewFileFetcher() *FileFetcher {
	return &FileFetcher{}
}

func (f *FileFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, errors.FetchFailure(ref, err)
	}

	path := u.Path
	if u.Host != "" {
		// file://relative/path parses the first segment as host.
		path = filepath.Join(u.Host, u.Path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.FetchFailure(ref, err)
	}

	return data, nil
}

// FileArtifactStore writes diff artifacts under a local directory and hands
// back file:// references.
type FileArtifactStore struct {
	dir string
}

func NewFileArtifactStore(dir string) *FileArtifactStore {
	return &FileArtifactStore{dir: dir}
}

func (s *FileArtifactStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	path := filepath.Join(s.dir, name)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Internal("failed to create artifact directory", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Internal("failed to write artifact", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + abs, nil
}
