// Package storage resolves screenshot references to bytes and persists diff
// artifacts. References are URLs; the scheme selects the backend (file://,
// http://, https://, gs://).
package storage

import (
	"context"
	"fmt"
	"net/url"

	"github.com/snapdiff/snapdiff/internal/pkg/errors"
)

// Fetcher retrieves screenshot bytes by reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// ArtifactStore persists a diff artifact and returns the reference under
// which it can be fetched again.
type ArtifactStore interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// SchemeFetcher dispatches to a backend fetcher by reference scheme.
type SchemeFetcher struct {
	backends map[string]Fetcher
}

// NewSchemeFetcher builds a dispatcher over the given scheme -> backend map.
func NewSchemeFetcher(backends map[string]Fetcher) *SchemeFetcher {
	return &SchemeFetcher{backends: backends}
}

// Fetch resolves the reference's scheme and delegates to its backend.
func (f *SchemeFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, errors.FetchFailure(ref, err)
	}

	backend, ok := f.backends[u.Scheme]
	if !ok {
		return nil, errors.FetchFailure(ref, fmt.Errorf("unsupported reference scheme %q", u.Scheme))
	}

	return backend.Fetch(ctx, ref)
}
