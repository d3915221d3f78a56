package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/snapdiff/snapdiff/internal/pkg/errors"
)

// NewGCSClient creates a Cloud Storage client, optionally with inline
// service-account credentials.
func NewGCSClient(ctx context.Context, credentialsJSON string) (*gcs.Client, error) {
	var opts []option.ClientOption
	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	return gcs.NewClient(ctx, opts...)
}

// GCSFetcher reads gs://bucket/object references.
type GCSFetcher struct {
	client *gcs.Client
}

func NewGCSFetcher(client *gcs.Client) *GCSFetcher {
	return &GCSFetcher{client: client}
}

func (f *GCSFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	bucket, object, err := parseGSRef(ref)
	if err != nil {
		return nil, errors.FetchFailure(ref, err)
	}

	reader, err := f.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, errors.FetchFailure(ref, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.FetchFailure(ref, err)
	}

	return data, nil
}

// GCSArtifactStore writes diff artifacts to a bucket and hands back gs://
// references.
type GCSArtifactStore struct {
	client *gcs.Client
	bucket string
}

func NewGCSArtifactStore(client *gcs.Client, bucket string) *GCSArtifactStore {
	return &GCSArtifactStore{client: client, bucket: bucket}
}

func (s *GCSArtifactStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "image/png"

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", errors.Internal("failed to write artifact to gcs", err)
	}
	if err := w.Close(); err != nil {
		return "", errors.Internal("failed to finalize gcs artifact", err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, name), nil
}

func parseGSRef(ref string) (bucket, object string, err error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "gs" || u.Host == "" {
		return "", "", fmt.Errorf("invalid gs reference %q", ref)
	}

	object = strings.TrimPrefix(u.Path, "/")
	if object == "" {
		return "", "", fmt.Errorf("gs reference %q has no object path", ref)
	}

	return u.Host, object, nil
}
