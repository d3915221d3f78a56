package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/snapdiff/snapdiff/internal/pkg/errors"
)

// HTTPFetcher fetches http:// and https:// references. Transient failures
// (network errors and 5xx responses) are retried with exponential backoff;
// 4xx responses fail immediately.
type HTTPFetcher struct {
	client  *http.Client
	retries int
}

func NewHTTPFetcher(timeout time.Duration, retries int) *HTTPFetcher {
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		retries: retries,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, errors.FetchFailure(ref, ctx.Err())
			case <-time.After(backoff):
			}
		}

		data, retryable, err := f.fetchOnce(ctx, ref)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return nil, errors.FetchFailure(ref, lastErr)
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, ref string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return nil, true, fmt.Errorf("server returned %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	return data, false, nil
}
