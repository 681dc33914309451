package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/Manish3451/Book-Recommendation-System/internal/logging"
)

// FetcherConfig configures remote artifact downloads.
type FetcherConfig struct {
	URL          string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// Fetcher downloads an artifact over HTTP into the local path.
type Fetcher struct {
	url    string
	client *retryablehttp.Client
}

// NewFetcher creates a retrying fetcher for cfg.URL.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RetryMax == 0 {
		cfg.RetryMax = 3
	}
	if cfg.RetryWaitMax == 0 {
		cfg.RetryWaitMax = 5 * time.Second
	}

	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = cfg.Timeout
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMax = cfg.RetryWaitMax
	if cfg.RetryWaitMin > 0 {
		client.RetryWaitMin = cfg.RetryWaitMin
	}
	client.CheckRetry = dontRetry500StatusPolicy(retryablehttp.ErrorPropagatedRetryPolicy)
	client.Logger = logging.LeveledLogger{Component: "artifact-fetch"}

	return &Fetcher{url: cfg.URL, client: client}
}

// URL returns the remote location.
func (f *Fetcher) URL() string { return f.url }

// Fetch downloads the artifact, verifies it decodes and moves it into dest.
// A download that does not decode never replaces dest.
func (f *Fetcher) Fetch(ctx context.Context, dest string) (*Artifact, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch artifact: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch artifact from %s: %w", f.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch artifact from %s: unexpected status %s", f.url, resp.Status)
	}

	var a *Artifact
	err = writeAtomic(dest, func(tmp *os.File) error {
		if _, err := io.Copy(tmp, resp.Body); err != nil {
			return fmt.Errorf("download artifact: %w", err)
		}
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			return err
		}
		var derr error
		a, derr = Decode(tmp)
		return derr
	})
	if err != nil {
		return nil, err
	}
	logging.Info().Str("url", f.url).Str("path", dest).Int("rows", a.Rows()).Msg("artifact fetched")
	return a, nil
}

// dontRetry500StatusPolicy prevents retries on HTTP 500 Internal Server Error responses.
func dontRetry500StatusPolicy(policy retryablehttp.CheckRetry) retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if resp != nil && resp.StatusCode == http.StatusInternalServerError {
			return false, err
		}
		return policy(ctx, resp, err)
	}
}
