package connectors

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/worldtransit-data/internal/common/config"
	"github.com/worldtransit-data/internal/common/logger"
)

// Downloader retrieves raw feed archive bytes.
type Downloader interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPDownloader fetches with a bounded number of retries and a fixed
// backoff between attempts. Feed mirrors are flaky; a failed mirror is the
// caller's problem to skip, not a process failure.
type HTTPDownloader struct {
	client  *http.Client
	retries int
	backoff time.Duration
	logger  logger.Logger
}

func NewHTTPDownloader(cfg config.DownloadConfig, log logger.Logger) *HTTPDownloader {
	return &HTTPDownloader{
		client: &http.Client{
			Timeout: cfg.Timeout, // large national feeds take a while
		},
		retries: cfg.Retries,
		backoff: cfg.Backoff,
		logger:  log,
	}
}

func (d *HTTPDownloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= d.retries; attempt++ {
		body, err := d.fetchOnce(ctx, url)
		if err == nil {
			d.logger.Info("Download completed",
				"url", url,
				"size_bytes", len(body),
				"attempt", attempt)
			return body, nil
		}

		lastErr = err
		d.logger.Warn("Download attempt failed",
			"url", url,
			"attempt", attempt,
			"error", err)

		if attempt < d.retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(d.backoff):
			}
		}
	}

	return nil, fmt.Errorf("download failed for %s after %d attempts: %w", url, d.retries, lastErr)
}

func (d *HTTPDownloader) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return body, nil
}
