// Package fetch supplies helpers for getting data into the local workspace
// from sources other than the object store: HTTP downloads with an overwrite
// policy and progress reporting, and in-memory access to tar archive members.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	bserrors "github.com/perigee-io/bucketsync/errors"
	"github.com/perigee-io/bucketsync/progress"
)

type options struct {
	client *http.Client
	header http.Header
}

// Option adjusts how DownloadFile performs the request.
type Option func(*options)

// WithClient substitutes the HTTP client used for the download.
func WithClient(client *http.Client) Option {
	return func(o *options) { o.client = client }
}

// WithHeader adds a request header, for example an authorization token.
func WithHeader(key, value string) Option {
	return func(o *options) {
		if o.header == nil {
			o.header = http.Header{}
		}
		o.header.Add(key, value)
	}
}

// DownloadFile downloads url to destPath, creating parent directories as
// needed. An existing destination fails with errors.ErrTargetExists unless
// overwrite is set. Byte progress is reported through tracker; nil disables
// reporting. A partially written file is removed on failure.
func DownloadFile(
	ctx context.Context,
	url string,
	destPath string,
	overwrite bool,
	tracker progress.Tracker,
	opts ...Option,
) error {
	cfg := options{client: http.DefaultClient}
	for _, opt := range opts {
		opt(&cfg)
	}
	if tracker == nil {
		tracker = progress.NullTracker{}
	}

	if _, err := os.Stat(destPath); err == nil && !overwrite {
		return bserrors.NewError("download", bserrors.ErrTargetExists).WithPath(destPath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return bserrors.NewValidationError(fmt.Sprintf("invalid download url %q: %v", url, err))
	}
	for key, values := range cfg.header {
		req.Header[key] = values
	}

	resp, err := cfg.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("downloading %s: unexpected status %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return bserrors.NewError("download", err).WithPath(destPath)
	}
	out, err := os.Create(destPath)
	if err != nil {
		return bserrors.NewError("download", err).WithPath(destPath)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	if _, err := io.Copy(progress.NewWriter(out, tracker, total), resp.Body); err != nil {
		out.Close()
		os.Remove(destPath)
		tracker.Error(err)
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	if err := out.Close(); err != nil {
		return bserrors.NewError("download", err).WithPath(destPath)
	}
	tracker.Complete()
	return nil
}
