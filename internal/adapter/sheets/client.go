package sheets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// StatusError reports a non-200 response from the export endpoint. Google
// answers 400/404 for unknown documents and 403 for private ones, so the
// upstream status is preserved for the caller's error message.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch sheet CSV: status %d", e.StatusCode)
}

// Client fetches CSV exports over HTTP. It implements pipeline.SheetFetcher.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a sheets client with the given fetch timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchCSV resolves a share link to its export URL and fetches the raw CSV
// text. One outbound request per call, no retry: a failure surfaces
// immediately rather than masking a bad link or a flaky export.
func (c *Client) FetchCSV(ctx context.Context, shareURL string) (string, error) {
	exportURL, err := ResolveExportURL(shareURL)
	if err != nil {
		return "", err
	}
	return c.Fetch(ctx, exportURL)
}

// Fetch retrieves raw CSV text from an already-resolved export URL.
func (c *Client) Fetch(ctx context.Context, exportURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch sheet CSV: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read sheet CSV: %w", err)
	}

	c.logger.Debug("sheet CSV fetched",
		"bytes", len(body),
		"duration", time.Since(start),
	)
	return string(body), nil
}
