package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/oskargil/crashatlas/internal/core/domain"
)

// Client implements ports.DatasetSource against the upstream JSON endpoint:
// a single GET returning the full crash array, no pagination, no schema
// versioning.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a dataset client for the given endpoint URL.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchRecords downloads and decodes the full dataset in upstream order.
func (c *Client) FetchRecords(ctx context.Context) ([]domain.CrashRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("dataset endpoint: status %d: %s", resp.StatusCode, body)
	}

	var records []domain.CrashRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	c.logger.Info("dataset fetched", "url", c.url, "records", len(records))
	return records, nil
}
