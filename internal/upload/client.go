package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ErrRejected is returned when the server refuses an export as invalid.
// Rejected uploads are not retried.
var ErrRejected = errors.New("upload rejected")

// Result mirrors the server's CSV upload response without importing the
// ingest package (which would pull in SQLite and the analysis pipeline).
type Result struct {
	Status          string             `json:"status"`
	Message         string             `json:"message"`
	DataID          string             `json:"data_id"`
	RecordsAnalyzed int                `json:"records_processed"`
	RecordsDropped  int                `json:"records_dropped"`
	HealthScore     float64            `json:"health_score"`
	Summary         map[string]float64 `json:"summary"`
	Fallback        bool               `json:"fallback"`
}

// Client sends CSV exports to the HealthLens server over HTTP.
type Client struct {
	serverURL  string
	httpClient *http.Client
	backoff    func(attempt int) time.Duration
}

// NewClient creates a new HTTP client for the HealthLens server.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt-1)) * time.Second
		},
	}
}

// Health checks that the server is reachable and reports its version.
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/health", nil)
	if err != nil {
		return "", fmt.Errorf("creating health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("checking health: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("health check failed (status %d): %s", resp.StatusCode, body)
	}
	var h struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return "", fmt.Errorf("decoding health: %w", err)
	}
	return h.Version, nil
}

// SendCSV POSTs a CSV export as multipart field "file".
// Retries up to 3 times with exponential backoff on transport and server errors.
func (c *Client) SendCSV(ctx context.Context, name string, data []byte) (*Result, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("writing form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}
	body := buf.Bytes()

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/upload/csv", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var res Result
			if err := json.Unmarshal(respBody, &res); err != nil {
				return nil, fmt.Errorf("decoding upload result: %w", err)
			}
			return &res, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, fmt.Errorf("%w (status %d): %s", ErrRejected, resp.StatusCode, bytes.TrimSpace(respBody))
		}
		lastErr = fmt.Errorf("upload failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(respBody))
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}
