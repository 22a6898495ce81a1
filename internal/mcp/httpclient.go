package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/healthlens/internal/ingest"
	"github.com/claude/healthlens/internal/store"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource and Ingester by calling the HealthLens
// REST API. Used for remote MCP mode where the binary runs locally (stdio)
// but runs are stored on the remote server.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time checks: HTTPClient satisfies DataSource and Ingester.
var (
	_ DataSource = (*HTTPClient)(nil)
	_ Ingester   = (*HTTPClient)(nil)
)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(req *http.Request, path string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, store.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ingest.ErrBadInput, errorMessage(body))
	default:
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	return c.do(req, path)
}

// errorMessage extracts the "error" field of a JSON error body.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return string(body)
}

func (c *HTTPClient) Latest(ctx context.Context) (*store.Run, error) {
	body, err := c.get(ctx, "/api/v1/analyses/latest", nil)
	if err != nil {
		return nil, err
	}
	var run store.Run
	if err := json.Unmarshal(body, &run); err != nil {
		return nil, fmt.Errorf("httpclient: decode run: %w", err)
	}
	return &run, nil
}

func (c *HTTPClient) Get(ctx context.Context, id uuid.UUID) (*store.Run, error) {
	body, err := c.get(ctx, "/api/v1/analyses/"+id.String(), nil)
	if err != nil {
		return nil, err
	}
	var run store.Run
	if err := json.Unmarshal(body, &run); err != nil {
		return nil, fmt.Errorf("httpclient: decode run: %w", err)
	}
	return &run, nil
}

func (c *HTTPClient) List(ctx context.Context, limit int) ([]store.RunSummary, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/api/v1/analyses", params)
	if err != nil {
		return nil, err
	}
	var runs []store.RunSummary
	if err := json.Unmarshal(body, &runs); err != nil {
		return nil, fmt.Errorf("httpclient: decode runs: %w", err)
	}
	return runs, nil
}

// Ingest uploads the CSV as multipart form field "file".
func (c *HTTPClient) Ingest(ctx context.Context, r io.Reader, filename string) (*ingest.Result, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("httpclient: copy CSV: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("httpclient: close multipart: %w", err)
	}

	const path = "/api/v1/upload/csv"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	body, err := c.do(req, path)
	if err != nil {
		return nil, err
	}
	var res ingest.Result
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("httpclient: decode upload result: %w", err)
	}
	return &res, nil
}
