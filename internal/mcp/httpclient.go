package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/replog/internal/models"
	"github.com/claude/replog/internal/storage"
	"github.com/google/uuid"
)

// HTTPClient implements HistorySource by calling the replog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// history lives on the remote server (accessed over Tailscale). The server
// decides whose history is returned, so userID arguments are ignored.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies HistorySource.
var _ HistorySource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) QueryHistory(ctx context.Context, _ int, limit int) ([]models.LoggedWorkoutRow, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	body, err := c.get(ctx, "/api/v1/history", params)
	if err != nil {
		return nil, err
	}
	var rows []models.LoggedWorkoutRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode history: %w", err)
	}
	return rows, nil
}

func (c *HTTPClient) GetLoggedWorkout(ctx context.Context, workoutID uuid.UUID, _ int) (*storage.LoggedWorkoutDetail, error) {
	body, err := c.get(ctx, "/api/v1/history/"+workoutID.String(), nil)
	if err != nil {
		return nil, err
	}
	var d storage.LoggedWorkoutDetail
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return &d, nil
}

func (c *HTTPClient) GetHistoryStats(ctx context.Context, _ int) (*storage.HistoryStats, error) {
	body, err := c.get(ctx, "/api/v1/history/stats", nil)
	if err != nil {
		return nil, err
	}
	var s storage.HistoryStats
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("httpclient: decode stats: %w", err)
	}
	return &s, nil
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

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, "/api/v1/history/") {
		return nil, storage.ErrWorkoutNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}
