package templates

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/replog/internal/models"
)

// DefaultSheetsURL is the Google Sheets values API root.
const DefaultSheetsURL = "https://sheets.googleapis.com/v4/spreadsheets"

// SheetsClient loads templates from a spreadsheet range through the Google
// Sheets values API.
type SheetsClient struct {
	baseURL       string
	apiKey        string
	spreadsheetID string
	sheetName     string
	httpClient    *http.Client
}

var (
	_ Loader = (*SheetsClient)(nil)
	_ Loader = (*CSVClient)(nil)
)

// NewSheetsClient creates a SheetsClient. An empty baseURL selects
// DefaultSheetsURL.
func NewSheetsClient(baseURL, apiKey, spreadsheetID, sheetName string) *SheetsClient {
	if baseURL == "" {
		baseURL = DefaultSheetsURL
	}
	return &SheetsClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

type valuesResponse struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

// Load fetches the sheet and decodes its rows.
func (c *SheetsClient) Load(ctx context.Context) ([]models.WorkoutTemplate, error) {
	if c.apiKey == "" || c.spreadsheetID == "" {
		return nil, fmt.Errorf("sheets: api key and spreadsheet id are required")
	}
	u := fmt.Sprintf("%s/%s/values/%s", c.baseURL,
		url.PathEscape(c.spreadsheetID), url.PathEscape(c.sheetName))
	params := url.Values{"key": {c.apiKey}}

	body, err := get(ctx, c.httpClient, u+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("sheets: %w", err)
	}

	var resp valuesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("sheets: decode values: %w", err)
	}
	return FromRows(resp.Values)
}

// CSVClient loads templates from a published CSV export.
type CSVClient struct {
	url        string
	httpClient *http.Client
}

// NewCSVClient creates a CSVClient for the given export URL.
func NewCSVClient(u string) *CSVClient {
	return &CSVClient{url: u, httpClient: &http.Client{Timeout: 15 * time.Second}}
}

// Load fetches and parses the CSV.
func (c *CSVClient) Load(ctx context.Context) ([]models.WorkoutTemplate, error) {
	body, err := get(ctx, c.httpClient, c.url)
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}

	r := csv.NewReader(strings.NewReader(string(body)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse: %w", err)
	}
	return FromRows(rows)
}

func get(ctx context.Context, client *http.Client, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("returned %d: %s", resp.StatusCode, body)
	}
	return body, nil
}
