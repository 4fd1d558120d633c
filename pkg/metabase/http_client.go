package metabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	reports "github.com/goliatone/go-excel-reports/components/reports"
)

// HTTPConfig configures the HTTP Metabase client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPClient talks to a Metabase instance via its REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient builds a client capable of hitting a live Metabase API.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("metabase: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

var _ Client = (*HTTPClient)(nil)

// ExecuteQuestion runs a saved question and returns its tabular result.
func (c *HTTPClient) ExecuteQuestion(ctx context.Context, questionID string, parameters map[string]any) (reports.QueryResult, error) {
	var payload any
	if len(parameters) > 0 {
		payload = map[string]any{"parameters": questionParameters(parameters)}
	}
	var resp datasetResponse
	if err := c.do(ctx, http.MethodPost, "/api/card/"+questionID+"/query", payload, &resp); err != nil {
		return reports.QueryResult{}, err
	}
	return resp.toResult(), nil
}

// ExecuteDataset runs an ad-hoc query payload (native SQL or structured).
func (c *HTTPClient) ExecuteDataset(ctx context.Context, query map[string]any) (reports.QueryResult, error) {
	var resp datasetResponse
	if err := c.do(ctx, http.MethodPost, "/api/dataset", query, &resp); err != nil {
		return reports.QueryResult{}, err
	}
	return resp.toResult(), nil
}

// ListQuestions returns the saved questions visible to the API key.
func (c *HTTPClient) ListQuestions(ctx context.Context) ([]Question, error) {
	var resp []questionResponse
	if err := c.do(ctx, http.MethodGet, "/api/card", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]Question, len(resp))
	for i, q := range resp {
		out[i] = q.toQuestion()
	}
	return out, nil
}

// GetQuestion fetches catalog metadata for one saved question.
func (c *HTTPClient) GetQuestion(ctx context.Context, questionID string) (Question, error) {
	var resp questionResponse
	if err := c.do(ctx, http.MethodGet, "/api/card/"+questionID, nil, &resp); err != nil {
		return Question{}, err
	}
	return resp.toQuestion(), nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("metabase: encode payload: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("metabase: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("metabase: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("metabase: remote error %d: %s", resp.StatusCode, buf.String())
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("metabase: decode response: %w", err)
	}
	return nil
}

// questionParameters converts a flat key/value map into the parameter list
// the card query endpoint expects.
func questionParameters(params map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(params))
	for key, value := range params {
		out = append(out, map[string]any{
			"type":   "category",
			"target": []any{"variable", []any{"template-tag", key}},
			"value":  value,
		})
	}
	return out
}

type datasetColumn struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
}

type datasetResponse struct {
	Data struct {
		Cols []datasetColumn `json:"cols"`
		Rows [][]any         `json:"rows"`
	} `json:"data"`
}

func (r datasetResponse) toResult() reports.QueryResult {
	columns := make([]string, len(r.Data.Cols))
	for i, col := range r.Data.Cols {
		if col.DisplayName != "" {
			columns[i] = col.DisplayName
		} else {
			columns[i] = col.Name
		}
	}
	rows := make([][]any, len(r.Data.Rows))
	for i, row := range r.Data.Rows {
		rows[i] = append([]any(nil), row...)
	}
	return reports.QueryResult{Columns: columns, Rows: rows}
}

type questionResponse struct {
	ID          json.Number `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Display     string      `json:"display"`
}

func (r questionResponse) toQuestion() Question {
	return Question{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		Display:     r.Display,
	}
}
