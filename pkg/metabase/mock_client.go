package metabase

import (
	"context"
	"fmt"
	"sync"

	reports "github.com/goliatone/go-excel-reports/components/reports"
)

// MockData seeds deterministic query responses for tests or local demos.
type MockData struct {
	Questions map[string]reports.QueryResult
	Dataset   reports.QueryResult
	Catalog   []Question
}

// MockClient implements Client using in-memory fixtures.
type MockClient struct {
	data MockData
	mu   sync.RWMutex
}

// NewMockClient builds a mock Metabase client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	if data.Questions == nil {
		data.Questions = map[string]reports.QueryResult{}
	}
	return &MockClient{data: data}
}

var _ Client = (*MockClient)(nil)

// ExecuteQuestion returns the fixture registered for the question id.
func (c *MockClient) ExecuteQuestion(_ context.Context, questionID string, _ map[string]any) (reports.QueryResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.data.Questions[questionID]
	if !ok {
		return reports.QueryResult{}, fmt.Errorf("metabase: question %s not found", questionID)
	}
	return cloneResult(result), nil
}

// ExecuteDataset returns the shared dataset fixture ignoring the payload.
func (c *MockClient) ExecuteDataset(context.Context, map[string]any) (reports.QueryResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneResult(c.data.Dataset), nil
}

// ListQuestions returns the configured catalog.
func (c *MockClient) ListQuestions(context.Context) ([]Question, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Question(nil), c.data.Catalog...), nil
}

// GetQuestion fetches catalog metadata by id.
func (c *MockClient) GetQuestion(_ context.Context, questionID string) (Question, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, q := range c.data.Catalog {
		if q.ID == questionID {
			return q, nil
		}
	}
	return Question{}, fmt.Errorf("metabase: question %s not found", questionID)
}

// SetQuestion registers or replaces a question fixture.
func (c *MockClient) SetQuestion(questionID string, result reports.QueryResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Questions[questionID] = cloneResult(result)
}

func cloneResult(result reports.QueryResult) reports.QueryResult {
	out := reports.QueryResult{
		Columns: append([]string(nil), result.Columns...),
		Rows:    make([][]any, len(result.Rows)),
	}
	for i, row := range result.Rows {
		out.Rows[i] = append([]any(nil), row...)
	}
	return out
}
