package metabase

import (
	"context"

	reports "github.com/goliatone/go-excel-reports/components/reports"
)

// QuestionClient executes saved questions by id.
type QuestionClient interface {
	ExecuteQuestion(ctx context.Context, questionID string, parameters map[string]any) (reports.QueryResult, error)
}

// DatasetClient executes ad-hoc native or structured queries.
type DatasetClient interface {
	ExecuteDataset(ctx context.Context, query map[string]any) (reports.QueryResult, error)
}

// CatalogClient browses the saved questions available for mapping.
type CatalogClient interface {
	ListQuestions(ctx context.Context) ([]Question, error)
	GetQuestion(ctx context.Context, questionID string) (Question, error)
}

// Client is a convenience union for services that implement all calls.
type Client interface {
	QuestionClient
	DatasetClient
	CatalogClient
}

// Question is the catalog metadata for a saved question.
type Question struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Display     string `json:"display,omitempty"`
}
