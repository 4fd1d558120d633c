package metabase

import (
	"context"
	"testing"

	reports "github.com/goliatone/go-excel-reports/components/reports"
)

func TestMockClientReturnsFixtures(t *testing.T) {
	client := fixtureClient()
	result, err := client.ExecuteQuestion(context.Background(), "42", nil)
	if err != nil {
		t.Fatalf("ExecuteQuestion returned error: %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0][0] != "north" {
		t.Fatalf("unexpected result: %#v", result)
	}
	if _, err := client.ExecuteQuestion(context.Background(), "404", nil); err == nil {
		t.Fatal("expected error for unknown question")
	}
}

func TestMockClientClonesResults(t *testing.T) {
	client := fixtureClient()
	first, _ := client.ExecuteQuestion(context.Background(), "42", nil)
	first.Rows[0][0] = "mutated"
	second, _ := client.ExecuteQuestion(context.Background(), "42", nil)
	if second.Rows[0][0] != "north" {
		t.Fatal("callers must not share fixture backing arrays")
	}
}

func TestMockClientSetQuestion(t *testing.T) {
	client := fixtureClient()
	client.SetQuestion("7", reports.QueryResult{Columns: []string{"Total"}, Rows: [][]any{{99}}})
	result, err := client.ExecuteQuestion(context.Background(), "7", nil)
	if err != nil {
		t.Fatalf("ExecuteQuestion returned error: %v", err)
	}
	if result.Columns[0] != "Total" {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestMockClientCatalog(t *testing.T) {
	client := fixtureClient()
	questions, err := client.ListQuestions(context.Background())
	if err != nil || len(questions) != 1 {
		t.Fatalf("ListQuestions = %#v, %v", questions, err)
	}
	question, err := client.GetQuestion(context.Background(), "42")
	if err != nil || question.Name != "Sales by Region" {
		t.Fatalf("GetQuestion = %#v, %v", question, err)
	}
	if _, err := client.GetQuestion(context.Background(), "404"); err == nil {
		t.Fatal("expected error for unknown question")
	}
}
