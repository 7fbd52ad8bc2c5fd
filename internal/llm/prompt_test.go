package llm

import (
	"strings"
	"testing"
	"time"
)

func TestBuildGenerationPrompt(t *testing.T) {
	prompt := BuildGenerationPrompt("master", "**Suppliers table**:\n- SupplierID (int)\n")

	for _, s := range []string{
		"database named master",
		"**Suppliers table**:",
		"SELECT COUNT(*) FROM Suppliers;",
		"UPDATE Products SET UnitPrice = 18.50 WHERE ProductName = 'Chai';",
		"WHERE Products.ProductID IS NULL;",
		"code blocks (```)",
		RefusalSentence,
	} {
		if !strings.Contains(prompt, s) {
			t.Errorf("generation prompt missing %q", s)
		}
	}
}

func TestBuildCorrectionPrompt(t *testing.T) {
	errText := `no such column: Price`
	prompt := BuildCorrectionPrompt("SELECT Price FROM Products;", errText, "**Products table**:\n")

	for _, s := range []string{
		`resulted in an error: "SELECT Price FROM Products;"`,
		`The error was: "no such column: Price"`,
		"**Products table**:",
		"alias columns if there are duplicates",
	} {
		if !strings.Contains(prompt, s) {
			t.Errorf("correction prompt missing %q", s)
		}
	}
}

func TestBuildSummaryPrompt(t *testing.T) {
	rows := [][]any{{int64(29)}}
	prompt := BuildSummaryPrompt(rows, "How many suppliers are there?", "- Suppliers table (SupplierID)\n")

	if !strings.Contains(prompt, "result:\n\n29\n\n") {
		t.Errorf("summary prompt does not inline the row:\n%s", prompt)
	}
	if !strings.Contains(prompt, `The user asked: "How many suppliers are there?"`) {
		t.Error("summary prompt missing question")
	}
	if !strings.Contains(prompt, "- Suppliers table (SupplierID)") {
		t.Error("summary prompt missing overview")
	}
}

func TestFormatRows(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := [][]any{
		{"Chai", 18.5, int64(39)},
		{[]byte("Chang"), nil, ts},
	}

	want := "Chai, 18.5, 39\nChang, NULL, 2024-03-01T12:00:00Z"
	if got := FormatRows(rows); got != want {
		t.Errorf("FormatRows() = %q, want %q", got, want)
	}
	if got := FormatRows(nil); got != "" {
		t.Errorf("FormatRows(nil) = %q", got)
	}
}
