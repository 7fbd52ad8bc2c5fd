package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pterm/pterm"

	"github.com/JonMunkholm/AskSQL/internal/assistant"
	"github.com/JonMunkholm/AskSQL/internal/executor"
	"github.com/JonMunkholm/AskSQL/internal/llm"
	"github.com/JonMunkholm/AskSQL/internal/schema"
	"github.com/JonMunkholm/AskSQL/internal/testutil"
)

func init() {
	pterm.DisableStyling()
}

func newTestAssistant(t *testing.T, p *testutil.ScriptedProvider, maxCorrections int) *assistant.Assistant {
	t.Helper()
	exec := executor.New(executor.Options{Driver: executor.DriverSQLite, DSN: testutil.NorthwindDB(t)})
	return assistant.New(p, exec, schema.Northwind(), assistant.Options{MaxCorrections: maxCorrections})
}

func TestRunAskPrintsTrailTableAndSummary(t *testing.T) {
	p := testutil.NewScriptedProvider(
		"SELECT CompanyName FROM Supplier ORDER BY SupplierID",
		"SELECT CompanyName FROM Suppliers ORDER BY SupplierID",
		"There are three suppliers.",
	)
	a := newTestAssistant(t, p, 5)

	var out bytes.Buffer
	if err := runAsk(context.Background(), a, "List the suppliers", &out); err != nil {
		t.Fatalf("runAsk() error = %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Generated SQL Query: SELECT CompanyName FROM Supplier ORDER BY SupplierID",
		"SQL Error: ",
		"Corrected SQL Query: SELECT CompanyName FROM Suppliers ORDER BY SupplierID",
		"CompanyName",
		"Exotic Liquids",
		"3 row(s)",
		"Summary",
		"There are three suppliers.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Index(text, "SQL Error") > strings.Index(text, "Corrected SQL Query") {
		t.Error("error printed after the corrected query")
	}
}

func TestRunAskAcknowledged(t *testing.T) {
	p := testutil.NewScriptedProvider("UPDATE Products SET UnitPrice = 18.50 WHERE ProductName = 'Chai'")
	a := newTestAssistant(t, p, 5)

	var out bytes.Buffer
	if err := runAsk(context.Background(), a, "Update Chai price to 18.50", &out); err != nil {
		t.Fatalf("runAsk() error = %v", err)
	}
	text := out.String()
	if !strings.Contains(text, executor.SentinelMessage) {
		t.Errorf("output missing sentinel:\n%s", text)
	}
	if strings.Contains(text, "SQL Error") || strings.Contains(text, "Summary") {
		t.Errorf("unexpected output:\n%s", text)
	}
}

func TestRunAskExhausted(t *testing.T) {
	p := testutil.NewScriptedProvider()
	p.Fallback = func(llm.CompletionRequest) (string, error) { return "SELECT Nope FROM Missing", nil }
	a := newTestAssistant(t, p, 1)

	var out bytes.Buffer
	err := runAsk(context.Background(), a, "anything", &out)
	if !errors.Is(err, errExhausted) {
		t.Fatalf("error = %v, want errExhausted", err)
	}
	if got := strings.Count(out.String(), "SQL Error: "); got != 2 {
		t.Errorf("printed %d SQL errors, want 2:\n%s", got, out.String())
	}
	if !strings.Contains(out.String(), "Giving up after 2 attempts.") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestRunAskModelError(t *testing.T) {
	p := testutil.NewScriptedProvider()
	p.Push(testutil.Reply{Err: errors.New("quota exceeded")})
	a := newTestAssistant(t, p, 5)

	var out bytes.Buffer
	err := runAsk(context.Background(), a, "How many suppliers are there?", &out)
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "NULL"},
		{int64(3), "3"},
		{"Chai", "Chai"},
		{18.5, "18.5"},
	}
	for _, tt := range tests {
		if got := formatCell(tt.in); got != tt.want {
			t.Errorf("formatCell(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSchemaCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"full", []string{"schema"}, schema.Northwind().ToText()},
		{"overview", []string{"schema", "--overview"}, schema.Northwind().Overview()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schemaOverview = false
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetArgs(tt.args)
			t.Cleanup(func() {
				rootCmd.SetOut(nil)
				rootCmd.SetArgs(nil)
			})

			if err := rootCmd.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}
