package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JonMunkholm/AskSQL/internal/executor"
	"github.com/JonMunkholm/AskSQL/internal/llm"
	"github.com/JonMunkholm/AskSQL/internal/schema"
	"github.com/JonMunkholm/AskSQL/internal/testutil"
)

func newSQLiteAssistant(t *testing.T, p llm.Provider, maxCorrections int) *Assistant {
	t.Helper()
	exec := executor.New(executor.Options{Driver: executor.DriverSQLite, DSN: testutil.NorthwindDB(t)})
	return New(p, exec, schema.Northwind(), Options{MaxCorrections: maxCorrections})
}

func isSummaryRequest(req llm.CompletionRequest) bool {
	return req.System == "" && strings.Contains(req.User, "The user asked:")
}

func isCorrectionRequest(req llm.CompletionRequest) bool {
	return strings.Contains(req.System, "resulted in an error")
}

func equalKinds(got, want []EventKind) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestAskSupplierCount(t *testing.T) {
	p := testutil.NewScriptedProvider(
		"SELECT COUNT(*) FROM Suppliers;",
		"There are 3 suppliers in the database.",
	)
	a := newSQLiteAssistant(t, p, 3)
	rec := &Recorder{}

	ans, err := a.Ask(context.Background(), "How many suppliers are there?", rec)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if ans.Status != StatusRows {
		t.Fatalf("Status = %v, want rows", ans.Status)
	}
	if ans.SQL != "SELECT COUNT(*) FROM Suppliers;" || ans.Attempts != 1 {
		t.Errorf("SQL = %q, Attempts = %d", ans.SQL, ans.Attempts)
	}
	if len(ans.Result.Rows) != 1 || len(ans.Result.Columns) != 1 {
		t.Fatalf("result = %+v", ans.Result)
	}
	if ans.Result.Rows[0][0] != int64(testutil.SupplierCount) {
		t.Errorf("count = %v", ans.Result.Rows[0][0])
	}
	if !strings.Contains(ans.Summary, "3") {
		t.Errorf("Summary = %q, want it to mention the count", ans.Summary)
	}

	reqs := p.Requests()
	if len(reqs) != 2 {
		t.Fatalf("provider called %d times, want 2", len(reqs))
	}
	if reqs[0].User != "How many suppliers are there?" || !strings.Contains(reqs[0].System, "**Suppliers table**") {
		t.Errorf("generation request = %+v", reqs[0])
	}
	summary := reqs[1]
	if !isSummaryRequest(summary) {
		t.Fatalf("second request is not a summary: %+v", summary)
	}
	if !strings.Contains(summary.User, "result:\n\n3\n\n") {
		t.Errorf("summary prompt does not inline the single row:\n%s", summary.User)
	}
	if !strings.Contains(summary.User, `"How many suppliers are there?"`) {
		t.Error("summary prompt missing the question")
	}

	want := []EventKind{EventGenerated, EventResult, EventSummary}
	if got := rec.Kinds(); !equalKinds(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestAskUpdateIsAcknowledged(t *testing.T) {
	p := testutil.NewScriptedProvider(
		"UPDATE Products SET UnitPrice = 18.50 WHERE ProductName = 'Chai';",
	)
	a := newSQLiteAssistant(t, p, 3)
	rec := &Recorder{}

	ans, err := a.Ask(context.Background(), "Update Chai price to 18.50", rec)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if ans.Status != StatusAcknowledged {
		t.Fatalf("Status = %v, want acknowledged", ans.Status)
	}
	if ans.Warning != executor.SentinelMessage {
		t.Errorf("Warning = %q", ans.Warning)
	}
	if ans.Result != nil || ans.Summary != "" || ans.LastError != "" {
		t.Errorf("acknowledged answer carries data: %+v", ans)
	}
	if n := len(p.Requests()); n != 1 {
		t.Errorf("provider called %d times, want 1 (no summary)", n)
	}

	want := []EventKind{EventGenerated, EventWarning}
	if got := rec.Kinds(); !equalKinds(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestAskCorrectsUnknownColumn(t *testing.T) {
	p := testutil.NewScriptedProvider(
		"SELECT ProductName, Price FROM Products;",
		"SELECT ProductName, UnitPrice FROM Products;",
		"Chai costs 18.",
	)
	a := newSQLiteAssistant(t, p, 3)
	rec := &Recorder{}

	ans, err := a.Ask(context.Background(), "List product prices", rec)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if ans.Status != StatusRows || ans.Attempts != 2 {
		t.Fatalf("Status = %v, Attempts = %d", ans.Status, ans.Attempts)
	}
	if ans.SQL != "SELECT ProductName, UnitPrice FROM Products;" {
		t.Errorf("SQL = %q", ans.SQL)
	}
	if len(ans.Result.Rows) != testutil.ProductCount {
		t.Errorf("rows = %d", len(ans.Result.Rows))
	}

	events := rec.Events()
	want := []EventKind{EventGenerated, EventExecutionError, EventCorrected, EventResult, EventSummary}
	if got := rec.Kinds(); !equalKinds(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	errText := events[1].Message
	if !strings.Contains(errText, "Price") {
		t.Errorf("execution error = %q", errText)
	}

	reqs := p.Requests()
	if len(reqs) != 3 {
		t.Fatalf("provider called %d times, want 3", len(reqs))
	}
	repair := reqs[1]
	if !isCorrectionRequest(repair) {
		t.Fatalf("second request is not a repair: %+v", repair)
	}
	if !strings.Contains(repair.System, `The error was: "`+errText+`"`) {
		t.Errorf("repair prompt does not embed exact error %q:\n%s", errText, repair.System)
	}
	if !strings.Contains(repair.System, "SELECT ProductName, Price FROM Products;") {
		t.Error("repair prompt does not embed the failing query")
	}
	if !strings.Contains(repair.System, "**Products table**") || strings.Contains(repair.System, "**Customers table**") {
		t.Error("repair prompt schema excerpt should cover Products and Suppliers only")
	}
	if repair.User != "List product prices" {
		t.Errorf("repair user text = %q, want the original question", repair.User)
	}

	summaries := 0
	for _, req := range reqs {
		if isSummaryRequest(req) {
			summaries++
			if !strings.Contains(req.User, "Chai, 18") {
				t.Errorf("summary built from wrong result:\n%s", req.User)
			}
		}
	}
	if summaries != 1 {
		t.Errorf("summarizer invoked %d times, want 1", summaries)
	}
}

func TestAskExhaustsCorrectionBudget(t *testing.T) {
	p := testutil.NewScriptedProvider("SELECT Nope FROM Products")
	p.Fallback = func(req llm.CompletionRequest) (string, error) {
		if isSummaryRequest(req) {
			t.Error("summarizer invoked on an error outcome")
		}
		return "SELECT StillNope FROM Products", nil
	}
	a := newSQLiteAssistant(t, p, 2)
	rec := &Recorder{}

	ans, err := a.Ask(context.Background(), "Break it", rec)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if ans.Status != StatusExhausted {
		t.Fatalf("Status = %v, want exhausted", ans.Status)
	}
	if ans.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3 (initial + 2 repairs)", ans.Attempts)
	}
	if !strings.Contains(ans.LastError, "StillNope") {
		t.Errorf("LastError = %q", ans.LastError)
	}
	if ans.Result != nil || ans.Summary != "" {
		t.Errorf("exhausted answer carries data: %+v", ans)
	}

	want := []EventKind{
		EventGenerated,
		EventExecutionError, EventCorrected,
		EventExecutionError, EventCorrected,
		EventExecutionError, EventExhausted,
	}
	if got := rec.Kinds(); !equalKinds(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if n := len(p.Requests()); n != 3 {
		t.Errorf("provider called %d times, want 3", n)
	}
}

func TestAskIsIdempotent(t *testing.T) {
	deterministic := func(req llm.CompletionRequest) (string, error) {
		switch {
		case isSummaryRequest(req):
			return "Four products.", nil
		case isCorrectionRequest(req):
			return "SELECT ProductName FROM Products ORDER BY ProductID", nil
		default:
			return "SELECT Name FROM Products", nil
		}
	}
	p := testutil.NewScriptedProvider()
	p.Fallback = deterministic
	a := newSQLiteAssistant(t, p, 3)

	first, err := a.Ask(context.Background(), "Name every product", nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.Ask(context.Background(), "Name every product", nil)
	if err != nil {
		t.Fatal(err)
	}

	if first.SQL != second.SQL || first.Attempts != second.Attempts || first.Summary != second.Summary {
		t.Errorf("answers differ:\n%+v\n%+v", first, second)
	}
	if len(first.Result.Rows) != len(second.Result.Rows) {
		t.Fatalf("row counts differ")
	}
	for i := range first.Result.Rows {
		if first.Result.Rows[i][0] != second.Result.Rows[i][0] {
			t.Errorf("row %d differs: %v vs %v", i, first.Result.Rows[i], second.Result.Rows[i])
		}
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	p := testutil.NewScriptedProvider()
	a := newSQLiteAssistant(t, p, 1)

	_, err := a.Ask(context.Background(), "   ", nil)
	if !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("error = %v, want ErrEmptyQuestion", err)
	}
	if len(p.Requests()) != 0 {
		t.Error("provider called for a blank question")
	}
}

func TestAskGenerationFailurePropagates(t *testing.T) {
	boom := errors.New("quota exceeded")
	p := &testutil.ScriptedProvider{}
	p.Push(testutil.Reply{Err: boom})
	a := newSQLiteAssistant(t, p, 1)

	_, err := a.Ask(context.Background(), "How many suppliers are there?", nil)
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped %v", err, boom)
	}
}

func TestAskRepairFailurePropagates(t *testing.T) {
	boom := errors.New("connection reset")
	p := testutil.NewScriptedProvider("SELECT Nope FROM Products")
	p.Push(testutil.Reply{Err: boom})
	a := newSQLiteAssistant(t, p, 3)

	_, err := a.Ask(context.Background(), "q", nil)
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped %v", err, boom)
	}
}

func TestAskSummaryFailureKeepsResult(t *testing.T) {
	boom := errors.New("summary down")
	p := testutil.NewScriptedProvider("SELECT COUNT(*) FROM Suppliers")
	p.Push(testutil.Reply{Err: boom})
	a := newSQLiteAssistant(t, p, 1)

	ans, err := a.Ask(context.Background(), "How many suppliers are there?", nil)
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped %v", err, boom)
	}
	if ans == nil || ans.Result == nil || ans.Summary != "" {
		t.Errorf("answer = %+v, want result without summary", ans)
	}
}

func TestAskStripsCodeFences(t *testing.T) {
	p := testutil.NewScriptedProvider("```sql\nSELECT COUNT(*) FROM Products;\n```", "Four.")
	a := newSQLiteAssistant(t, p, 1)

	ans, err := a.Ask(context.Background(), "How many products?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if ans.SQL != "SELECT COUNT(*) FROM Products;" {
		t.Errorf("SQL = %q", ans.SQL)
	}
}

func TestNewDefaultsMaxCorrections(t *testing.T) {
	a := New(testutil.NewScriptedProvider(), nil, schema.Northwind(), Options{})
	if a.MaxCorrections() != DefaultMaxCorrections {
		t.Errorf("MaxCorrections() = %d, want %d", a.MaxCorrections(), DefaultMaxCorrections)
	}
}

func TestStatusString(t *testing.T) {
	for s, want := range map[Status]string{
		StatusRows:         "rows",
		StatusAcknowledged: "acknowledged",
		StatusExhausted:    "exhausted",
		Status(9):          "unknown",
	} {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", s, got, want)
		}
	}
}
