// Package server is the web front end: a question form, the ask endpoint,
// CSV export of SELECT results, and the schema catalog.
package server

import (
	"context"
	_ "embed"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/AskSQL/internal/assistant"
	"github.com/JonMunkholm/AskSQL/internal/executor"
	"github.com/JonMunkholm/AskSQL/internal/logging"
	"github.com/JonMunkholm/AskSQL/internal/schema"
)

const (
	defaultAskTimeout = 5 * time.Minute
	defaultQuestion   = "How many suppliers are there?"
	shutdownTimeout   = 10 * time.Second
)

//go:embed templates/index.html
var indexHTML string

// Options configures a Server.
type Options struct {
	AskTimeout   time.Duration // upper bound for one question (default 5m)
	ProviderName string        // reported by /healthz
	Driver       string        // reported by /healthz
}

// Server serves the AskSQL web interface.
type Server struct {
	assistant *assistant.Assistant
	exec      assistant.Executor
	catalog   *schema.Catalog
	tmpl      *template.Template
	opts      Options
}

// New creates a Server. exec is used directly by /export; questions go through a.
func New(a *assistant.Assistant, exec assistant.Executor, catalog *schema.Catalog, opts Options) *Server {
	if opts.AskTimeout <= 0 {
		opts.AskTimeout = defaultAskTimeout
	}
	return &Server{
		assistant: a,
		exec:      exec,
		catalog:   catalog,
		tmpl:      template.Must(template.New("index").Parse(indexHTML)),
		opts:      opts,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/", s.handleIndex)
	r.Post("/ask", s.handleAsk)
	r.Post("/export", s.handleExportCSV)
	r.Get("/schema", s.handleSchema)
	r.Get("/healthz", s.handleHealth)
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("listening", "addr", addr, "driver", s.opts.Driver, "provider", s.opts.ProviderName)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logging.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		DefaultQuestion string
		Database        string
		MaxCorrections  int
	}{
		DefaultQuestion: defaultQuestion,
		Database:        s.catalog.Database,
		MaxCorrections:  s.assistant.MaxCorrections(),
	}
	if err := s.tmpl.Execute(w, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Question   string            `json:"question"`
	SQL        string            `json:"sql,omitempty"`
	Status     string            `json:"status,omitempty"`
	Columns    []string          `json:"columns,omitempty"`
	Rows       [][]any           `json:"rows,omitempty"`
	Count      int               `json:"count"`
	Summary    string            `json:"summary,omitempty"`
	Warning    string            `json:"warning,omitempty"`
	Error      string            `json:"error,omitempty"`
	Attempts   int               `json:"attempts"`
	Trail      []assistant.Event `json:"trail"`
	DurationMs int64             `json:"durationMs"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, askResponse{Error: "invalid JSON body", Trail: []assistant.Event{}})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respondJSON(w, http.StatusBadRequest, askResponse{Error: assistant.ErrEmptyQuestion.Error(), Trail: []assistant.Event{}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.AskTimeout)
	defer cancel()

	start := time.Now()
	trail := &assistant.Recorder{}
	ans, err := s.assistant.Ask(ctx, req.Question, trail)

	resp := newAskResponse(req.Question, ans, trail.Events())
	resp.DurationMs = time.Since(start).Milliseconds()

	switch {
	case errors.Is(err, assistant.ErrEmptyQuestion):
		resp.Error = err.Error()
		respondJSON(w, http.StatusBadRequest, resp)
	case err != nil:
		logging.Error("ask failed", "question", req.Question, "error", err)
		resp.Error = err.Error()
		respondJSON(w, http.StatusBadGateway, resp)
	default:
		respondJSON(w, http.StatusOK, resp)
	}
}

func newAskResponse(question string, ans *assistant.Answer, trail []assistant.Event) askResponse {
	resp := askResponse{Question: strings.TrimSpace(question), Trail: trail}
	if ans == nil {
		return resp
	}
	resp.SQL = ans.SQL
	resp.Status = ans.Status.String()
	resp.Summary = ans.Summary
	resp.Warning = ans.Warning
	resp.Error = ans.LastError
	resp.Attempts = ans.Attempts
	if ans.Result != nil {
		resp.Columns = ans.Result.Columns
		resp.Rows = ans.Result.Rows
		resp.Count = len(ans.Result.Rows)
	}
	return resp
}

// TODO(export): name the CSV after the question once /export receives it.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SQL string `json:"sql"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	query, err := validateSelectQuery(req.SQL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out := s.exec.Execute(r.Context(), query)
	if out.Kind != executor.KindRows {
		http.Error(w, out.ErrorText(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=export.csv")

	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(out.Result.Columns); err != nil {
		return
	}
	for _, row := range out.Result.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = formatCSVValue(v)
		}
		if err := csvWriter.Write(record); err != nil {
			return
		}
	}
}

type schemaResponse struct {
	Database   string         `json:"database"`
	Tables     []schema.Table `json:"tables"`
	TableCount int            `json:"tableCount"`
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, schemaResponse{
		Database:   s.catalog.Database,
		Tables:     s.catalog.Tables,
		TableCount: len(s.catalog.Tables),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"provider": s.opts.ProviderName,
		"driver":   s.opts.Driver,
	})
}

var errEmptyQuery = errors.New("sql is required")
var errNotSelectQuery = errors.New("only SELECT statements can be exported")

func validateSelectQuery(raw string) (string, error) {
	query := strings.TrimSpace(raw)
	if query == "" {
		return "", errEmptyQuery
	}
	if !executor.IsSelect(query) {
		return "", errNotSelectQuery
	}
	return query, nil
}

func formatCSVValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
