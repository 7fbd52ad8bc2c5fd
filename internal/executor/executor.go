// Package executor runs SQL text against the configured database and classifies the outcome.
package executor

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/JonMunkholm/AskSQL/internal/logging"
)

// Options configures an Executor.
type Options struct {
	Driver       string        // database/sql driver name
	DSN          string        // data source name for Driver
	QueryTimeout time.Duration // per-attempt timeout (0 = none)
}

// Executor opens a fresh connection for every statement. Nothing is pooled or reused.
type Executor struct {
	driver  string
	dsn     string
	timeout time.Duration
}

// New creates an Executor.
func New(opts Options) *Executor {
	return &Executor{
		driver:  opts.Driver,
		dsn:     opts.DSN,
		timeout: opts.QueryTimeout,
	}
}

// Driver returns the database/sql driver name.
func (e *Executor) Driver() string {
	return e.driver
}

// IsSelect reports whether the statement's leading keyword is SELECT,
// ignoring case and surrounding whitespace.
func IsSelect(sqlText string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sqlText)), "SELECT")
}

// Execute runs sqlText and classifies the result.
//
// sqlText is executed exactly as given. It usually comes straight from a
// language model and is not sanitized, parameterized, or allow-listed:
// whoever can submit a question can run any statement the database
// credentials permit.
func (e *Executor) Execute(ctx context.Context, sqlText string) Outcome {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	out := e.execute(ctx, sqlText)
	out.Duration = time.Since(start)

	switch out.Kind {
	case KindRows:
		logging.Info("statement executed",
			"kind", out.Kind.String(),
			"rows", len(out.Result.Rows),
			"duration_ms", out.Duration.Milliseconds(),
		)
	case KindAcknowledged:
		logging.Info("statement executed",
			"kind", out.Kind.String(),
			"rows_affected", out.RowsAffected,
			"duration_ms", out.Duration.Milliseconds(),
		)
	default:
		logging.Warn("statement failed",
			"duration_ms", out.Duration.Milliseconds(),
			"error", out.Err,
		)
	}
	return out
}

func (e *Executor) execute(ctx context.Context, sqlText string) Outcome {
	db, err := sql.Open(e.driver, e.dsn)
	if err != nil {
		return failed(err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if IsSelect(sqlText) {
		return querySelect(ctx, db, sqlText)
	}
	return execStatement(ctx, db, sqlText)
}

func querySelect(ctx context.Context, db *sql.DB, query string) Outcome {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return failed(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return failed(err)
	}

	result := &Result{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values, err := scanRow(rows, len(columns))
		if err != nil {
			return failed(err)
		}
		result.Rows = append(result.Rows, normalizeRow(values))
	}
	if err := rows.Err(); err != nil {
		return failed(err)
	}

	return Outcome{Kind: KindRows, Result: result}
}

func execStatement(ctx context.Context, db *sql.DB, stmt string) Outcome {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return failed(err)
	}

	res, err := tx.ExecContext(ctx, stmt)
	if err != nil {
		_ = tx.Rollback()
		return failed(err)
	}
	if err := tx.Commit(); err != nil {
		return failed(err)
	}

	out := Outcome{Kind: KindAcknowledged, Message: SentinelMessage}
	if n, err := res.RowsAffected(); err == nil {
		out.RowsAffected = n
	}
	return out
}

func scanRow(rows *sql.Rows, numCols int) ([]any, error) {
	values := make([]any, numCols)
	ptrs := make([]any, numCols)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return values, nil
}

func normalizeRow(values []any) []any {
	row := make([]any, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case nil:
			row[i] = nil
		case []byte:
			row[i] = string(val)
		case time.Time:
			row[i] = val.Format(time.RFC3339Nano)
		default:
			row[i] = val
		}
	}
	return row
}
