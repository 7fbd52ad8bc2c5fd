package executor

import "time"

// SentinelMessage is reported when a non-SELECT statement commits with nothing to display.
const SentinelMessage = "Query executed successfully but no results to display."

// Kind tags an execution outcome.
type Kind int

const (
	// KindFailed means connecting, executing, fetching, or committing failed.
	KindFailed Kind = iota
	// KindRows means a SELECT statement returned a result set, possibly empty.
	KindRows
	// KindAcknowledged means a non-SELECT statement was committed.
	KindAcknowledged
)

func (k Kind) String() string {
	switch k {
	case KindRows:
		return "rows"
	case KindAcknowledged:
		return "acknowledged"
	default:
		return "failed"
	}
}

// Result is a fetched result set. Every row has len(Columns) fields.
type Result struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Outcome is the result of one execution attempt. Only the field set for Kind is meaningful.
type Outcome struct {
	Kind Kind

	Result *Result // KindRows

	Message      string // KindAcknowledged: always SentinelMessage
	RowsAffected int64  // KindAcknowledged, when the driver reports it

	Err error // KindFailed: the driver's error, unchanged

	Duration time.Duration
}

// ErrorText returns the failure message, or "" when the outcome did not fail.
func (o Outcome) ErrorText() string {
	if o.Kind != KindFailed || o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

func failed(err error) Outcome {
	return Outcome{Kind: KindFailed, Err: err}
}
