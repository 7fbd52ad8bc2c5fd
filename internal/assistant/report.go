package assistant

import "sync"

// EventKind names a step of the question pipeline that the presentation surface shows.
type EventKind string

const (
	EventGenerated      EventKind = "generated"       // initial SQL from the model
	EventExecutionError EventKind = "execution_error" // an attempt failed; Message is the driver error
	EventCorrected      EventKind = "corrected"       // repaired SQL from the model
	EventWarning        EventKind = "warning"         // non-SELECT statement committed, nothing to show
	EventExhausted      EventKind = "exhausted"       // correction budget used up
	EventResult         EventKind = "result"          // rows fetched
	EventSummary        EventKind = "summary"         // prose answer ready
)

// Event is one entry in the live trail of a question.
type Event struct {
	Kind    EventKind `json:"kind"`
	Attempt int       `json:"attempt,omitempty"`
	SQL     string    `json:"sql,omitempty"`
	Message string    `json:"message,omitempty"`
}

// Reporter receives pipeline events as they happen. It is write-only:
// nothing it does feeds back into the pipeline.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

// Report calls f(e).
func (f ReporterFunc) Report(e Event) { f(e) }

// Discard drops every event.
var Discard Reporter = ReporterFunc(func(Event) {})

// Recorder keeps every event in order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Report appends e.
func (r *Recorder) Report(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the kinds of the recorded events, in order.
func (r *Recorder) Kinds() []EventKind {
	events := r.Events()
	kinds := make([]EventKind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	return kinds
}
