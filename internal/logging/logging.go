// Package logging writes leveled, structured JSON log lines to stderr.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu           sync.Mutex
	currentLevel = LevelInfo
	out          io.Writer = os.Stderr
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name to a Level. Unknown names are an error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

type entry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

func log(level Level, message string, keyvals ...any) {
	mu.Lock()
	defer mu.Unlock()

	if level < currentLevel {
		return
	}

	e := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level.String(),
		Message:   message,
	}
	if len(keyvals) > 0 {
		e.Fields = make(map[string]any, len(keyvals)/2)
		for i := 0; i+1 < len(keyvals); i += 2 {
			v := keyvals[i+1]
			if err, ok := v.(error); ok {
				v = err.Error()
			}
			e.Fields[fmt.Sprintf("%v", keyvals[i])] = v
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		fmt.Fprintf(out, "ERROR: marshal log entry: %v\n", err)
		return
	}
	fmt.Fprintln(out, string(b))
}

// Debug logs a debug-level message with key/value fields.
func Debug(message string, keyvals ...any) { log(LevelDebug, message, keyvals...) }

// Info logs an info-level message with key/value fields.
func Info(message string, keyvals ...any) { log(LevelInfo, message, keyvals...) }

// Warn logs a warning-level message with key/value fields.
func Warn(message string, keyvals ...any) { log(LevelWarn, message, keyvals...) }

// Error logs an error-level message with key/value fields.
func Error(message string, keyvals ...any) { log(LevelError, message, keyvals...) }

// SetLevel sets the minimum level that is written.
func SetLevel(level Level) {
	mu.Lock()
	currentLevel = level
	mu.Unlock()
}

// GetLevel returns the minimum level that is written.
func GetLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return currentLevel
}

// SetOutput redirects log output and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}
