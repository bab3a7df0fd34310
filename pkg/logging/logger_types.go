package logging

import (
	"io"
	"strings"
	"sync"
	"time"
)

// Logger writes structured entries. Server handlers, the tick loop and the
// transition controller all take one; nil means NopLogger via OrNop.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With returns a child that adds fields to every entry, such as the
	// component or cluster id.
	With(fields ...Field) Logger
	SetLevel(level Level)
	GetLevel() Level
}

// Field is one key of an entry.
type Field struct {
	Key   string
	Value any
}

// Level orders entries by severity.
type Level int

const (
	// DebugLevel covers per-tick and per-timer chatter.
	DebugLevel Level = iota
	InfoLevel
	// WarnLevel marks recoverable trouble such as an empty fetch result.
	WarnLevel
	// ErrorLevel marks an aborted operation.
	ErrorLevel
)

var levelNames = map[string]Level{
	"DEBUG":   DebugLevel,
	"INFO":    InfoLevel,
	"WARN":    WarnLevel,
	"WARNING": WarnLevel,
	"ERROR":   ErrorLevel,
}

// LevelNames lists the names LookupLevel accepts, in upper case.
var LevelNames = []string{"DEBUG", "INFO", "WARN", "WARNING", "ERROR"}

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	}
	return "UNKNOWN"
}

// LookupLevel resolves a level name, ignoring case and surrounding space.
func LookupLevel(s string) (Level, bool) {
	l, ok := levelNames[strings.ToUpper(strings.TrimSpace(s))]
	return l, ok
}

// ParseLevel is LookupLevel with unknown names mapped to InfoLevel.
func ParseLevel(s string) Level {
	if l, ok := LookupLevel(s); ok {
		return l
	}
	return InfoLevel
}

// JSONLogger writes one JSON object per line. Children made by With share
// their parent's writer lock, so the tick loop and HTTP handlers can log to
// the same file without interleaving.
type JSONLogger struct {
	writer io.Writer
	level  Level
	fields []Field
	now    func() time.Time
	mu     *sync.Mutex
}

// LogEntry is the decoded form of one line.
type LogEntry struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// NopLogger drops everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (n NopLogger) With(...Field) Logger { return n }
func (NopLogger) SetLevel(Level)         {}
func (NopLogger) GetLevel() Level        { return InfoLevel }

// NewNopLogger returns a NopLogger.
func NewNopLogger() Logger {
	return NopLogger{}
}

// OrNop returns l, or a NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}

// TimedOperation logs how long an operation such as a neighbour-graph build
// or a graceful shutdown took. See StartTimer.
type TimedOperation struct {
	logger Logger
	msg    string
	start  time.Time
	fields []Field
}
