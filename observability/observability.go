// Package observability defines the small structured logging surface used
// across pagemerge. Components accept a Logger and default to NopLogger, so
// they stay quiet in tests and libraries; the CLI wires a zerolog backend.
package observability

import "time"

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type Field interface {
	Key() string
	Value() interface{}
}

type stringField struct{ key, val string }

func (f stringField) Key() string        { return f.key }
func (f stringField) Value() interface{} { return f.val }

type intField struct {
	key string
	val int
}

func (f intField) Key() string        { return f.key }
func (f intField) Value() interface{} { return f.val }

type durationField struct {
	key string
	val time.Duration
}

func (f durationField) Key() string        { return f.key }
func (f durationField) Value() interface{} { return f.val }

type stringsField struct {
	key string
	val []string
}

func (f stringsField) Key() string        { return f.key }
func (f stringsField) Value() interface{} { return f.val }

type errorField struct {
	key string
	err error
}

func (f errorField) Key() string        { return f.key }
func (f errorField) Value() interface{} { return f.err }

func String(key, value string) Field  { return stringField{key, value} }
func Int(key string, value int) Field { return intField{key, value} }

func Duration(key string, value time.Duration) Field { return durationField{key, value} }

// Strings copies values so later mutation by the caller does not leak into
// buffered log events.
func Strings(key string, values []string) Field {
	return stringsField{key, append([]string(nil), values...)}
}

// Err attaches err under the "error" key.
func Err(err error) Field { return errorField{"error", err} }

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// OrNop returns l, or NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}

// Standard field keys shared by the pipeline stages.
const (
	KeyRunID     = "run_id"
	KeyFile      = "file"
	KeyPage      = "page"
	KeyOutput    = "output"
	KeySource    = "source"
	KeyApplicant = "applicant"
	KeyElapsed   = "elapsed"
)
