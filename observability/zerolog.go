package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogConfig selects level and output format for NewZerolog.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // console or json
	Output io.Writer
	// NoColor disables ANSI colors in console output.
	NoColor bool
}

type zerologLogger struct {
	zl zerolog.Logger
}

// NewZerolog returns a Logger backed by zerolog. The level is applied to the
// returned logger only; the zerolog global level is left untouched.
func NewZerolog(cfg LogConfig) Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	var zl zerolog.Logger
	if strings.EqualFold(cfg.Format, "json") {
		zl = zerolog.New(out)
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.TimeOnly,
			NoColor:    cfg.NoColor,
		})
	}
	zl = zl.Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
	return &zerologLogger{zl: zl}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *zerologLogger) Debug(msg string, fields ...Field) { emit(l.zl.Debug(), msg, fields) }
func (l *zerologLogger) Info(msg string, fields ...Field)  { emit(l.zl.Info(), msg, fields) }
func (l *zerologLogger) Warn(msg string, fields ...Field)  { emit(l.zl.Warn(), msg, fields) }
func (l *zerologLogger) Error(msg string, fields ...Field) { emit(l.zl.Error(), msg, fields) }

func (l *zerologLogger) With(fields ...Field) Logger {
	ctx := l.zl.With()
	for _, f := range fields {
		switch v := f.Value().(type) {
		case string:
			ctx = ctx.Str(f.Key(), v)
		case int:
			ctx = ctx.Int(f.Key(), v)
		case error:
			ctx = ctx.AnErr(f.Key(), v)
		default:
			ctx = ctx.Interface(f.Key(), v)
		}
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func emit(evt *zerolog.Event, msg string, fields []Field) {
	if evt == nil {
		return
	}
	for _, f := range fields {
		switch v := f.Value().(type) {
		case string:
			evt = evt.Str(f.Key(), v)
		case int:
			evt = evt.Int(f.Key(), v)
		case time.Duration:
			evt = evt.Dur(f.Key(), v)
		case []string:
			evt = evt.Strs(f.Key(), v)
		case error:
			evt = evt.AnErr(f.Key(), v)
		case nil:
		default:
			evt = evt.Interface(f.Key(), v)
		}
	}
	evt.Msg(msg)
}
