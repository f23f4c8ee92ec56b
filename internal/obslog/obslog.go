// Package obslog is the structured logger (C3). It formats
// human-readable lines to the console through zerolog, the way
// pkg/logger configures its global zerolog.Logger elsewhere in this
// codebase, and persists every call as a LogRecord through a sink —
// normally *store.Store, which inserts each record directly into the
// log table. A failing sink write is swallowed: logging must never
// throw into the caller.
package obslog

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/BullionBear/lobkeeper/internal/model"
)

// Sink persists a LogRecord. Implementations must not block
// indefinitely; *store.Store satisfies this by bounding each direct
// log insert with a timeout.
type Sink interface {
	InsertLog(rec model.LogRecord) error
}

// noopSink is used when a caller constructs a Logger before the store
// is wired up (e.g. very early startup logging).
type noopSink struct{}

func (noopSink) InsertLog(model.LogRecord) error { return nil }

// Logger implements the log(msg, level, payload?) contract of C3.
type Logger struct {
	console      zerolog.Logger
	sink         Sink
	logToConsole bool
}

// New builds a Logger. When logToConsole is false, console output is
// suppressed but records are still persisted through sink.
func New(sink Sink, logToConsole bool) *Logger {
	if sink == nil {
		sink = noopSink{}
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05.000"}
	console := zerolog.New(writer).With().Timestamp().Logger()
	return &Logger{console: console, sink: sink, logToConsole: logToConsole}
}

// SetSink rewires the persistence sink after construction, e.g. once
// the store connection is established during startup.
func (l *Logger) SetSink(sink Sink) {
	if sink == nil {
		sink = noopSink{}
	}
	l.sink = sink
}

// Log emits msg at level, with an optional free-form payload, to the
// console (if enabled) and to the persisted log table. Errors from
// the sink are dropped; this call never returns an error.
func (l *Logger) Log(msg string, level model.LoggingLevel, payload string) {
	if l.logToConsole {
		l.emit(level, msg, payload)
	}
	_ = l.sink.InsertLog(model.LogRecord{
		Ts:      time.Now().UTC(),
		Msg:     msg,
		Level:   level,
		Payload: payload,
	})
}

func (l *Logger) emit(level model.LoggingLevel, msg, payload string) {
	var ev *zerolog.Event
	switch {
	case level >= model.LevelError:
		// CRITICAL is intentionally not mapped to zerolog's Fatal level:
		// a logging call must never terminate the process.
		ev = l.console.Error()
	case level >= model.LevelWarning:
		ev = l.console.Warn()
	case level >= model.LevelInfo:
		ev = l.console.Info()
	default:
		ev = l.console.Debug()
	}
	if payload != "" {
		ev = ev.Str("payload", payload)
	}
	ev.Str("levelName", level.String()).Msg(msg)
}

func (l *Logger) Debug(msg string)             { l.Log(msg, model.LevelDebug, "") }
func (l *Logger) Info(msg string)              { l.Log(msg, model.LevelInfo, "") }
func (l *Logger) Warning(msg string)           { l.Log(msg, model.LevelWarning, "") }
func (l *Logger) Error(msg string)             { l.Log(msg, model.LevelError, "") }
func (l *Logger) InfoPayload(msg, payload string) { l.Log(msg, model.LevelInfo, payload) }
func (l *Logger) WarningPayload(msg, payload string) { l.Log(msg, model.LevelWarning, payload) }
