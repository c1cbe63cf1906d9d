// Package logger defines the logging interface used across the SDK and its
// default implementations. Callers that already have a structured logger can
// satisfy Logger with a thin adapter; everyone else gets zerolog via New or
// an slog handler via the slog subpackage.
package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger accepts a message plus alternating key/value pairs, in the style of
// log/slog.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

type zerologLogger struct {
	logger zerolog.Logger
}

// New returns a Logger writing JSON lines to w through zerolog.
func New(w io.Writer) Logger {
	return &zerologLogger{
		logger: zerolog.New(w).With().Timestamp().Logger(),
	}
}

func (z *zerologLogger) Error(msg string, args ...any) { z.log(z.logger.Error(), msg, args) }
func (z *zerologLogger) Warn(msg string, args ...any)  { z.log(z.logger.Warn(), msg, args) }
func (z *zerologLogger) Info(msg string, args ...any)  { z.log(z.logger.Info(), msg, args) }
func (z *zerologLogger) Debug(msg string, args ...any) { z.log(z.logger.Debug(), msg, args) }

func (z *zerologLogger) log(ev *zerolog.Event, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, args[i+1])
	}
	ev.Msg(msg)
}

type nopLogger struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Error(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
