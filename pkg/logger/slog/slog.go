// Package slog bridges log/slog handlers into the logger.Logger interface,
// for applications that already route their logs through slog.
package slog

import (
	"log/slog"

	"github.com/frappe/insights.go/pkg/logger"
)

// Adapter forwards Logger calls to a slog.Logger. Key/value args pass
// through untouched since both sides share the alternating-pairs convention.
type Adapter struct {
	logger *slog.Logger
}

var _ logger.Logger = (*Adapter)(nil)

// New wraps a slog handler, e.g. slog.NewJSONHandler.
func New(h slog.Handler) *Adapter {
	return &Adapter{logger: slog.New(h)}
}

// FromLogger wraps an already constructed slog.Logger.
func FromLogger(l *slog.Logger) *Adapter {
	return &Adapter{logger: l}
}

func (a *Adapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
func (a *Adapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *Adapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *Adapter) Debug(msg string, args ...any) { a.logger.Debug(msg, args...) }
