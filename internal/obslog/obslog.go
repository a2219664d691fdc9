// Package obslog gives the vault package (the only one that takes a
// Logger; ledger and codec do not log) the same narrow, injectable logging
// seam the teacher's massifs package gets from
// go-datatrails-common/logger, backed by zap instead of the house logger.
package obslog

import "go.uber.org/zap"

// Logger is the minimal surface every component depends on. Components
// take a Logger through a functional option and default to Noop() when
// none is supplied, so logging is never load-bearing for correctness.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type zapLogger struct {
	s *zap.SugaredLogger
}

func (z zapLogger) Debugf(format string, args ...any) { z.s.Debugf(format, args...) }
func (z zapLogger) Infof(format string, args ...any)  { z.s.Infof(format, args...) }
func (z zapLogger) Warnf(format string, args ...any)  { z.s.Warnf(format, args...) }
func (z zapLogger) Errorf(format string, args ...any) { z.s.Errorf(format, args...) }

// NewZap wraps a production zap logger, named for the component that owns
// it (matching the teacher's logger.New(name) convention).
func NewZap(name string) Logger {
	base, err := zap.NewProduction()
	if err != nil {
		// zap.NewProduction only fails building its sinks; fall back to a
		// logger that still works rather than propagate a config error
		// from an observability seam.
		base = zap.NewNop()
	}
	return zapLogger{s: base.Sugar().Named(name)}
}

type noop struct{}

func (noop) Debugf(string, ...any) {}
func (noop) Infof(string, ...any)  {}
func (noop) Warnf(string, ...any)  {}
func (noop) Errorf(string, ...any) {}

// Noop returns a Logger that discards everything, used as the default
// when a component is constructed without WithLogger.
func Noop() Logger { return noop{} }
