// Package logging provides the structured logger the composition root uses.
package logging

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps *zap.SugaredLogger so call sites can pass around key/value
// pairs without importing zap directly.
type Logger struct {
	z *zap.SugaredLogger
}

// New builds a production JSON logger, or a console logger when dev is true.
func New(dev bool) *Logger {
	var cfg zap.Config
	if dev {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	z, err := cfg.Build()
	if err != nil {
		// Logging must never be the reason the process fails to start.
		fallback := zap.NewNop()
		return &Logger{z: fallback.Sugar()}
	}
	return &Logger{z: z.Sugar()}
}

// With returns a child logger carrying the given key/value pairs on every
// subsequent call.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{z: l.z.With(kv...)}
}

func (l *Logger) Info(msg string, kv ...interface{})  { l.z.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.z.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.z.Errorw(msg, kv...) }
func (l *Logger) Debug(msg string, kv ...interface{}) { l.z.Debugw(msg, kv...) }

// Fatal logs at fatal level then exits the process. Reserved for
// composition-root startup failures (bad config, unreachable database)
// where continuing would only produce confusing downstream errors.
func (l *Logger) Fatal(msg string, kv ...interface{}) { l.z.Fatalw(msg, kv...) }

func (l *Logger) Sync() { _ = l.z.Sync() }

var (
	defaultOnce sync.Once
	defaultLog  *Logger
)

// Default returns a process-wide logger, built once on first use. Prefer
// constructing a *Logger explicitly at the composition root and passing it
// down; Default exists for package-level helpers and tests.
func Default() *Logger {
	defaultOnce.Do(func() {
		dev := os.Getenv("LEXICORE_ENV") != "production"
		defaultLog = New(dev)
	})
	return defaultLog
}
