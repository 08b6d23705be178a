// Package log implements support for structured logging.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Frames between the go-kit caller valuer and the code calling one of the
// leveled methods: valuer binding, context.Log, emit and the leveled method.
const defaultCallerUnwind = 5

// Logger is a structured logger.
type Logger struct {
	base         log.Logger
	level        Level
	module       string
	callerUnwind int
}

// NewDefaultLogger initializes a new logger instance with default settings.
// For usage outside tests, prefer RootLogger() from package `cmd/common`.
func NewDefaultLogger(module string) *Logger {
	logger, err := NewLogger(module, os.Stderr, FmtJSON, LevelInfo)
	if err != nil {
		// Shouldn't happen as NewLogger can only fail if an invalid format is provided.
		panic(err)
	}
	return logger
}

// NewLogger initializes a new logger instance.
func NewLogger(module string, w io.Writer, format Format, lvl Level) (*Logger, error) {
	var logger log.Logger
	switch format {
	case FmtLogfmt:
		logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	case FmtJSON:
		logger = log.NewJSONLogger(log.NewSyncWriter(w))
	default:
		return nil, fmt.Errorf("log: unsupported log format: %v", format)
	}

	return &Logger{
		base:         log.WithPrefix(logger, "ts", log.DefaultTimestampUTC),
		level:        lvl,
		module:       module,
		callerUnwind: defaultCallerUnwind,
	}, nil
}

func (l *Logger) emit(leveled func(log.Logger) log.Logger, msg string, keyvals []interface{}) {
	logger := log.With(l.base, "caller", log.Caller(l.callerUnwind))
	keyvals = append([]interface{}{"module", l.module, "msg", msg}, keyvals...)
	_ = leveled(logger).Log(keyvals...)
}

// Debug logs the message and key value pairs at the Debug log level.
func (l *Logger) Debug(msg string, keyvals ...interface{}) {
	if l.level > LevelDebug {
		return
	}
	l.emit(level.Debug, msg, keyvals)
}

// Info logs the message and key value pairs at the Info log level.
func (l *Logger) Info(msg string, keyvals ...interface{}) {
	if l.level > LevelInfo {
		return
	}
	l.emit(level.Info, msg, keyvals)
}

// Warn logs the message and key value pairs at the Warn log level.
func (l *Logger) Warn(msg string, keyvals ...interface{}) {
	if l.level > LevelWarn {
		return
	}
	l.emit(level.Warn, msg, keyvals)
}

// Error logs the message and key value pairs at the Error log level.
func (l *Logger) Error(msg string, keyvals ...interface{}) {
	if l.level > LevelError {
		return
	}
	l.emit(level.Error, msg, keyvals)
}

// With returns a clone of the logger with the provided key/value pairs
// added as context for all subsequent logs.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	clone := *l
	clone.base = log.With(l.base, keyvals...)
	return &clone
}

// WithModule returns a clone of the logger with the provided module
// added as context for all subsequent logs.
func (l *Logger) WithModule(module string) *Logger {
	clone := *l
	clone.module = module
	return &clone
}

// WithCallerUnwind returns a clone of the logger that reports the caller
// `extra` frames further up the stack. Used when the logger is wrapped by
// another logging facade.
func (l *Logger) WithCallerUnwind(extra int) *Logger {
	clone := *l
	clone.callerUnwind = defaultCallerUnwind + extra
	return &clone
}

// Level is the logging level.
func (l *Logger) Level() Level {
	return l.level
}

type writerLogger struct {
	logger *Logger
}

func (w writerLogger) Write(p []byte) (int, error) {
	w.logger.Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// WriterIntoLogger adapts the logger into an io.Writer that logs every
// write as one Info message. Used to capture stdlib-style loggers of
// third-party libraries.
func WriterIntoLogger(l *Logger) io.Writer {
	return writerLogger{logger: l}
}
