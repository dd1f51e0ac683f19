// Package logging connects the client's Logger interface to zap.
//
//	logger := logging.NewConsole(os.Stderr, debug)
//	defer logger.Sync()
//	client := sahara.New(t, sahara.WithLogger(logging.New(logger)))
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/moffa90/go-sahara/sahara"
)

// Logger implements sahara.Logger on a zap.SugaredLogger. Key-value pairs
// become structured fields.
type Logger struct {
	sugar *zap.SugaredLogger
}

var _ sahara.Logger = (*Logger)(nil)

// New adapts l. A nil l yields a logger that discards everything.
func New(l *zap.Logger) *Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Logger{sugar: l.Sugar()}
}

// With returns a logger that adds the given key-value pairs to every entry.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// NewConsole builds a human-readable zap logger writing to w. Debug entries
// are dropped unless debug is set.
func NewConsole(w io.Writer, debug bool) *zap.Logger {
	config := zap.NewDevelopmentEncoderConfig()
	config.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(config), zapcore.AddSync(w), level)
	return zap.New(core)
}
