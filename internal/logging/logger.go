package logging

import (
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides optional verbose logging and lightweight timing helpers.
// The zero value discards everything.
type Logger struct {
	z       *zap.SugaredLogger
	Verbose bool
}

func New(writer io.Writer, verbose bool) Logger {
	if writer == nil {
		return Logger{Verbose: verbose}
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	encCfg.StacktraceKey = ""

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(writer), level)
	return Logger{z: zap.New(core).Sugar(), Verbose: verbose}
}

// Nop returns a logger that writes nothing.
func Nop() Logger {
	return Logger{}
}

func (l Logger) Infof(format string, args ...any) {
	if l.z == nil {
		return
	}
	l.z.Infof(format, args...)
}

func (l Logger) Warnf(format string, args ...any) {
	if l.z == nil {
		return
	}
	l.z.Warnf(format, args...)
}

func (l Logger) Verbosef(format string, args ...any) {
	if !l.Verbose || l.z == nil {
		return
	}
	l.z.Debugf(format, args...)
}

// Infow logs a message with structured key/value pairs.
func (l Logger) Infow(msg string, keysAndValues ...any) {
	if l.z == nil {
		return
	}
	l.z.Infow(msg, keysAndValues...)
}

func (l Logger) Warnw(msg string, keysAndValues ...any) {
	if l.z == nil {
		return
	}
	l.z.Warnw(msg, keysAndValues...)
}

// Measure returns a stop function that logs the elapsed time when called.
func (l Logger) Measure(label string) func() {
	if !l.Verbose {
		return func() {}
	}
	start := time.Now()
	return func() {
		elapsed := time.Since(start).Round(time.Millisecond)
		l.Verbosef("%s took %s", label, elapsed)
	}
}

func (l Logger) Sync() {
	if l.z == nil {
		return
	}
	_ = l.z.Sync()
}
