// Package monitoring holds the process-wide diagnostic logger.
//
// Packages log through Logf so that the sink can be swapped without threading a
// logger through every constructor. The default sink is a zap sugared logger;
// the CLI replaces it once flags are parsed.
package monitoring

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	logger *zap.Logger = zap.NewNop()
)

// Logf is the package-level diagnostic logger. It defaults to an Info-level zap
// sugared logger but may be replaced by SetLogger. Tests can mute it with SetLogger(nil).
var Logf func(format string, v ...interface{}) = newZapLogf(mustDefault())

func mustDefault() *zap.Logger {
	l, err := NewZap(false)
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func newZapLogf(l *zap.Logger) func(string, ...interface{}) {
	mu.Lock()
	logger = l
	mu.Unlock()
	sugar := l.Sugar()
	return sugar.Infof
}

// NewZap builds the production zap logger used by the CLI. verbose lowers the
// level to debug.
func NewZap(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// UseZap routes Logf through l.
func UseZap(l *zap.Logger) {
	if l == nil {
		SetLogger(nil)
		return
	}
	Logf = newZapLogf(l)
}

// Zap returns the zap logger currently backing Logf, or a no-op logger when
// Logf was replaced with a plain function.
func Zap() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Sync flushes the backing zap logger.
func Sync() {
	_ = Zap().Sync()
}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	mu.Lock()
	logger = zap.NewNop()
	mu.Unlock()
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
