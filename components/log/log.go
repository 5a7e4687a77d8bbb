package log

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	l atomic.Value
)

func init() {
	logger, _ := zap.NewProduction(zap.AddStacktrace(zapcore.FatalLevel))
	l.Store(logger)
}

// UseLogger set the process logger
func UseLogger(logger *zap.Logger) {
	if logger != nil {
		l.Store(logger)
	}
}

// Logger returns the process logger
func Logger() *zap.Logger {
	return l.Load().(*zap.Logger)
}
