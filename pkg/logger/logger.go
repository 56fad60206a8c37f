// Package logger exposes the SDK-wide leveled logger. The default writes
// structured output to stderr; embedders can swap in their own zap logger or
// silence the SDK with zap.NewNop().
package logger

import "go.uber.org/zap"

var sugar = zap.Must(zap.NewProduction()).Sugar()

// SetLogger replaces the package logger.
func SetLogger(l *zap.Logger) {
	if l != nil {
		sugar = l.Sugar()
	}
}

func Debug(format string, args ...interface{}) {
	sugar.Debugf(format, args...)
}

func Info(format string, args ...interface{}) {
	sugar.Infof(format, args...)
}

func Warn(format string, args ...interface{}) {
	sugar.Warnf(format, args...)
}

func Error(format string, args ...interface{}) {
	sugar.Errorf(format, args...)
}
