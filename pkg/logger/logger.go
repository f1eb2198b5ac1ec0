package logger

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

var (
	mu          sync.RWMutex
	sugar       *zap.SugaredLogger
	development = true
)

func init() {
	l, err := zap.NewDevelopment(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewNop()
	}
	sugar = l.Sugar()
}

// Init replaces the default development logger. Call once from main.
func Init(environment string) error {
	var (
		l   *zap.Logger
		err error
	)
	if environment == "development" {
		l, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		l, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return err
	}

	mu.Lock()
	sugar = l.Sugar()
	development = environment == "development"
	mu.Unlock()
	return nil
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Info(format string, v ...interface{}) {
	current().Infof(format, v...)
}

func Error(format string, v ...interface{}) {
	current().Errorf(format, v...)
}

func Debug(format string, v ...interface{}) {
	mu.RLock()
	dev := development
	mu.RUnlock()
	if dev {
		current().Debugf(format, v...)
	}
}

func Warn(format string, v ...interface{}) {
	current().Warnf(format, v...)
}

func Sync() {
	_ = current().Sync()
}

// WithContext prefixes a message with the caller location and an optional context value.
func WithContext(ctx interface{}, format string, v ...interface{}) string {
	_, file, line, _ := runtime.Caller(1)
	contextStr := fmt.Sprintf("%v:%d", file, line)
	if ctx != nil {
		contextStr = fmt.Sprintf("%v - %v", contextStr, ctx)
	}
	return fmt.Sprintf("[%s] %s", contextStr, fmt.Sprintf(format, v...))
}
