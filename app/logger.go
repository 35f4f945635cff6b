package app

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

// MakeLogger replaces the global zap logger with the colored development
// logger used across the app
func MakeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = logLevel
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

// SetLogLevel changes the level of the global logger at runtime
func SetLogLevel(level string) error {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	logLevel.SetLevel(l)
	return nil
}
