package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Release mode gets JSON output, anything
// else a human-readable console encoder.
func New(mode string) *zap.Logger {
	config := zap.NewProductionConfig()
	if mode != "release" {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.StacktraceKey = ""

	log, err := config.Build()
	if err != nil {
		panic(err)
	}
	return log
}
