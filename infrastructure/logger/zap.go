package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger starts as a no-op so packages can log before InitializeLogger runs (tests, CLI init).
var Logger = zap.NewNop()

func InitializeLogger() {
	var config zap.Config
	if os.Getenv("APP_ENV") == "dev" {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "time"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	built, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	Logger = built

	token := os.Getenv("ROLLBAR_TOKEN")
	if token != "" {
		ErrorReporter = newRollbarReporter(token, os.Getenv("APP_ENV"))
	}
}

// Flushes buffered log entries. Called on shutdown.
func Sync() {
	_ = Logger.Sync()
	ErrorReporter.Close()
}
