package logging

import (
	"go.uber.org/zap"
)

var Logger *zap.SugaredLogger

func InitLogger(debug bool) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.Encoding = "console"
	logger, err := cfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	Logger = logger.Sugar()
}

// Sync flushes buffered log entries. Called on shutdown.
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
