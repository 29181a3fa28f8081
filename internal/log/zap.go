package log

import (
	"go.uber.org/zap"
)

var Logger = zap.NewNop()

func InitProductionLogger() {
	Logger, _ = zap.NewProduction()
}

func InitDevelopmentLogger() {
	Logger, _ = zap.NewDevelopment()
}

// Init picks the logger flavour from the LOG_MODE setting.
func Init(mode string) *zap.Logger {
	if mode == "production" {
		InitProductionLogger()
	} else {
		InitDevelopmentLogger()
	}
	if Logger == nil {
		Logger = zap.NewNop()
	}
	return Logger
}
