package main

import (
	"go.uber.org/zap"
)

func newDebugLogger() (*zap.Logger, error) {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)

	return logConfig.Build()
}
