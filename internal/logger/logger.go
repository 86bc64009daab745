package logger

import (
	"os"

	"go.uber.org/zap"
)

// DebugEnv forces debug verbosity when set to any value.
const DebugEnv = "HSA_DEBUG"

func New(verbosity string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(verbosity)
	if err != nil {
		return nil, err
	}
	if _, ok := os.LookupEnv(DebugEnv); ok {
		level.SetLevel(zap.DebugLevel)
	}
	config.Level = level
	return config.Build()
}
