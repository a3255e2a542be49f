// Package logging builds the zap logger used for diagnostics.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/amonks/tasknotes/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TimeLayout formats log timestamps.
const TimeLayout = "2006/01/02 15:04:05"

// New builds a logger from the [log] config section. Development loggers
// write colored console lines; production loggers write JSON.
func New(cfg config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		if cfg.File == "" {
			zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(TimeLayout)
	zc.Level = zap.NewAtomicLevelAt(level)

	output := "stderr"
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		output = cfg.File
	}
	zc.OutputPaths = []string{output}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
