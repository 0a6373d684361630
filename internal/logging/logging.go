// Package logging builds the run-scoped logger. Every message goes to both
// stdout and a timestamped file under the configured log directory, so the
// console stream and the persisted log always match.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Setup creates the log directory, builds a SugaredLogger writing to stdout
// and to <logDir>/<modelShort>_<timestamp>.log, and returns the logger
// together with the log file path.
func Setup(logDir, modelShort string) (*zap.SugaredLogger, string, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create log directory: %w", err)
	}

	logFile := filepath.Join(logDir, fmt.Sprintf("%s_%s.log", modelShort, time.Now().Format("20060102_150405")))

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout", logFile},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, "", fmt.Errorf("build logger: %w", err)
	}

	return logger.Sugar(), logFile, nil
}
