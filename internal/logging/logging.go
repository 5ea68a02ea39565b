// Package logging builds the zap logger the rest of the program
// shares. The terminal UI owns stdout, so logs default to a file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger construction.
type Config struct {
	Debug   bool   // enable debug level
	Format  string // "json" or "human"
	LogFile string // path to log file; empty means stderr
}

// DefaultConfig places the log file next to the user config.
func DefaultConfig() Config {
	return Config{
		Debug:   false,
		Format:  "human",
		LogFile: defaultLogPath(),
	}
}

func defaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "listform.log"
	}
	return filepath.Join(home, ".listform", "listform.log")
}

// New builds a sugared logger per Config. Callers own the returned
// logger; there is no package-level instance.
func New(cfg Config) (*zap.SugaredLogger, error) {
	var zapConfig zap.Config
	if cfg.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	outputPaths := []string{"stderr"}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		outputPaths = []string{cfg.LogFile}
	}
	zapConfig.OutputPaths = outputPaths
	zapConfig.ErrorOutputPaths = outputPaths

	if cfg.Debug {
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	return logger.Sugar(), nil
}

// Nop returns a logger that discards everything. Tests use it so
// components with a mandatory logger stay quiet.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// Sink adapts a sugared logger to the error reporting hook the form
// machinery calls on recoverable failures.
type Sink struct {
	Logger *zap.SugaredLogger
}

func (s Sink) LogError(msg string, kv ...any) {
	if s.Logger == nil {
		return
	}
	s.Logger.Errorw(msg, kv...)
}
