// Package logger configures the process-wide zap logger.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	global *zap.Logger
	once   sync.Once
)

// Config controls log output.
type Config struct {
	Verbose bool
	// File, when set, duplicates output to a rotated log file.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// Init builds the global logger. Safe to call more than once; only the
// first call takes effect.
func Init(cfg Config) {
	once.Do(func() {
		level := zapcore.InfoLevel
		if cfg.Verbose {
			level = zapcore.DebugLevel
		}

		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		console := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.Lock(os.Stderr),
			level,
		)

		cores := []zapcore.Core{console}
		if cfg.File != "" {
			maxSize := cfg.MaxSizeMB
			if maxSize == 0 {
				maxSize = 20
			}
			fileCfg := zap.NewProductionEncoderConfig()
			fileCfg.EncodeTime = zapcore.RFC3339TimeEncoder
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(fileCfg),
				zapcore.AddSync(&lumberjack.Logger{
					Filename:   cfg.File,
					MaxSize:    maxSize,
					MaxBackups: cfg.MaxBackups,
				}),
				level,
			))
		}

		global = zap.New(zapcore.NewTee(cores...))
	})
}

// L returns the global logger, initializing a default one if needed.
func L() *zap.Logger {
	if global == nil {
		Init(Config{})
	}
	return global
}

// Sync flushes buffered log entries.
func Sync() {
	if global != nil {
		_ = global.Sync()
	}
}
