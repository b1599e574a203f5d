// Package logctx provides structured logging for collegematch.
//
// It wraps go.uber.org/zap: a process-wide *zap.SugaredLogger (Logger),
// verbosity-to-level mapping, and a small Interface contract with zap and
// no-op adapters. Core packages such as internal/pipeline and
// internal/rowstore take a *zap.SugaredLogger directly.
package logctx

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the process-wide sugared logger. Safe to use before
	// Initialize is called (defaults to a no-op logger).
	Logger *zap.SugaredLogger

	// JSONOutput tracks whether the active logger emits structured JSON.
	JSONOutput bool
)

func init() {
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger. jsonOutput selects machine-readable
// structured output over the human console encoder.
func Initialize(jsonOutput bool) error {
	JSONOutput = jsonOutput

	var zapLogger *zap.Logger
	var err error

	if jsonOutput {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		zapLogger, err = cfg.Build()
	} else {
		zapLogger = zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(os.Stdout),
			zap.InfoLevel,
		))
	}
	if err != nil {
		return err
	}

	Logger = zapLogger.Sugar()
	return nil
}

// InitializeAtLevel rebuilds the console logger at the given zap level; used
// by the CLI's -v/-vv/-vvv flags via VerbosityToLevel.
func InitializeAtLevel(level zapcore.Level) {
	zapLogger := zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(os.Stdout),
		level,
	))
	Logger = zapLogger.Sugar()
}

// Cleanup flushes any buffered log entries. Sync errors on stdout/stderr are
// common on macOS/Linux (EINVAL) and are safe to ignore at the call site.
func Cleanup() error {
	if Logger != nil {
		return Logger.Sync()
	}
	return nil
}

// Interface is a logging contract that exposes no zap types. Mirrors the
// shape of ats/ix.Logger in the teacher repo.
type Interface interface {
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	Debug(msg string, fields ...interface{})
}

// ZapAdapter adapts a *zap.SugaredLogger to the Interface contract.
type ZapAdapter struct {
	logger *zap.SugaredLogger
}

// NewZapAdapter wraps logger, falling back to a no-op adapter if nil.
func NewZapAdapter(logger *zap.SugaredLogger) Interface {
	if logger == nil {
		return NopAdapter{}
	}
	return &ZapAdapter{logger: logger}
}

func (z *ZapAdapter) Info(msg string, fields ...interface{})  { z.logger.Infow(msg, fields...) }
func (z *ZapAdapter) Warn(msg string, fields ...interface{})  { z.logger.Warnw(msg, fields...) }
func (z *ZapAdapter) Error(msg string, fields ...interface{}) { z.logger.Errorw(msg, fields...) }
func (z *ZapAdapter) Debug(msg string, fields ...interface{}) { z.logger.Debugw(msg, fields...) }

// NopAdapter discards everything; used by tests and standalone library use.
type NopAdapter struct{}

func (NopAdapter) Info(string, ...interface{})  {}
func (NopAdapter) Warn(string, ...interface{})  {}
func (NopAdapter) Error(string, ...interface{}) {}
func (NopAdapter) Debug(string, ...interface{}) {}
