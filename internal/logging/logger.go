// Package logging wraps zap the way gofulmen's logging package does,
// minus the multi-tenant middleware stack (redaction, throttling,
// policy enforcement, correlation IDs): Archivum is a single local CLI
// process, not a multi-tenant service, so that stack has no caller.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures the process-wide logger.
type Config struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to "info".
	Level string

	// LogFile, if non-empty, is rotated via lumberjack instead of
	// writing to stderr.
	LogFile string

	// Quiet mirrors the --quiet flag. New does not read it, so structured
	// log output is the same either way.
	Quiet bool
}

// Logger wraps a zap.Logger. The CLI attaches a per-invocation run_id
// field to it via With.
type Logger struct {
	zap *zap.Logger
}

// New builds a Logger from cfg. A zero Config produces an info-level
// logger writing to stderr.
func New(cfg Config) (*Logger, error) {
	level := parseLevel(cfg.Level)

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var sink zapcore.WriteSyncer
	if cfg.LogFile != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	} else {
		sink = zapcore.AddSync(os.Stderr)
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), sink, level)
	return &Logger{zap: zap.New(core)}, nil
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// With returns a child logger carrying the given key/value pairs on
// every subsequent entry.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zap: l.zap.With(fields...)}
}

func (l *Logger) Info(msg string, fields ...zap.Field)  { l.zap.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.zap.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.zap.Error(msg, fields...) }
func (l *Logger) Debug(msg string, fields ...zap.Field) { l.zap.Debug(msg, fields...) }

// Sync flushes any buffered log entries; call it before process exit.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// OpFields builds an operation/archive field pair for use with With.
func OpFields(operation, archiveDir string) []zap.Field {
	return []zap.Field{zap.String("operation", operation), zap.String("archive", archiveDir)}
}
