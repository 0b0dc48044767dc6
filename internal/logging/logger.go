package logging

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger *zap.Logger

const (
	// LogLevelEnvVar controls logging verbosity. When unset or empty,
	// logging is silent. Valid values: "debug", "info", "warn", "error".
	LogLevelEnvVar = "SCANTAG_LOG_LEVEL"

	// LogFileEnvVar overrides the log file path.
	LogFileEnvVar = "SCANTAG_LOG_FILE"
)

// Options selects where log entries go.
type Options struct {
	// Level is one of debug/info/warn/error. Empty falls back to
	// SCANTAG_LOG_LEVEL; if that is empty too, logging is disabled.
	Level string

	// File is the rotated log file. Empty falls back to SCANTAG_LOG_FILE.
	// The terminal UI owns stdout, so interactive runs must log to a file.
	File string

	// Stderr sends entries to stderr instead of a file. Used by the
	// non-interactive subcommands.
	Stderr bool

	// MaxSizeMB, MaxBackups and MaxAgeDays tune lumberjack rotation.
	// Zero values use 5 MB, 3 backups, 28 days.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Initialize builds the global logger from opts.
func Initialize(opts Options) error {
	level := opts.Level
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	file := opts.File
	if file == "" {
		file = os.Getenv(LogFileEnvVar)
	}

	var sink io.Writer
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	switch {
	case opts.Stderr:
		sink = os.Stderr
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case file != "":
		sink = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    orDefault(opts.MaxSizeMB, 5),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
		}
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return fmt.Errorf("failed to initialize logger: no log file configured (set %s or --log-file)", LogFileEnvVar)
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(sink),
		zap.NewAtomicLevelAt(ParseLevel(level)),
	)
	logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return nil
}

// ParseLevel maps a level name to a zap level. Unknown names map to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
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

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// SetLogger replaces the global logger. Intended for tests.
func SetLogger(l *zap.Logger) {
	logger = l
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogPortEvent logs a serial port lifecycle event (opened, closed, probe_failed, ...).
func LogPortEvent(port string, event string, fields ...zap.Field) {
	Info("Port event", append([]zap.Field{
		zap.String("port", port),
		zap.String("event", event),
	}, fields...)...)
}

// LogToken logs a token accepted from the device.
func LogToken(port string, token string) {
	Debug("Token received",
		zap.String("port", port),
		zap.String("token", token),
		zap.Int("length", len(token)),
	)
}

// LogRawBytes logs raw bytes read from a device at debug level.
func LogRawBytes(label string, data []byte) {
	if !GetLogger().Core().Enabled(zapcore.DebugLevel) {
		return
	}
	Debug(label,
		zap.Int("length", len(data)),
		zap.String("hex", hexDump(data)),
		zap.String("ascii", asciiDump(data)),
	)
}

func hexDump(data []byte) string {
	if len(data) > 256 {
		return hex.EncodeToString(data[:256]) + "..."
	}
	return hex.EncodeToString(data)
}

func asciiDump(data []byte) string {
	if len(data) > 256 {
		data = data[:256]
	}
	result := make([]byte, len(data))
	for i, b := range data {
		if b >= 32 && b <= 126 {
			result[i] = b
		} else {
			result[i] = '.'
		}
	}
	return string(result)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
