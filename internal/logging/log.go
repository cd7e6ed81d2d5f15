package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// LevelDebug represents very verbose messages for debugging specific issues
	LevelDebug = "debug"
	// LevelInfo represents default log level, informational
	LevelInfo = "info"
	// LevelWarn represents messages about possible issues
	LevelWarn = "warn"
	// LevelError represents messages about things we know are problems
	LevelError = "error"
)

// Type and function aliases from zap to limit the library's scope in our code
type Field = zapcore.Field

var Int = zap.Int
var Int64 = zap.Int64
var String = zap.String
var Any = zap.Any
var Err = zap.Error
var Duration = zap.Duration

// Logger logs messages
type Logger struct {
	zap *zap.Logger
}

// Config represents configuration of the logger
type Config struct {
	ConsoleLevel string
	FileLocation string // empty disables file output
	FileLevel    string
}

// New creates a logger writing to stderr and, if configured, a rotating file.
func New(config Config) *Logger {
	cores := []zapcore.Core{
		zapcore.NewCore(
			consoleEncoder(),
			zapcore.Lock(os.Stderr),
			zap.NewAtomicLevelAt(zapLevel(config.ConsoleLevel)),
		),
	}

	if config.FileLocation != "" {
		writer := zapcore.AddSync(&lumberjack.Logger{
			Filename: config.FileLocation,
			MaxSize:  20,
			Compress: true,
		})
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			writer,
			zap.NewAtomicLevelAt(zapLevel(config.FileLevel)),
		)
		cores = append(cores, core)
	}

	return &Logger{zap: zap.New(zapcore.NewTee(cores...))}
}

// NewNop returns a logger that discards everything. Handy in tests.
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

func (l *Logger) Debug(message string, fields ...Field) {
	l.zap.Debug(message, fields...)
}

func (l *Logger) Info(message string, fields ...Field) {
	l.zap.Info(message, fields...)
}

func (l *Logger) Warn(message string, fields ...Field) {
	l.zap.Warn(message, fields...)
}

func (l *Logger) Error(message string, fields ...Field) {
	l.zap.Error(message, fields...)
}

func zapLevel(level string) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewConsoleEncoder(cfg)
}
