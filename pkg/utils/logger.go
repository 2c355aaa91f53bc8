package utils

import (
	"os"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig controls level, encoding and the optional rotating log file.
type LogConfig struct {
	Level      string
	Format     string // "json" or "console"
	Filename   string
	MaxSize    int // megabytes
	MaxAge     int // days
	MaxBackups int
}

// NewLogger builds the process logger. Output always goes to stdout; when
// Filename is set it is also written to a lumberjack-rotated file.
func NewLogger(cfg LogConfig, serviceName string) *zap.Logger {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}
	if cfg.Filename != "" {
		file := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), file, level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	if serviceName != "" {
		logger = logger.With(zap.String("service_name", serviceName))
	}
	return logger
}
