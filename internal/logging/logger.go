package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logDir = "logs"

// New builds the process logger. Release mode writes JSON to stdout and to a
// rotated file; anything else gets the zap development logger.
func New() (*zap.Logger, error) {
	if os.Getenv("GIN_MODE") != "release" {
		return zap.NewDevelopment()
	}

	level := zap.InfoLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		parsed, err := zapcore.ParseLevel(v)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.NewMultiWriteSyncer(
			zapcore.AddSync(os.Stdout),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   filepath.Join(logDir, "notify-relay.log"),
				MaxSize:    20,
				MaxBackups: 3,
				MaxAge:     7,
				Compress:   true,
			}),
		),
		level,
	)
	return zap.New(core, zap.Fields(zap.String("service", "notify-relay"))), nil
}
