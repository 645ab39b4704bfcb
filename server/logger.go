package server

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds a SugaredLogger writing to a rolling file. An empty
// path logs to stderr instead.
func NewLogger(filePath string) (*zap.SugaredLogger, error) {
	if filePath == "" {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		return logger.Sugar(), nil
	}

	// Rolling policy: 10MB per file, 3 backups, 7 days.
	lj := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   false,
	}

	ws := zapcore.AddSync(lj)
	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
	encoder := zapcore.NewConsoleEncoder(encCfg)
	core := zapcore.NewCore(encoder, ws, zapcore.InfoLevel)

	logger := zap.New(core, zap.AddCaller())
	return logger.Sugar(), nil
}
