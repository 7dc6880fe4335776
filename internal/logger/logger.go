package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new structured logger
func New(env string) (*zap.Logger, error) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	// Always log to stdout for container compatibility
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	if env == "production" {
		config.Encoding = "json"
	}

	return config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
}

// FileLogEncoderConfig renders entries as "<time><separator><message>" with
// no level, caller or logger name.
func FileLogEncoderConfig(timeLayout, separator string) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		MessageKey:       "message",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: separator,
	}
}

// NewFileLog opens path in append mode and returns a logger writing plain
// text lines to it. The returned close func releases the file.
func NewFileLog(path, timeLayout, separator string, opts ...zap.Option) (*zap.Logger, func(), error) {
	sink, closeSink, err := zap.Open(path)
	if err != nil {
		return nil, nil, err
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(FileLogEncoderConfig(timeLayout, separator)),
		sink,
		zapcore.InfoLevel,
	)

	return zap.New(core, opts...), closeSink, nil
}
