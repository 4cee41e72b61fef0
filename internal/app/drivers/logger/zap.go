package logger

import (
	"fhir-ingestion-service/internal/app/config"
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "fhir-ingestion-service"

func NewZapLogger(driverConfig *config.DriverConfig, internalConfig *config.InternalConfig) *zap.Logger {
	zapLogger, err := newZapConfig(driverConfig, internalConfig).Build()
	if err != nil {
		log.Fatalf("Error while initializing zap logger: %v", err)
	}
	return zapLogger.With(
		zap.String("service", serviceName),
		zap.String("env", internalConfig.App.Env),
	)
}

// newZapConfig logs JSON everywhere except the local env, where scans run
// from a terminal and get the console encoder. Production also writes to
// the configured log files.
func newZapConfig(driverConfig *config.DriverConfig, internalConfig *config.InternalConfig) zap.Config {
	level, err := zapcore.ParseLevel(driverConfig.Logger.Level)
	if err != nil {
		level = zap.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	switch internalConfig.App.Env {
	case "local":
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "development":
		cfg.Development = true
	case "production":
		cfg.OutputPaths = append(cfg.OutputPaths, driverConfig.Logger.OutputFileName)
		cfg.ErrorOutputPaths = append(cfg.ErrorOutputPaths, driverConfig.Logger.OutputErrorFileName)
	}

	return cfg
}
