package logger

import (
	"testing"

	"fhir-ingestion-service/internal/app/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewZapConfig(t *testing.T) {
	driverConfig := &config.DriverConfig{
		Logger: config.Logger{
			Level:               "debug",
			OutputFileName:      "ingestor.log",
			OutputErrorFileName: "ingestor_error.log",
		},
	}

	tests := []struct {
		env              string
		encoding         string
		development      bool
		outputPaths      []string
		errorOutputPaths []string
	}{
		{env: "local", encoding: "console", outputPaths: []string{"stdout"}, errorOutputPaths: []string{"stderr"}},
		{env: "development", encoding: "json", development: true, outputPaths: []string{"stdout"}, errorOutputPaths: []string{"stderr"}},
		{
			env:              "production",
			encoding:         "json",
			outputPaths:      []string{"stdout", "ingestor.log"},
			errorOutputPaths: []string{"stderr", "ingestor_error.log"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			internalConfig := &config.InternalConfig{App: config.App{Env: tt.env}}

			cfg := newZapConfig(driverConfig, internalConfig)

			assert.Equal(t, tt.encoding, cfg.Encoding)
			assert.Equal(t, tt.development, cfg.Development)
			assert.Equal(t, tt.outputPaths, cfg.OutputPaths)
			assert.Equal(t, tt.errorOutputPaths, cfg.ErrorOutputPaths)
			assert.Equal(t, zapcore.DebugLevel, cfg.Level.Level())
		})
	}
}

func TestNewZapConfig_UnknownLevelFallsBackToInfo(t *testing.T) {
	driverConfig := &config.DriverConfig{Logger: config.Logger{Level: "loud"}}
	internalConfig := &config.InternalConfig{App: config.App{Env: "staging"}}

	cfg := newZapConfig(driverConfig, internalConfig)

	assert.Equal(t, zapcore.InfoLevel, cfg.Level.Level())
	assert.Equal(t, "json", cfg.Encoding)
}
