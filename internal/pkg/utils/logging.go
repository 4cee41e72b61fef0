package utils

import (
	"context"
	"time"

	"fhir-ingestion-service/internal/pkg/constvars"

	"go.uber.org/zap"
)

// LogOperation runs fn and logs its duration and result, tagged with the
// request and run IDs carried by ctx.
func LogOperation(ctx context.Context, logger *zap.Logger, operation string, fn func() error) error {
	opLogger := logger.With(zap.String(constvars.LoggingOperationKey, operation))
	if requestID := GetRequestID(ctx); requestID != "" {
		opLogger = opLogger.With(zap.String(constvars.LoggingRequestIDKey, requestID))
	}
	if runID := GetRunID(ctx); runID != "" {
		opLogger = opLogger.With(zap.String(constvars.LoggingRunIDKey, runID))
	}

	opLogger.Debug("Operation started")
	start := time.Now()
	err := fn()
	elapsed := zap.Duration(constvars.LoggingDurationKey, time.Since(start))

	if err != nil {
		opLogger.Error("Operation failed", elapsed, zap.Bool(constvars.LoggingSuccessKey, false), zap.Error(err))
		return err
	}
	opLogger.Info("Operation completed", elapsed, zap.Bool(constvars.LoggingSuccessKey, true))
	return nil
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string); ok {
		return requestID
	}
	return ""
}

func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(constvars.CONTEXT_RUN_ID_KEY).(string); ok {
		return runID
	}
	return ""
}
