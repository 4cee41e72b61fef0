package sources

import (
	"context"
	"fhir-ingestion-service/internal/app/contracts"
	"fhir-ingestion-service/internal/app/models"
	"fhir-ingestion-service/internal/pkg/constvars"
	"fhir-ingestion-service/internal/pkg/exceptions"
	"fhir-ingestion-service/internal/pkg/fhir"

	"go.uber.org/zap"
)

// sourceIngester feeds decoded files into one shared run. A file that cannot
// be decoded is counted as failed; it never reaches the dead-letter store.
type sourceIngester struct {
	IngestionUsecase contracts.IngestionUsecase
	Log              *zap.Logger
}

func (s *sourceIngester) ingestFile(ctx context.Context, run *models.RunSnapshot, report *models.ScanReport, name string, data []byte, batchSize int) error {
	resources, err := fhir.DecodeResources(data)
	if err != nil {
		report.FilesFailed++
		s.Log.Error("sourceIngester.ingestFile invalid JSON",
			zap.String(constvars.LoggingRunIDKey, run.RunID),
			zap.String(constvars.LoggingFileNameKey, name),
			zap.Error(exceptions.ErrDecodeSourceFile(err, name)),
		)
		return nil
	}

	s.Log.Info("sourceIngester.ingestFile processing",
		zap.String(constvars.LoggingRunIDKey, run.RunID),
		zap.String(constvars.LoggingFileNameKey, name),
		zap.Int(constvars.LoggingResourceCountKey, len(resources)),
	)

	stats, err := s.IngestionUsecase.IngestBatch(ctx, &models.IngestBatchRequest{
		Resources: resources,
		BatchSize: batchSize,
		Source:    run.Source,
		Run:       run,
	})
	if stats != nil {
		report.Statistics.Add(*stats)
	}
	if err != nil {
		return err
	}

	report.FilesProcessed++
	report.Resources += len(resources)
	return nil
}

func (s *sourceIngester) readFailed(run *models.RunSnapshot, report *models.ScanReport, name string, err error) {
	report.FilesFailed++
	s.Log.Error("sourceIngester.readFailed",
		zap.String(constvars.LoggingRunIDKey, run.RunID),
		zap.String(constvars.LoggingFileNameKey, name),
		zap.Error(err),
	)
}
