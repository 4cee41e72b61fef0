package sources

import (
	"context"
	"fhir-ingestion-service/internal/app/contracts"
	"fhir-ingestion-service/internal/app/models"
	"fhir-ingestion-service/internal/pkg/constvars"
	"fhir-ingestion-service/internal/pkg/exceptions"
	"io"
	"strings"

	"go.uber.org/zap"
)

type bucketScanner struct {
	sourceIngester
	ObjectStorage contracts.ObjectStorage
	BucketName    string
}

func NewBucketScanner(
	ingestionUsecase contracts.IngestionUsecase,
	objectStorage contracts.ObjectStorage,
	bucketName string,
	logger *zap.Logger,
) contracts.BucketScanner {
	return &bucketScanner{
		sourceIngester: sourceIngester{
			IngestionUsecase: ingestionUsecase,
			Log:              logger,
		},
		ObjectStorage: objectStorage,
		BucketName:    bucketName,
	}
}

// Scan ingests every *.json object directly under prefix as one run.
func (s *bucketScanner) Scan(ctx context.Context, prefix string, batchSize int) (*models.ScanReport, error) {
	keys, err := s.ObjectStorage.ListObjectKeys(ctx, s.BucketName, prefix)
	if err != nil {
		return nil, err
	}

	var objects []string
	for _, key := range keys {
		if strings.HasSuffix(key, constvars.FileExtensionJSON) {
			objects = append(objects, key)
		}
	}

	run := s.IngestionUsecase.StartRun(ctx, constvars.RunSourceBucket)
	report := &models.ScanReport{RunID: run.RunID, FilesFound: len(objects)}

	s.Log.Info("bucketScanner.Scan called",
		zap.String(constvars.LoggingRunIDKey, run.RunID),
		zap.String(constvars.LoggingBucketNameKey, s.BucketName),
		zap.String(constvars.LoggingObjectPrefixKey, prefix),
		zap.Int(constvars.LoggingFileCountKey, len(objects)),
	)

	for _, key := range objects {
		data, err := s.readObject(ctx, key)
		if err != nil {
			s.readFailed(run, report, key, err)
			continue
		}
		if err := s.ingestFile(ctx, run, report, key, data, batchSize); err != nil {
			s.IngestionUsecase.FinishRun(ctx, run)
			return report, err
		}
	}

	s.IngestionUsecase.FinishRun(ctx, run)

	s.Log.Info("bucketScanner.Scan succeeded",
		zap.String(constvars.LoggingRunIDKey, run.RunID),
		zap.Int(constvars.LoggingResourceCountKey, report.Resources),
		zap.Int(constvars.LoggingFileCountKey, report.FilesProcessed),
		zap.Any(constvars.LoggingStatisticsKey, report.Statistics),
	)
	return report, nil
}

func (s *bucketScanner) readObject(ctx context.Context, key string) ([]byte, error) {
	object, err := s.ObjectStorage.GetObject(ctx, s.BucketName, key)
	if err != nil {
		return nil, err
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, exceptions.ErrMinioGetObject(err, key)
	}
	return data, nil
}
