package sources

import (
	"context"
	"fhir-ingestion-service/internal/app/contracts"
	"fhir-ingestion-service/internal/app/models"
	"fhir-ingestion-service/internal/pkg/constvars"
	"fhir-ingestion-service/internal/pkg/exceptions"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

type directoryScanner struct {
	sourceIngester
}

func NewDirectoryScanner(ingestionUsecase contracts.IngestionUsecase, logger *zap.Logger) contracts.DirectoryScanner {
	return &directoryScanner{
		sourceIngester: sourceIngester{
			IngestionUsecase: ingestionUsecase,
			Log:              logger,
		},
	}
}

// Scan ingests every *.json file directly inside directory, in name order,
// as one run.
func (s *directoryScanner) Scan(ctx context.Context, directory string, batchSize int) (*models.ScanReport, error) {
	info, err := os.Stat(directory)
	if err != nil {
		return nil, exceptions.ErrDirectoryNotFound(err, directory)
	}
	if !info.IsDir() {
		return nil, exceptions.ErrDirectoryNotFound(fmt.Errorf("%s is not a directory", directory), directory)
	}

	matches, err := filepath.Glob(filepath.Join(directory, "*"+constvars.FileExtensionJSON))
	if err != nil {
		return nil, exceptions.ErrDirectoryNotFound(err, directory)
	}

	var files []string
	for _, match := range matches {
		if fileInfo, err := os.Stat(match); err == nil && fileInfo.Mode().IsRegular() {
			files = append(files, match)
		}
	}
	sort.Strings(files)

	run := s.IngestionUsecase.StartRun(ctx, constvars.RunSourceDirectory)
	report := &models.ScanReport{RunID: run.RunID, FilesFound: len(files)}

	s.Log.Info("directoryScanner.Scan called",
		zap.String(constvars.LoggingRunIDKey, run.RunID),
		zap.String(constvars.LoggingDirectoryKey, directory),
		zap.Int(constvars.LoggingFileCountKey, len(files)),
	)

	for _, file := range files {
		name := filepath.Base(file)
		data, err := os.ReadFile(file)
		if err != nil {
			s.readFailed(run, report, name, exceptions.ErrReadSourceFile(err, name))
			continue
		}
		if err := s.ingestFile(ctx, run, report, name, data, batchSize); err != nil {
			s.IngestionUsecase.FinishRun(ctx, run)
			return report, err
		}
	}

	s.IngestionUsecase.FinishRun(ctx, run)

	s.Log.Info("directoryScanner.Scan succeeded",
		zap.String(constvars.LoggingRunIDKey, run.RunID),
		zap.Int(constvars.LoggingResourceCountKey, report.Resources),
		zap.Int(constvars.LoggingFileCountKey, report.FilesProcessed),
		zap.Any(constvars.LoggingStatisticsKey, report.Statistics),
	)
	return report, nil
}
