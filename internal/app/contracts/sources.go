package contracts

import (
	"context"
	"fhir-ingestion-service/internal/app/models"
)

type DirectoryScanner interface {
	Scan(ctx context.Context, directory string, batchSize int) (*models.ScanReport, error)
}

type BucketScanner interface {
	Scan(ctx context.Context, prefix string, batchSize int) (*models.ScanReport, error)
}
