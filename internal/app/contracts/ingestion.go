package contracts

import (
	"context"
	"fhir-ingestion-service/internal/app/models"
	"fhir-ingestion-service/internal/pkg/fhir"
)

type IngestionUsecase interface {
	IngestOne(ctx context.Context, resource fhir.Resource, stats *models.RunStatistics) models.Outcome
	IngestBatch(ctx context.Context, request *models.IngestBatchRequest) (*models.RunStatistics, error)
	StartRun(ctx context.Context, source string) *models.RunSnapshot
	FinishRun(ctx context.Context, run *models.RunSnapshot)
	GetRun(ctx context.Context, runID string) (*models.RunSnapshot, error)
	CollectionCounts(ctx context.Context) ([]models.CollectionCount, error)
}

type ResourceRepository interface {
	Upsert(ctx context.Context, collection string, document *models.StoredDocument) (models.UpsertResult, error)
	Count(ctx context.Context, collection string) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type DeadLetterRepository interface {
	Insert(ctx context.Context, entry *models.DeadLetterEntry) error
	Count(ctx context.Context) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type DeadLetterNotifier interface {
	Publish(ctx context.Context, notification models.DeadLetterNotification) error
}

type RunRegistry interface {
	Save(ctx context.Context, snapshot *models.RunSnapshot) error
	Find(ctx context.Context, runID string) (*models.RunSnapshot, error)
}
