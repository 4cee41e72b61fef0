package ingestion

import (
	"context"
	"errors"
	"fhir-ingestion-service/internal/app/config"
	"fhir-ingestion-service/internal/app/contracts"
	"fhir-ingestion-service/internal/app/models"
	"fhir-ingestion-service/internal/pkg/constvars"
	"fhir-ingestion-service/internal/pkg/exceptions"
	"fhir-ingestion-service/internal/pkg/fhir"
	"fhir-ingestion-service/internal/pkg/utils"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ingestionUsecase struct {
	ResourceRepository   contracts.ResourceRepository
	DeadLetterRepository contracts.DeadLetterRepository
	DeadLetterNotifier   contracts.DeadLetterNotifier
	RunRegistry          contracts.RunRegistry
	InternalConfig       *config.InternalConfig
	Log                  *zap.Logger
	now                  func() time.Time
}

var (
	ingestionUsecaseInstance contracts.IngestionUsecase
	onceIngestionUsecase     sync.Once
)

// NewIngestionUsecase wires the pipeline. The notifier and the run registry
// are optional and may be nil.
func NewIngestionUsecase(
	resourceRepository contracts.ResourceRepository,
	deadLetterRepository contracts.DeadLetterRepository,
	deadLetterNotifier contracts.DeadLetterNotifier,
	runRegistry contracts.RunRegistry,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.IngestionUsecase {
	onceIngestionUsecase.Do(func() {
		ingestionUsecaseInstance = newIngestionUsecase(
			resourceRepository,
			deadLetterRepository,
			deadLetterNotifier,
			runRegistry,
			internalConfig,
			logger,
		)
	})
	return ingestionUsecaseInstance
}

func newIngestionUsecase(
	resourceRepository contracts.ResourceRepository,
	deadLetterRepository contracts.DeadLetterRepository,
	deadLetterNotifier contracts.DeadLetterNotifier,
	runRegistry contracts.RunRegistry,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) *ingestionUsecase {
	return &ingestionUsecase{
		ResourceRepository:   resourceRepository,
		DeadLetterRepository: deadLetterRepository,
		DeadLetterNotifier:   deadLetterNotifier,
		RunRegistry:          runRegistry,
		InternalConfig:       internalConfig,
		Log:                  logger,
		now:                  func() time.Time { return time.Now().UTC() },
	}
}

// IngestOne drives one resource to a terminal outcome. It never returns an
// error: every failure ends in a dead-letter attempt. Once started, the
// writes for a resource ignore cancellation of ctx, so a counted resource
// is always either stored or dead-lettered.
func (uc *ingestionUsecase) IngestOne(ctx context.Context, resource fhir.Resource, stats *models.RunStatistics) models.Outcome {
	ctx = context.WithoutCancel(ctx)
	stats.Processed++

	result := fhir.Validate(resource)
	if !result.Valid() {
		return uc.reject(ctx, resource, stats, models.DeadLetterReasonValidationError, result.Violations)
	}

	if result.PatientID == "" {
		return uc.reject(ctx, resource, stats, models.DeadLetterReasonNoPatientReference, []string{fhir.ViolationNoPatientLink})
	}

	collection, ok := fhir.CollectionFor(resource.ResourceType())
	if !ok {
		return uc.reject(ctx, resource, stats, models.DeadLetterReasonValidationError,
			[]string{fmt.Sprintf(fhir.ViolationUnsupportedResourceType, resource.ResourceType())})
	}

	document := ProjectDocument(resource, result.PatientID)
	upserted, err := uc.ResourceRepository.Upsert(ctx, collection, &document)
	if err != nil {
		uc.Log.Error("ingestionUsecase.IngestOne storage failed",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingResourceTypeKey, document.ResourceType),
			zap.String(constvars.LoggingResourceIDKey, document.ID),
			zap.String(constvars.LoggingCollectionKey, collection),
			zap.Error(err),
		)
		return uc.reject(ctx, resource, stats, models.DeadLetterReasonStorageError, []string{errorText(err)})
	}

	if upserted == models.UpsertInserted {
		stats.Inserted++
		return models.Outcome{Kind: models.OutcomeInserted}
	}
	stats.Updated++
	return models.Outcome{Kind: models.OutcomeUpdated}
}

// IngestBatch processes resources sequentially in input order. Chunks only
// pace progress logging and run snapshot updates. Cancellation of ctx is
// honoured between resources: the partial statistics are returned together
// with an ErrIngestionInterrupted wrapping ctx.Err().
func (uc *ingestionUsecase) IngestBatch(ctx context.Context, request *models.IngestBatchRequest) (*models.RunStatistics, error) {
	batchSize := request.BatchSize
	if batchSize <= 0 {
		batchSize = uc.defaultBatchSize()
	}

	run := request.Run
	ownsRun := run == nil
	if ownsRun {
		run = uc.StartRun(ctx, request.Source)
	}
	ctx = context.WithValue(ctx, constvars.CONTEXT_RUN_ID_KEY, run.RunID)

	total := len(request.Resources)
	batchTotal := (total + batchSize - 1) / batchSize

	uc.Log.Info("ingestionUsecase.IngestBatch called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingRunIDKey, run.RunID),
		zap.String(constvars.LoggingRunSourceKey, run.Source),
		zap.Int(constvars.LoggingResourceCountKey, total),
		zap.Int(constvars.LoggingBatchSizeKey, batchSize),
	)

	stats := models.NewRunStatistics()
	for start, batchNumber := 0, 1; start < total; start, batchNumber = start+batchSize, batchNumber+1 {
		end := start + batchSize
		if end > total {
			end = total
		}

		chunk := models.NewRunStatistics()
		interrupted := uc.ingestChunk(ctx, request.Resources[start:end], chunk)
		stats.Add(*chunk)
		run.Statistics.Add(*chunk)

		if interrupted != nil {
			uc.Log.Warn("ingestionUsecase.IngestBatch interrupted",
				zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
				zap.String(constvars.LoggingRunIDKey, run.RunID),
				zap.Any(constvars.LoggingStatisticsKey, stats.Snapshot()),
				zap.Error(interrupted),
			)
			run.State = constvars.RunStateInterrupted
			if ownsRun {
				uc.FinishRun(ctx, run)
			} else {
				uc.saveRun(ctx, run)
			}
			return stats, exceptions.ErrIngestionInterrupted(interrupted)
		}
		uc.saveRun(ctx, run)

		uc.Log.Info("ingestionUsecase.IngestBatch batch processed",
			zap.String(constvars.LoggingRunIDKey, run.RunID),
			zap.Int(constvars.LoggingBatchNumberKey, batchNumber),
			zap.Int(constvars.LoggingBatchTotalKey, batchTotal),
			zap.Int(constvars.LoggingResourceCountKey, chunk.Processed),
		)
	}

	if ownsRun {
		uc.FinishRun(ctx, run)
	}

	uc.Log.Info("ingestionUsecase.IngestBatch succeeded",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingRunIDKey, run.RunID),
		zap.Any(constvars.LoggingStatisticsKey, stats.Snapshot()),
	)
	return stats, nil
}

// ingestChunk stops before the next resource once ctx is done and reports
// why. A resource already in flight is never cut short.
func (uc *ingestionUsecase) ingestChunk(ctx context.Context, resources []fhir.Resource, chunk *models.RunStatistics) error {
	for _, resource := range resources {
		if err := ctx.Err(); err != nil {
			return err
		}
		uc.IngestOne(ctx, resource, chunk)
	}
	return nil
}

// StartRun opens a run in the registry. Registry failures are logged; the
// run still proceeds.
func (uc *ingestionUsecase) StartRun(ctx context.Context, source string) *models.RunSnapshot {
	run := &models.RunSnapshot{
		RunID:     uuid.NewString(),
		Source:    source,
		State:     constvars.RunStateRunning,
		StartedAt: uc.now(),
	}
	uc.saveRun(ctx, run)
	return run
}

func (uc *ingestionUsecase) FinishRun(ctx context.Context, run *models.RunSnapshot) {
	finishedAt := uc.now()
	if run.State == constvars.RunStateRunning {
		run.State = constvars.RunStateCompleted
	}
	run.FinishedAt = &finishedAt
	uc.saveRun(ctx, run)
}

func (uc *ingestionUsecase) GetRun(ctx context.Context, runID string) (*models.RunSnapshot, error) {
	uc.Log.Info("ingestionUsecase.GetRun called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingRunIDKey, runID),
	)

	if uc.RunRegistry == nil {
		return nil, exceptions.ErrRunNotFound(nil, runID)
	}
	return uc.RunRegistry.Find(ctx, runID)
}

func (uc *ingestionUsecase) CollectionCounts(ctx context.Context) ([]models.CollectionCount, error) {
	uc.Log.Info("ingestionUsecase.CollectionCounts called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
	)

	counts := make([]models.CollectionCount, 0, len(constvars.SupportedResourceOrder)+1)
	for _, resourceType := range constvars.SupportedResourceOrder {
		collection := constvars.SupportedResources[resourceType]
		count, err := uc.ResourceRepository.Count(ctx, collection)
		if err != nil {
			return nil, err
		}
		counts = append(counts, models.CollectionCount{Collection: collection, Count: count})
	}

	deadLetters, err := uc.DeadLetterRepository.Count(ctx)
	if err != nil {
		return nil, err
	}
	counts = append(counts, models.CollectionCount{Collection: constvars.MongoCollectionDeadLetter, Count: deadLetters})

	uc.Log.Info("ingestionUsecase.CollectionCounts succeeded",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.Int(constvars.LoggingCollectionCountKey, len(counts)),
	)
	return counts, nil
}

func (uc *ingestionUsecase) reject(
	ctx context.Context,
	resource fhir.Resource,
	stats *models.RunStatistics,
	reason models.DeadLetterReason,
	details []string,
) models.Outcome {
	stats.Errors++

	runID := utils.GetRunID(ctx)
	entry := &models.DeadLetterEntry{
		ResourceType: resource.ResourceType(),
		ID:           resource.ID(),
		Reason:       reason,
		Details:      details,
		Timestamp:    uc.now(),
		RunID:        runID,
		Resource:     resource.Clone(),
	}

	if err := uc.DeadLetterRepository.Insert(ctx, entry); err != nil {
		uc.Log.Error("ingestionUsecase.reject dead-letter write dropped",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingResourceTypeKey, entry.ResourceType),
			zap.String(constvars.LoggingResourceIDKey, entry.ID),
			zap.String(constvars.LoggingReasonKey, string(reason)),
			zap.Error(err),
		)
		return models.Outcome{Kind: models.OutcomeDeadLettered, Reason: reason, Details: details}
	}
	stats.DeadLettered++

	uc.Log.Warn("ingestionUsecase.reject resource dead-lettered",
		zap.String(constvars.LoggingRunIDKey, runID),
		zap.String(constvars.LoggingResourceTypeKey, entry.ResourceType),
		zap.String(constvars.LoggingResourceIDKey, entry.ID),
		zap.String(constvars.LoggingReasonKey, string(reason)),
		zap.Strings(constvars.LoggingDetailsKey, details),
	)

	if uc.DeadLetterNotifier != nil {
		if err := uc.DeadLetterNotifier.Publish(ctx, entry.ConvertIntoNotification()); err != nil {
			uc.Log.Error("ingestionUsecase.reject dead-letter notification failed",
				zap.String(constvars.LoggingResourceTypeKey, entry.ResourceType),
				zap.String(constvars.LoggingResourceIDKey, entry.ID),
				zap.Error(err),
			)
		}
	}

	return models.Outcome{Kind: models.OutcomeDeadLettered, Reason: reason, Details: details}
}

func (uc *ingestionUsecase) saveRun(ctx context.Context, run *models.RunSnapshot) {
	if uc.RunRegistry == nil {
		return
	}
	// snapshots are written even after the caller gave up
	if err := uc.RunRegistry.Save(context.WithoutCancel(ctx), run); err != nil {
		uc.Log.Error("ingestionUsecase.saveRun failed",
			zap.String(constvars.LoggingRunIDKey, run.RunID),
			zap.Error(err),
		)
	}
}

func (uc *ingestionUsecase) defaultBatchSize() int {
	if uc.InternalConfig != nil && uc.InternalConfig.Ingestion.BatchSize > 0 {
		return uc.InternalConfig.Ingestion.BatchSize
	}
	return constvars.DefaultIngestionBatchSize
}

// errorText keeps the driver message without call-site locations.
func errorText(err error) string {
	var customErr *exceptions.CustomError
	if errors.As(err, &customErr) {
		return customErr.DevMessage
	}
	return err.Error()
}
