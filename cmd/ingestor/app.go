package main

import (
	"context"
	"fmt"

	"fhir-ingestion-service/internal/app/config"
	"fhir-ingestion-service/internal/app/contracts"
	"fhir-ingestion-service/internal/app/drivers/database"
	"fhir-ingestion-service/internal/app/drivers/logger"
	"fhir-ingestion-service/internal/app/drivers/messaging"
	"fhir-ingestion-service/internal/app/drivers/storage"
	"fhir-ingestion-service/internal/app/services/core/ingestion"
	"fhir-ingestion-service/internal/app/services/core/resources"
	"fhir-ingestion-service/internal/app/services/core/sources"
	"fhir-ingestion-service/internal/app/services/shared/deadletterqueue"
	redisService "fhir-ingestion-service/internal/app/services/shared/redis"
	storageService "fhir-ingestion-service/internal/app/services/shared/storage"
	"fhir-ingestion-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type application struct {
	bootstrap            *config.Bootstrap
	resourceRepository   contracts.ResourceRepository
	deadLetterRepository contracts.DeadLetterRepository
	ingestionUsecase     contracts.IngestionUsecase
	directoryScanner     contracts.DirectoryScanner
	// nil when MINIO_ENABLED is false
	bucketScanner contracts.BucketScanner
}

// newApplication connects the enabled drivers and wires the pipeline.
// Connection failures on mandatory drivers are fatal inside the drivers.
func newApplication() (*application, error) {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	err := config.Validate(driverConfig, internalConfig)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.NewZapLogger(driverConfig, internalConfig)

	bootstrap := &config.Bootstrap{
		Router:         chi.NewRouter(),
		MongoDB:        database.NewMongoDB(driverConfig),
		Logger:         log,
		InternalConfig: internalConfig,
		DriverConfig:   driverConfig,
	}
	if driverConfig.Redis.Enabled {
		bootstrap.Redis = database.NewRedisClient(driverConfig)
	}
	if driverConfig.RabbitMQ.Enabled {
		bootstrap.RabbitMQ = messaging.NewRabbitMQ(driverConfig)
	}
	if driverConfig.Minio.Enabled {
		bootstrap.Minio = storage.NewMinio(driverConfig)
	}

	app := &application{
		bootstrap:            bootstrap,
		resourceRepository:   resources.NewResourceMongoRepository(bootstrap.MongoDB, log),
		deadLetterRepository: resources.NewDeadLetterMongoRepository(bootstrap.MongoDB),
	}

	var runRegistry contracts.RunRegistry
	if bootstrap.Redis != nil {
		redisRepository := redisService.NewRedisRepository(bootstrap.Redis)
		runRegistry = redisService.NewRunRegistry(redisRepository, internalConfig.RunRegistry.Expiry())
	}

	var deadLetterNotifier contracts.DeadLetterNotifier
	if bootstrap.RabbitMQ != nil {
		deadLetterNotifier, err = deadletterqueue.NewService(
			bootstrap.RabbitMQ,
			log,
			internalConfig.DeadLetterQueue.QueueName,
			internalConfig.DeadLetterQueue.PublishTimeout(),
		)
		if err != nil {
			_ = bootstrap.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to set up dead-letter queue: %w", err)
		}
	}

	app.ingestionUsecase = ingestion.NewIngestionUsecase(
		app.resourceRepository,
		app.deadLetterRepository,
		deadLetterNotifier,
		runRegistry,
		internalConfig,
		log,
	)
	app.directoryScanner = sources.NewDirectoryScanner(app.ingestionUsecase, log)
	if bootstrap.Minio != nil {
		app.bucketScanner = sources.NewBucketScanner(
			app.ingestionUsecase,
			storageService.NewMinioStorage(bootstrap.Minio),
			driverConfig.Minio.BucketName,
			log,
		)
	}

	return app, nil
}

// ensureIndexes creates the resource and dead-letter indexes. It is
// idempotent and runs before any command touches the collections.
func (app *application) ensureIndexes(ctx context.Context) error {
	log := app.bootstrap.Logger
	err := utils.LogOperation(ctx, log, "ensure_resource_indexes", func() error {
		return app.resourceRepository.EnsureIndexes(ctx)
	})
	if err != nil {
		return err
	}
	return utils.LogOperation(ctx, log, "ensure_dead_letter_indexes", func() error {
		return app.deadLetterRepository.EnsureIndexes(ctx)
	})
}

func (app *application) close() {
	ctx, cancel := context.WithTimeout(context.Background(), app.bootstrap.InternalConfig.App.ShutdownTimeout())
	defer cancel()

	err := app.bootstrap.Shutdown(ctx)
	if err != nil {
		app.bootstrap.Logger.Error("failed to close drivers", zap.Error(err))
	}
}
