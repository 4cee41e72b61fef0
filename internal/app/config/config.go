package config

import (
	"fhir-ingestion-service/internal/pkg/constvars"
	"fhir-ingestion-service/internal/pkg/exceptions"
	"fhir-ingestion-service/internal/pkg/utils"
	"fmt"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			URI:      utils.GetEnvString("MONGODB_URI", ""),
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			DbName:   utils.GetEnvString("MONGODB_DB_NAME", "fhir_db"),
			Username: utils.GetEnvString("MONGODB_USERNAME", ""),
			Password: utils.GetEnvString("MONGODB_PASSWORD", ""),
		},
		Redis: Redis{
			Enabled:  utils.GetEnvBool("REDIS_ENABLED", true),
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "info"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Enabled:  utils.GetEnvBool("RABBITMQ_ENABLED", false),
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "guest"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		},
		Minio: Minio{
			Enabled:    utils.GetEnvBool("MINIO_ENABLED", false),
			Port:       utils.GetEnvString("MINIO_PORT", "9000"),
			Host:       utils.GetEnvString("MINIO_HOST", "localhost"),
			Username:   utils.GetEnvString("MINIO_USERNAME", ""),
			Password:   utils.GetEnvString("MINIO_PASSWORD", ""),
			BucketName: utils.GetEnvString("MINIO_BUCKET_NAME", "fhir-resources"),
			UseSSL:     utils.GetEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                        utils.GetEnvString("APP_ENV", "local"),
			Port:                       utils.GetEnvString("APP_PORT", "8000"),
			Version:                    utils.GetEnvString("APP_VERSION", "v1.0"),
			Address:                    utils.GetEnvString("APP_ADDRESS", "0.0.0.0"),
			EndpointPrefix:             utils.GetEnvString("APP_ENDPOINT_PREFIX", ""),
			CorsAllowedOrigins:         utils.GetEnvString("APP_CORS_ALLOWED_ORIGINS", "*"),
			MaxRequests:                utils.GetEnvInt("APP_MAX_REQUEST", 100),
			MaxTimeRequestsPerSeconds:  utils.GetEnvInt("APP_MAX_TIME_REQUESTS_PER_SECONDS", 60),
			ShutdownTimeoutInSeconds:   utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT", 10),
			RequestTimeoutInSeconds:    utils.GetEnvInt("APP_REQUEST_TIMEOUT_IN_SECONDS", 300),
			RequestBodyLimitInMegabyte: utils.GetEnvInt("APP_REQUEST_BODY_LIMIT_IN_MEGABYTE", 32),
		},
		Ingestion: Ingestion{
			BatchSize:    utils.GetEnvInt("INGESTION_BATCH_SIZE", constvars.DefaultIngestionBatchSize),
			InputDir:     utils.GetEnvString("INGESTION_INPUT_DIR", "./fhir_resources"),
			BucketPrefix: utils.GetEnvString("INGESTION_BUCKET_PREFIX", ""),
		},
		RunRegistry: RunRegistry{
			ExpiryTimeInHours: utils.GetEnvInt("RUN_REGISTRY_EXPIRY_TIME_IN_HOURS", 24),
		},
		DeadLetterQueue: DeadLetterQueue{
			QueueName:               utils.GetEnvString("DEAD_LETTER_QUEUE_NAME", constvars.RabbitMQDeadLetterQueue),
			PublishTimeoutInSeconds: utils.GetEnvInt("DEAD_LETTER_QUEUE_PUBLISH_TIMEOUT_IN_SECONDS", 5),
		},
	}
}

// Validate checks both configs against their struct tags.
func Validate(driverConfig *DriverConfig, internalConfig *InternalConfig) error {
	if err := utils.ValidateStruct(driverConfig); err != nil {
		return fmt.Errorf("driver config: %s", exceptions.FormatAllValidationErrors(err))
	}
	if err := utils.ValidateStruct(internalConfig); err != nil {
		return fmt.Errorf("internal config: %s", exceptions.FormatAllValidationErrors(err))
	}
	return nil
}
