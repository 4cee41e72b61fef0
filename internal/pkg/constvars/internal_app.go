package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
	CONTEXT_RUN_ID_KEY               ContextKey = "run_id"
)

const DefaultIngestionBatchSize = 500

const (
	RunSourceHTTP      = "http"
	RunSourceDirectory = "directory"
	RunSourceBucket    = "bucket"
)

const (
	RunStateRunning     = "running"
	RunStateCompleted   = "completed"
	RunStateInterrupted = "interrupted"
)

const (
	RedisKeyIngestionRunFormat = "ingestion:run:%s"
)

const (
	RabbitMQDeadLetterQueue = "fhir_dead_letter"
)

const (
	FileExtensionJSON = ".json"
)

const (
	HealthStatusHealthy = "healthy"
)
