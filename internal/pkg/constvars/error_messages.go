package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required":      "is required",
	"min":           "must be at least %s",
	"max":           "must be at most %s",
	"gte":           "must be greater than or equal to %s",
	"lte":           "must be less than or equal to %s",
	"oneof":         "must be one of [%s]",
	"uuid":          "must be a valid UUID",
	"url":           "must be a valid URL",
	"hostname_port": "must be a valid host:port pair",
}

var TagsWithParams = map[string]bool{
	"min":   true,
	"max":   true,
	"gte":   true,
	"lte":   true,
	"oneof": true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "something wrong with the application, please try again later"
	ErrClientIngestionInterrupted          = "ingestion was interrupted, partial results were recorded"
	ErrClientExpectedResourceArray         = "Expected array of FHIR resources"
	ErrClientRequestBodyTooLarge           = "request body is too large"
	ErrClientRunNotFound                   = "ingestion run not found"
	ErrClientInvalidQueryParam             = "invalid query parameter %s"
	ErrClientRouteNotFound                 = "route not found"
	ErrClientTooManyRequests               = "too many requests, please slow down"
)

// Error messages for developers
const (
	ErrDevInvalidInput             = "invalid input"
	ErrDevInvalidQueryParam        = "query parameter %s is not a valid value"
	ErrDevRouteNotFound            = "no route matches %s %s"
	ErrDevRateLimited              = "request rate limit exceeded"
	ErrDevValidationFailed         = "validation failed"
	ErrDevCannotParseJSON          = "cannot parse JSON"
	ErrDevCannotMarshalJSON        = "cannot marshal JSON"
	ErrDevReadBody                 = "failed to read request body"
	ErrDevRequestBodyNotArray      = "request body is not a JSON array of objects"
	ErrDevRequestBodyTooLarge      = "request body exceeds the configured limit"
	ErrDevIngestionInterrupted     = "ingestion interrupted before all resources were processed"
	ErrDevServerProcess            = "server failed to process the request"
	ErrDevMissingRequestID         = "request id missing from context"
	ErrDevRunNotFound              = "ingestion run %s not found"
	ErrDevDirectoryNotFound        = "input directory %s not found"
	ErrDevReadSourceFile           = "failed to read source file %s"
	ErrDevDecodeSourceFile         = "failed to decode source file %s"
	ErrDevDBFailedToUpsertDocument = "failed to upsert document"
	ErrDevDBFailedToInsertDocument = "failed to insert document"
	ErrDevDBFailedToCountDocuments = "failed to count documents"
	ErrDevDBFailedToCreateIndex    = "failed to create index on collection %s"
	ErrDevRedisGetData             = "failed to get data from redis"
	ErrDevRedisSetData             = "failed to set data to redis"
	ErrDevRabbitMQPublishMessage   = "failed to publish message to queue %s"
	ErrDevMinioFailedToListObjects = "failed to list objects in bucket %s"
	ErrDevMinioFailedToGetObject   = "failed to get object %s"
)
