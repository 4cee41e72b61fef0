package constvars

const (
	LoggingRequestIDKey       = "request_id"
	LoggingRunIDKey           = "run_id"
	LoggingRunSourceKey       = "run_source"
	LoggingResourceTypeKey    = "resource_type"
	LoggingResourceIDKey      = "resource_id"
	LoggingCollectionKey      = "collection"
	LoggingReasonKey          = "reason"
	LoggingDetailsKey         = "details"
	LoggingBatchNumberKey     = "batch_number"
	LoggingBatchTotalKey      = "batch_total"
	LoggingBatchSizeKey       = "batch_size"
	LoggingResourceCountKey   = "resource_count"
	LoggingStatisticsKey      = "statistics"
	LoggingFileNameKey        = "file_name"
	LoggingFileCountKey       = "file_count"
	LoggingDirectoryKey       = "directory"
	LoggingBucketNameKey      = "bucket_name"
	LoggingObjectPrefixKey    = "object_prefix"
	LoggingIndexFieldKey      = "index_field"
	LoggingQueueNameKey       = "queue_name"
	LoggingDeliveryTagKey     = "delivery_tag"
	LoggingAckKey             = "ack"
	LoggingMethodKey          = "method"
	LoggingEndpointKey        = "endpoint"
	LoggingRemoteAddrKey      = "remote_addr"
	LoggingUserAgentKey       = "user_agent"
	LoggingQueryKey           = "query"
	LoggingStatusCodeKey      = "status_code"
	LoggingDurationKey        = "duration"
	LoggingSuccessKey         = "success"
	LoggingCollectionCountKey = "collection_count"
	LoggingOperationKey       = "operation"
)
