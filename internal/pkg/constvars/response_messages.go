package constvars

const (
	ResponseUnknown     = "unknown"
	ResponseSuccess     = "success"
	ResponseInterrupted = "interrupted"
)

const (
	GetIngestionRunSuccessMessage     = "get ingestion run successfully"
	GetCollectionCountsSuccessMessage = "get collection counts successfully"
)
