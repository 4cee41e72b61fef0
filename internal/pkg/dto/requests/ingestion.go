package requests

// IngestQuery holds the optional query parameters of POST /ingest.
type IngestQuery struct {
	BatchSize *int `query:"batch_size" validate:"omitempty,min=1,max=10000"`
}

type GetIngestionRun struct {
	RunID string `json:"runId" validate:"required,uuid"`
}
