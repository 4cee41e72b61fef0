package responses

import "time"

// Ingest is the flat body returned by POST /ingest.
type Ingest struct {
	Status       string `json:"status"`
	Processed    int    `json:"processed"`
	Inserted     int    `json:"inserted"`
	Updated      int    `json:"updated"`
	Errors       int    `json:"errors"`
	DeadLettered int    `json:"deadLettered"`
	RunID        string `json:"runId"`
}

type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type CollectionCounts struct {
	Collections []CollectionCount `json:"collections"`
	Total       int64             `json:"total"`
}

type CollectionCount struct {
	Collection string `json:"collection"`
	Count      int64  `json:"count"`
}
