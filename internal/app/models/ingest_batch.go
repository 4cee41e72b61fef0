package models

import "fhir-ingestion-service/internal/pkg/fhir"

// IngestBatchRequest is one sequential pass over Resources. When Run is nil
// the call opens and closes a run of its own; otherwise chunk progress is
// folded into Run and the caller finishes it.
type IngestBatchRequest struct {
	Resources []fhir.Resource
	BatchSize int
	Source    string
	Run       *RunSnapshot
}
