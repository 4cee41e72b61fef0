package models

import (
	"fhir-ingestion-service/internal/pkg/fhir"
	"time"
)

type DeadLetterReason string

const (
	DeadLetterReasonValidationError    DeadLetterReason = "validation_error"
	DeadLetterReasonNoPatientReference DeadLetterReason = "no_patient_reference"
	DeadLetterReasonStorageError       DeadLetterReason = "storage_error"
)

// DeadLetterEntry records a resource that could not be stored. Entries are
// insert-only.
type DeadLetterEntry struct {
	ResourceType string           `json:"resourceType,omitempty" bson:"resourceType,omitempty"`
	ID           string           `json:"id,omitempty" bson:"id,omitempty"`
	Reason       DeadLetterReason `json:"reason" bson:"reason"`
	Details      []string         `json:"details" bson:"details"`
	Timestamp    time.Time        `json:"timestamp" bson:"timestamp"`
	RunID        string           `json:"runId,omitempty" bson:"runId,omitempty"`
	Resource     fhir.Resource    `json:"resource" bson:"resource"`
}

// DeadLetterNotification is the queue message announcing a new entry. The
// resource body stays in the dead-letter collection.
type DeadLetterNotification struct {
	RunID        string           `json:"runId,omitempty"`
	ResourceType string           `json:"resourceType,omitempty"`
	ID           string           `json:"id,omitempty"`
	Reason       DeadLetterReason `json:"reason"`
	Details      []string         `json:"details"`
	Timestamp    time.Time        `json:"timestamp"`
}

func (e DeadLetterEntry) ConvertIntoNotification() DeadLetterNotification {
	return DeadLetterNotification{
		RunID:        e.RunID,
		ResourceType: e.ResourceType,
		ID:           e.ID,
		Reason:       e.Reason,
		Details:      e.Details,
		Timestamp:    e.Timestamp,
	}
}
