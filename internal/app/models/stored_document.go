package models

import "fhir-ingestion-service/internal/pkg/fhir"

// StoredDocument is the denormalized projection persisted for every
// accepted resource. Extracted fields hold nil when the resource does not
// carry them; nil is written as BSON null.
type StoredDocument struct {
	ResourceType       string        `json:"resourceType" bson:"resourceType"`
	ID                 string        `json:"id" bson:"id"`
	PatientID          string        `json:"patientId" bson:"patientId"`
	EncounterID        string        `json:"encounterId,omitempty" bson:"encounterId,omitempty"`
	Meta               StoredMeta    `json:"meta" bson:"meta"`
	Status             interface{}   `json:"status" bson:"status"`
	Code               interface{}   `json:"code" bson:"code"`
	Category           interface{}   `json:"category" bson:"category"`
	EffectiveDateTime  interface{}   `json:"effectiveDateTime" bson:"effectiveDateTime"`
	Issued             interface{}   `json:"issued" bson:"issued"`
	OccurrenceDateTime interface{}   `json:"occurrenceDateTime" bson:"occurrenceDateTime"`
	OnsetDateTime      interface{}   `json:"onsetDateTime" bson:"onsetDateTime"`
	AuthoredOn         interface{}   `json:"authoredOn" bson:"authoredOn"`
	RecordedDate       interface{}   `json:"recordedDate" bson:"recordedDate"`
	Resource           fhir.Resource `json:"resource" bson:"resource"`
}

type StoredMeta struct {
	VersionID   interface{} `json:"versionId" bson:"versionId"`
	LastUpdated interface{} `json:"lastUpdated" bson:"lastUpdated"`
}

// UpsertResult tells whether an upsert created a document or replaced one.
type UpsertResult int

const (
	UpsertInserted UpsertResult = iota + 1
	UpsertUpdated
)

func (r UpsertResult) String() string {
	switch r {
	case UpsertInserted:
		return "inserted"
	case UpsertUpdated:
		return "updated"
	default:
		return "unknown"
	}
}
