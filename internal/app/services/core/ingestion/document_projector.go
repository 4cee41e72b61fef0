package ingestion

import (
	"fhir-ingestion-service/internal/app/models"
	"fhir-ingestion-service/internal/pkg/constvars"
	"fhir-ingestion-service/internal/pkg/fhir"
)

// ProjectDocument builds the stored form of a validated resource. Fields the
// resource does not carry stay nil.
func ProjectDocument(resource fhir.Resource, patientID string) models.StoredDocument {
	document := models.StoredDocument{
		ResourceType: resource.ResourceType(),
		ID:           resource.ID(),
		PatientID:    patientID,
		Meta: models.StoredMeta{
			VersionID:   lookupOrNil(resource, constvars.FhirFieldMeta, constvars.FhirFieldVersionID),
			LastUpdated: lookupOrNil(resource, constvars.FhirFieldMeta, constvars.FhirFieldLastUpdated),
		},
		Status:             lookupOrNil(resource, constvars.FhirFieldStatus),
		Code:               lookupOrNil(resource, constvars.FhirFieldCode),
		Category:           lookupOrNil(resource, constvars.FhirFieldCategory),
		EffectiveDateTime:  lookupOrNil(resource, constvars.FhirFieldEffectiveDateTime),
		Issued:             lookupOrNil(resource, constvars.FhirFieldIssued),
		OccurrenceDateTime: lookupOrNil(resource, constvars.FhirFieldOccurrenceDateTime),
		OnsetDateTime:      lookupOrNil(resource, constvars.FhirFieldOnsetDateTime),
		AuthoredOn:         lookupOrNil(resource, constvars.FhirFieldAuthoredOn),
		RecordedDate:       lookupOrNil(resource, constvars.FhirFieldRecordedDate),
		Resource:           resource.Clone(),
	}

	encounterRef := resource.LookupString(constvars.FhirFieldEncounter, constvars.FhirFieldReference)
	if encounterID, ok := fhir.ParseReference(encounterRef, constvars.FhirReferenceEncounterPrefix); ok {
		document.EncounterID = encounterID
	}

	return document
}

func lookupOrNil(resource fhir.Resource, path ...string) interface{} {
	value, ok := resource.Lookup(path...)
	if !ok {
		return nil
	}
	return value
}
