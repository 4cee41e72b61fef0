package constvars

type ResourceType string

const (
	ResourcePatient            ResourceType = "Patient"
	ResourceObservation        ResourceType = "Observation"
	ResourceEncounter          ResourceType = "Encounter"
	ResourceCondition          ResourceType = "Condition"
	ResourceProcedure          ResourceType = "Procedure"
	ResourceMedicationRequest  ResourceType = "MedicationRequest"
	ResourceDocumentReference  ResourceType = "DocumentReference"
	ResourceAllergyIntolerance ResourceType = "AllergyIntolerance"
	ResourceDiagnosticReport   ResourceType = "DiagnosticReport"
)

const (
	MongoCollectionPatients           = "patients"
	MongoCollectionObservations       = "observations"
	MongoCollectionEncounters         = "encounters"
	MongoCollectionConditions         = "conditions"
	MongoCollectionProcedures         = "procedures"
	MongoCollectionMedicationRequests = "medication_requests"
	MongoCollectionDocumentReferences = "document_references"
	MongoCollectionAllergies          = "allergies"
	MongoCollectionDiagnosticReports  = "diagnostic_reports"
	MongoCollectionDeadLetter         = "dead_fhir"
)

const (
	MongoFieldPatientID = "patientId"
	MongoFieldReason    = "reason"
)

// SupportedResources maps every accepted resource type to the collection its
// documents are stored in. The table is never mutated at runtime.
var SupportedResources = map[ResourceType]string{
	ResourcePatient:            MongoCollectionPatients,
	ResourceObservation:        MongoCollectionObservations,
	ResourceEncounter:          MongoCollectionEncounters,
	ResourceCondition:          MongoCollectionConditions,
	ResourceProcedure:          MongoCollectionProcedures,
	ResourceMedicationRequest:  MongoCollectionMedicationRequests,
	ResourceDocumentReference:  MongoCollectionDocumentReferences,
	ResourceAllergyIntolerance: MongoCollectionAllergies,
	ResourceDiagnosticReport:   MongoCollectionDiagnosticReports,
}

// SupportedResourceOrder fixes the iteration order used for index setup and
// collection summaries.
var SupportedResourceOrder = []ResourceType{
	ResourcePatient,
	ResourceObservation,
	ResourceEncounter,
	ResourceCondition,
	ResourceProcedure,
	ResourceMedicationRequest,
	ResourceDocumentReference,
	ResourceAllergyIntolerance,
	ResourceDiagnosticReport,
}

const (
	FhirReferencePatientPrefix   = "Patient/"
	FhirReferenceEncounterPrefix = "Encounter/"
)

const (
	FhirFieldResourceType       = "resourceType"
	FhirFieldID                 = "id"
	FhirFieldMeta               = "meta"
	FhirFieldVersionID          = "versionId"
	FhirFieldLastUpdated        = "lastUpdated"
	FhirFieldName               = "name"
	FhirFieldStatus             = "status"
	FhirFieldCode               = "code"
	FhirFieldCategory           = "category"
	FhirFieldSubject            = "subject"
	FhirFieldPatient            = "patient"
	FhirFieldEncounter          = "encounter"
	FhirFieldReference          = "reference"
	FhirFieldContained          = "contained"
	FhirFieldEffectiveDateTime  = "effectiveDateTime"
	FhirFieldEffectivePeriod    = "effectivePeriod"
	FhirFieldIssued             = "issued"
	FhirFieldOccurrenceDateTime = "occurrenceDateTime"
	FhirFieldOnsetDateTime      = "onsetDateTime"
	FhirFieldAuthoredOn         = "authoredOn"
	FhirFieldRecordedDate       = "recordedDate"
)

// FhirDateFields are the date-like top-level fields copied onto stored
// documents and indexed when present.
var FhirDateFields = []string{
	FhirFieldEffectiveDateTime,
	FhirFieldIssued,
	FhirFieldOccurrenceDateTime,
	FhirFieldOnsetDateTime,
	FhirFieldAuthoredOn,
	FhirFieldRecordedDate,
}
